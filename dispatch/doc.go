// Package dispatch routes transcription and translation requests to
// backends.
//
// For every request the Dispatcher:
//
//  1. validates it against the served model and the task's formats,
//  2. sends Config.ProbeCount probes to the preferred backend,
//  3. calls the preferred backend,
//  4. on OVERLOADED or BACKEND_UNAVAILABLE calls the backup once,
//  5. renders the result with transcription.FormatRequest.
//
// INVALID_INPUT is returned as is and never reaches the backup. A failed
// backup call is returned to the caller whatever its kind.
package dispatch
