// Package api serves the OpenAI-compatible audio endpoints:
//
//	POST /v1/audio/transcriptions
//	POST /v1/audio/translations
//
// Handlers decode the multipart form into typed requests and hand them
// to the dispatcher. Rendered output is written as JSON or plain text
// depending on response_format; failures use the errors envelope.
package api
