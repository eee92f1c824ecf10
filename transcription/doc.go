// Package transcription holds the request and result model shared by the
// gateway and its backends, and renders results into the OpenAI audio
// response formats.
//
// # Formats
//
//   - json: {"text": ...}
//   - verbose_json: task, language, duration, text plus the requested
//     words and/or segments arrays
//   - srt and vtt: subtitle text
//
// # Usage
//
//	out, err := transcription.FormatRequest(req, result)
//	if out.Format.IsText() {
//	    w.Write([]byte(out.Text))
//	}
package transcription
