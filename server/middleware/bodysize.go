package middleware

import (
	"net/http"

	"github.com/kbukum/whisper-gateway/util"
)

// DefaultMaxBodySize matches the 25 MB upload limit of the OpenAI audio API.
const DefaultMaxBodySize = 25 << 20

// BodySizeLimit caps request bodies at maxSize ("25MB", "512KB"). Reads
// past the limit fail with *http.MaxBytesError, which handlers report
// as 413.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, DefaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				writeError(w, errBodyTooLarge(size))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
