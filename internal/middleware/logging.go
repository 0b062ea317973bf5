package middleware

import (
	"net/http"
	"time"

	"gestor-pelada/gestor/internal/logging"
)

// Logging traces every request at debug level. Headers are left out since
// they carry the bearer token.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logging.With("http", "request_id", RequestID(r.Context()))
		log.Debugw("Request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(lw, r)

		log.Debugw("Response sent",
			"status", lw.statusCode,
			"status_text", http.StatusText(lw.statusCode),
			"duration", time.Since(start).String(),
		)
	})
}
