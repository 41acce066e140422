package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/muurk/thermabridge/internal/logging"
)

// requestLogger logs every request with its final status code.
func requestLogger(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logging.LogHTTPRequest(name, r.RemoteAddr, r.Method, r.URL.Path, status)
		})
	}
}
