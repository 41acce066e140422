package server

import (
	"embed"
	"net/http"
)

//go:embed web/index.html web/app.js web/style.css
var webFS embed.FS

// serveAsset returns a handler for one embedded file.
func serveAsset(name, contentType string) http.HandlerFunc {
	data, err := webFS.ReadFile("web/" + name)
	if err != nil {
		panic("missing embedded asset " + name)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
