// Package router sets up the HTTP routes and middleware chain of the content
// server. Admin editing lives under /admin/api, content reads under
// /api/content.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"contentcms/internal/config"
	"contentcms/internal/handlers"
	"contentcms/internal/middleware"
)

// New creates the configured Chi router. Stored images are served from
// cfg.ImageStorageBasePath when cfg.ImageBaseURL is a local path.
func New(admin *handlers.Admin, public *handlers.Public, cfg config.Content) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/admin/api/modules", func(r chi.Router) {
		r.Get("/", admin.Modules)
		r.Route("/{module}/groups", func(r chi.Router) {
			r.Get("/", admin.GroupsList)
			r.Post("/", admin.GroupCreate)
			r.Get("/{group}", admin.GroupEdit)
			r.Put("/{group}", admin.GroupUpdate)
			r.Delete("/{group}", admin.GroupDelete)
			r.Post("/{group}/preview", admin.GroupPreview)
		})
	})

	r.Get("/api/content/{key}", public.Content)

	if prefix, ok := localImagePrefix(cfg.ImageBaseURL); ok {
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.ImageStorageBasePath)))
		r.Get(prefix+"*", files.ServeHTTP)
	}

	return r
}

// localImagePrefix returns the route prefix for an image base URL that
// points at this server, like "/images".
func localImagePrefix(baseURL string) (string, bool) {
	if !strings.HasPrefix(baseURL, "/") || strings.HasPrefix(baseURL, "//") {
		return "", false
	}
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if prefix == "/" {
		return "", false
	}
	return prefix, true
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
