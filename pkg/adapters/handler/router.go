package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ChoisMath/edutech/pkg/config"
	"github.com/ChoisMath/edutech/pkg/ports"
	"github.com/ChoisMath/edutech/pkg/render"
)

// RouterOptions carries the optional pieces of the server.
type RouterOptions struct {
	// ThumbnailDir is served under /thumbnails/ when thumbnails are stored on local disk.
	ThumbnailDir string
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, cards ports.CardService, thumbs ports.ThumbnailService, pages *render.Renderer, opts RouterOptions) http.Handler {
	h := NewHTTPHandler(cards)
	uh := NewUploadHandler(thumbs)
	ph := NewPageHandler(cards, pages)
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, db := http.StatusOK, "connected"
		if err := cards.Health(ctx); err != nil {
			status, db = http.StatusServiceUnavailable, "disconnected"
		}
		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		writeJSON(w, status, map[string]string{
			"status":   state,
			"database": db,
			"env":      cfg.AppEnv,
		})
	})

	// JSON API
	mux.HandleFunc("GET /api/cards", h.List)
	mux.HandleFunc("POST /api/cards", h.Create)
	mux.HandleFunc("POST /api/cards/reorder", h.Reorder)
	mux.HandleFunc("GET /api/cards/{id}", h.Get)
	mux.HandleFunc("PUT /api/cards/{id}", h.Update)
	mux.HandleFunc("DELETE /api/cards/{id}", h.Delete)
	mux.HandleFunc("POST /api/duplicate-check", h.CheckDuplicates)
	mux.HandleFunc("POST /api/upload-thumbnail", uh.Upload)
	mux.HandleFunc("POST /api/download-excel", h.DownloadExcel)

	// HTML pages
	if pages != nil {
		mux.HandleFunc("GET /{$}", ph.Home)
		mux.HandleFunc("GET /admin", ph.Admin)
		mux.HandleFunc("GET /cards/{id}", ph.Detail)
		mux.Handle("GET /static/", http.StripPrefix("/static/", render.Static()))
	}

	if opts.ThumbnailDir != "" {
		mux.Handle("GET /thumbnails/", http.StripPrefix("/thumbnails/", http.FileServer(http.Dir(opts.ThumbnailDir))))
	}

	return mw.Wrap(mux)
}
