package handler

import (
	"net/http"

	"github.com/ChoisMath/edutech/pkg/bootstrap"
	"github.com/ChoisMath/edutech/pkg/config"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	// Note: On Vercel the filesystem is ephemeral, so DATABASE_URL should point at Turso or Postgres
	// and thumbnails at Supabase Storage.
	app, err := bootstrap.Build(cfg)
	if err != nil {
		panic(err)
	}
	mux = app.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
