// Package bootstrap wires the configured adapters into a ready HTTP handler.
package bootstrap

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ChoisMath/edutech/pkg/adapters/excel"
	"github.com/ChoisMath/edutech/pkg/adapters/handler"
	"github.com/ChoisMath/edutech/pkg/adapters/repository"
	"github.com/ChoisMath/edutech/pkg/adapters/storage"
	"github.com/ChoisMath/edutech/pkg/config"
	"github.com/ChoisMath/edutech/pkg/core/services"
	"github.com/ChoisMath/edutech/pkg/ports"
	"github.com/ChoisMath/edutech/pkg/render"
)

type App struct {
	Handler http.Handler
	Repo    ports.CardRepository
	Cards   *services.CardService
}

// Build opens the database and thumbnail store named by cfg and returns the router.
func Build(cfg *config.Config) (*App, error) {
	repo, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	var store ports.ThumbnailStore
	opts := handler.RouterOptions{}
	if cfg.UsesSupabase() {
		store = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.ThumbnailBucket)
	} else {
		local, err := storage.NewLocalStore(cfg.ThumbnailDir, "/thumbnails")
		if err != nil {
			repo.Close()
			return nil, err
		}
		store = local
		opts.ThumbnailDir = local.Dir
	}

	pages, err := render.New()
	if err != nil {
		repo.Close()
		return nil, err
	}

	cards := services.NewCardService(repo, excel.NewWriter(), services.Passwords{
		Admin: cfg.AdminPassword,
		Edit:  cfg.EditPassword,
	}, cfg.ExportPrefix)
	thumbs := services.NewThumbnailService(store, cfg.MaxThumbnailBytes)

	log.Printf("storage backend=%s thumbnails=%v", repository.Backend(cfg.DatabaseURL), store)

	return &App{
		Handler: handler.NewRouter(cfg, cards, thumbs, pages, opts),
		Repo:    repo,
		Cards:   cards,
	}, nil
}

func (a *App) Close() error {
	return a.Repo.Close()
}
