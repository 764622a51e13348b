// Package app wires configuration into the store, module tree, renderer and
// document service shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"webtemplate-backend/internal/config"
	"webtemplate-backend/internal/engine"
	"webtemplate-backend/internal/logger"
	"webtemplate-backend/internal/modules"
	"webtemplate-backend/internal/render"
	"webtemplate-backend/internal/storage"
	"webtemplate-backend/internal/store"
	"webtemplate-backend/internal/webtemplate"
)

type App struct {
	Config    *config.Config
	Store     *store.Store
	Documents *engine.Documents
}

// New connects to the database, creates the service tables and builds the
// document service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info().Str("driver", db.Dialect.Name()).Msg("database connected")

	if err := db.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}

	reg := modules.NewRegistry(cfg.Modules.Root)
	reg.Load(cfg.Modules.Paths)
	logger.Info().Str("root", reg.Root()).Strs("modules", reg.Names()).Msg("module folders loaded")

	files := storage.NewLocalStorage()
	resolver := modules.NewResolver(reg, files, logger.Get().With().Str("component", "modules").Logger())

	renderer, err := render.New(render.WithBaseDir(cfg.Render.BaseDir))
	if err != nil {
		db.Close()
		return nil, err
	}

	ctrl := webtemplate.NewController(resolver, files, renderer,
		logger.Get().With().Str("component", "webtemplate").Logger())
	docs := engine.NewDocuments(db, ctrl, logger.Get().With().Str("component", "documents").Logger())

	return &App{Config: cfg, Store: db, Documents: docs}, nil
}

func (a *App) Close() {
	a.Store.Close()
}
