package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"webtemplate-backend/internal/app"
	"webtemplate-backend/internal/auth"
	"webtemplate-backend/internal/config"
	"webtemplate-backend/internal/engine"
	"webtemplate-backend/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: app.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Log.Level)
	logger.Info().
		Int("port", cfg.Server.Port).
		Str("db_driver", cfg.Database.Driver).
		Str("modules_root", cfg.Modules.Root).
		Bool("developer_mode", cfg.DeveloperMode).
		Msg("config loaded")

	// 2. Database, module tree, renderer and documents
	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	// 3. Fiber app
	srv := fiber.New(fiber.Config{
		ErrorHandler: engine.ErrorHandler,
	})
	srv.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	srv.Use(logger.FiberLogger())

	// 4. Health check
	srv.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 5. Auth routes (no auth required)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	auth.RegisterRoutes(srv, auth.NewHandler(a.Store, tokens))

	// 6. Web template routes (auth required)
	engine.RegisterRoutes(srv, engine.NewHandler(a.Documents, cfg.DeveloperMode), auth.Middleware(tokens))

	// 7. Start server
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := srv.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
