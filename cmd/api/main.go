package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"canvas/internal/generate"
	"canvas/internal/http/handlers"
	"canvas/internal/http/httpapi"
	"canvas/internal/infra"
	"canvas/internal/models"
	"canvas/internal/project"
	"canvas/internal/providers/replicate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Project store: Postgres when configured, in-memory otherwise so the
	// generation endpoints work without a database.
	var store project.Store
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		store = project.NewPGStore(infra.NewSQLRunner(pool, logger))
	} else {
		logger.Warn().Msg("DATABASE_URL not set, project merges use in-memory store")
		store = project.NewMemStore()
	}

	client, err := replicate.NewClient(replicate.Options{
		APIToken: cfg.ReplicateAPIToken,
		BaseURL:  cfg.ReplicateBaseURL,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure prediction client")
	}

	svc := generate.NewService(cfg, models.NewRegistry(), client, logger)
	merger := project.NewMerger(store, logger)
	app := handlers.NewApp(cfg, logger, svc, merger)

	router := httpapi.NewRouter(cfg, logger, app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
