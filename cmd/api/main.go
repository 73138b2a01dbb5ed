package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fozagtx/adMat/internal/http/handlers"
	"github.com/fozagtx/adMat/internal/http/httpapi"
	"github.com/fozagtx/adMat/internal/infra"
	"github.com/fozagtx/adMat/internal/upstream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// The service stays up without a credential; every upstream call will
	// fail individually until one is configured.
	if cfg.UpstreamAPIKey() == "" {
		logger.Warn().Str("backend", cfg.VideoBackend).Msg("upstream api key is not configured, generation calls will fail")
	}

	client := upstream.NewClient(cfg, &logger)
	app := handlers.NewApp(client, logger)
	router := httpapi.NewRouter(app, cfg.AllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("port", cfg.Port).Str("backend", cfg.VideoBackend).Msg("api listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
