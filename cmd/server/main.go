// Command server runs the email triage HTTP API.
//
//	@title			Email Triage API
//	@version		1.0
//	@description	Ingests email threads, classifies intent, and manages suggestions, decisions and reply drafts.
//	@BasePath		/api/v1
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rajeev-kl/finkraft-t13/internal/ai"
	"github.com/rajeev-kl/finkraft-t13/internal/config"
	httpapi "github.com/rajeev-kl/finkraft-t13/internal/http"
	"github.com/rajeev-kl/finkraft-t13/internal/logbuf"
	"github.com/rajeev-kl/finkraft-t13/internal/observability"
	"github.com/rajeev-kl/finkraft-t13/internal/repo"
	"github.com/rajeev-kl/finkraft-t13/internal/sysutil"
)

var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logs go to stderr and to an in-memory ring served by GET /logs.
	ring := logbuf.New(cfg.LogBufferCap)
	var console io.Writer = os.Stderr
	if cfg.LogPretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, ring)).
		With().Timestamp().Str("service", cfg.OTEL.ServiceName).Logger()
	sysutil.SetLogLevel(cfg.LogLevel)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ct, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(ct)
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var classifier ai.Classifier = ai.Disabled{}
	var drafter ai.Drafter = ai.Disabled{}
	if cfg.AI.APIKey != "" || cfg.AI.BaseURL != "" {
		llm, err := ai.NewLLM(ai.Config{
			BaseURL:      cfg.AI.BaseURL,
			APIKey:       cfg.AI.APIKey,
			Model:        cfg.AI.Model,
			SystemPrompt: cfg.AI.SystemPrompt,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("llm client setup failed")
		}
		classifier, drafter = llm, llm
		log.Info().Str("model", cfg.AI.Model).Msg("llm provider configured")
	} else {
		log.Info().Msg("no llm provider configured, keyword fallback only")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:         db,
		Classifier: classifier,
		Drafter:    drafter,
		Logs:       ring,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
