package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/sentichat/internal/config"
	"github.com/avolkov/sentichat/internal/core"
	"github.com/avolkov/sentichat/internal/sentiment"
	"github.com/avolkov/sentichat/internal/store"
	"github.com/avolkov/sentichat/internal/store/sqlite"
	transporthttp "github.com/avolkov/sentichat/internal/transport/http"
)

// App wires together the chat core and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	annotator, err := newAnnotator(cfg.Sentiment)
	if err != nil {
		st.Close()
		return nil, err
	}
	logger.Info().Str("provider", cfg.Sentiment.Provider).Msg("sentiment annotator ready")

	hub := core.NewHub(st, st, annotator, logger)
	server := transporthttp.NewServer(hub, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

func newAnnotator(cfg config.SentimentConfig) (sentiment.Annotator, error) {
	switch cfg.Provider {
	case "azure":
		if cfg.Endpoint == "" || cfg.APIKey == "" {
			return nil, fmt.Errorf("azure sentiment provider requires endpoint and api key")
		}
		return sentiment.NewAzureClient(cfg.Endpoint, cfg.APIKey, cfg.Timeout), nil
	case "keyword", "":
		return sentiment.NewKeywordAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Provider)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
