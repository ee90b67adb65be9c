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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/config"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/hub"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/relay"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/server"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/sheets"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/state"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := state.NewStore()

	var sink hub.SnapshotSink
	if cfg.Relay.URL != "" {
		relayConfig := relay.DefaultConfig()
		relayConfig.URL = cfg.Relay.URL
		relayConfig.Subject = cfg.Relay.Subject
		r, err := relay.New(relayConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect snapshot relay")
		}
		defer r.Close()
		sink = r
	}

	metrics := hub.NewMetrics(prometheus.DefaultRegisterer)
	h := hub.New(store, hub.DefaultConfig(), metrics, sink)
	go h.Run(ctx)

	var sheetsClient *sheets.Client
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsClient = sheets.NewClient(sheets.Config{
			BaseURL:       cfg.Sheets.BaseURL,
			SpreadsheetID: cfg.Sheets.SpreadsheetID,
			APIKey:        cfg.Sheets.APIKey,
			Timeout:       cfg.Sheets.Timeout,
		})
	} else {
		log.Warn().Msg("no spreadsheet configured, score fetch routes disabled")
	}

	srv := server.New(cfg, store, hub.NewHandler(h), sheetsClient).HTTPServer()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("score board listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
