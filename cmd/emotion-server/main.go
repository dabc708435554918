package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikitakharat907-ai/emotiondetector/internal/config"
	"github.com/nikitakharat907-ai/emotiondetector/internal/db"
	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
	"github.com/nikitakharat907-ai/emotiondetector/internal/history"
	"github.com/nikitakharat907-ai/emotiondetector/internal/live"
	"github.com/nikitakharat907-ai/emotiondetector/internal/metrics"
	"github.com/nikitakharat907-ai/emotiondetector/internal/mqtt"
	"github.com/nikitakharat907-ai/emotiondetector/internal/server"
)

type historyStore interface {
	history.Store
	history.Sweeper
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := config.LoadEmotionServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table := emotion.DefaultTable()
	if cfg.ProfilesPath != "" {
		table, err = emotion.LoadTable(cfg.ProfilesPath)
		if err != nil {
			logger.Error("load profiles failed", "path", cfg.ProfilesPath, "error", err)
			os.Exit(1)
		}
	}

	collector := metrics.NewCollector()
	normalizer := emotion.NewNormalizer(nil)
	if cfg.SpellCheck {
		normalizer.Corrector = emotion.NewSpeller(table)
	}
	normalizer.Fallback = func(err error) {
		collector.SpellingFallback(err)
		logger.Debug("spelling correction skipped", "error", err)
	}
	classifier := collector.Instrument(emotion.NewClassifier(table, normalizer))

	var store historyStore
	if cfg.DBDSN != "" {
		pg, err := db.New(ctx, cfg.DBDSN, cfg.HistoryLimit, cfg.SessionTTL)
		if err != nil {
			logger.Error("connect database failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("migrate database failed", "error", err)
			os.Exit(1)
		}
		store = pg
	} else {
		store = history.NewMemoryStore(cfg.HistoryLimit, cfg.SessionTTL)
	}

	liveHub := live.NewHub(logger, cfg.CORSOrigins...)
	liveHub.OnCount = func(n int) { collector.LiveClients.Set(float64(n)) }
	defer liveHub.Close()

	publishers := []history.Publisher{liveHub}
	if cfg.MQTTEnabled() {
		mqttHub := mqtt.NewHub(mqtt.HubConfig{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, classifier, logger)
		if err := mqttHub.Start(ctx); err != nil {
			logger.Error("mqtt start failed", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, mqttHub)
	}

	historySvc, err := history.NewService(store, logger, publishers...)
	if err != nil {
		logger.Error("create history service failed", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		ReadBodyMaxByte: cfg.ReadBodyMaxByte,
		CORSOrigins:     cfg.CORSOrigins,
		CookieSecure:    cfg.CookieSecure,
		SessionTTL:      cfg.SessionTTL,
	}, classifier, historySvc, server.Deps{Metrics: collector, Live: liveHub}, logger)
	if err != nil {
		logger.Error("create server failed", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("emotion server started",
			"addr", cfg.HTTPAddr,
			"schema", emotion.Schema,
			"engine", emotion.Engine,
			"spellcheck", cfg.SpellCheck,
			"postgres", cfg.DBDSN != "",
			"mqtt", cfg.MQTTEnabled(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		history.RunSweeper(gctx, store, cfg.SweepInterval, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("emotion server stopped with error", "error", err)
		os.Exit(1)
	}
}
