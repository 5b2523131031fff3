package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peerlend/internal/config"
	"peerlend/internal/events"
	"peerlend/internal/handlers"
	"peerlend/internal/logger"
	"peerlend/internal/services"
	"peerlend/internal/store"
	"peerlend/internal/websocket"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	publisher := newPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("event publisher close failed")
		}
	}()

	hub := websocket.NewHub()
	opts := []services.Option{services.WithContractMatcher(contractMatcher(cfg.ContractMatchMode))}
	if cfg.ActivationMode == config.ActivateDraftOnly {
		opts = append(opts, services.WithDraftOnlyActivation())
	}
	ledger := services.NewLedgerService(
		store.NewContractStore(),
		store.NewTransactionStore(),
		store.NewTrustScoreStore(),
		publisher,
		hub,
		log,
		opts...,
	)

	handler := handlers.New(cfg, ledger, hub, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":                server.Addr,
			"env":                 cfg.AppEnv,
			"contract_match_mode": cfg.ContractMatchMode,
			"activation_mode":     cfg.ActivationMode,
		}).Info("ledger API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("server stopped")
}

func newPublisher(cfg config.Config, log *logrus.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("kafka brokers not configured; domain events disabled")
		return events.NopPublisher{}
	}
	log.WithField("brokers", cfg.KafkaBrokers).
		WithField("topic_prefix", cfg.KafkaTopicPrefix).
		Info("publishing domain events to kafka")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, log)
}

func contractMatcher(mode string) services.ContractMatcher {
	if mode == config.MatchContractParty {
		return services.MatchContractParty
	}
	return services.MatchContractID
}
