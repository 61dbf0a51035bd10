package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	pollworkers "pollux/contexts/polling/poll-service/application/workers"
	subworkers "pollux/contexts/polling/subscription-service/application/workers"
	ledgercrypto "pollux/contexts/token-core/token-ledger/adapters/crypto"
	ledgermemory "pollux/contexts/token-core/token-ledger/adapters/memory"
	ledgerworkers "pollux/contexts/token-core/token-ledger/application/workers"
	ledgerports "pollux/contexts/token-core/token-ledger/ports"
	"pollux/internal/platform/config"
	"pollux/internal/platform/db"
	"pollux/internal/platform/httpserver"
	"pollux/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres

	ledgerRelay       ledgerworkers.OutboxRelay
	pollRelay         pollworkers.OutboxRelay
	subscriptionRelay subworkers.OutboxRelay

	runLedgerRelay       bool
	runPollRelay         bool
	runSubscriptionRelay bool

	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	pg, err := connectIfConfigured(cfg)
	if err != nil {
		return nil, err
	}

	engine := buildEngine(
		cfg.LedgerDomainSeparator,
		cfg.BootstrapAdmin,
		resolveVerifier(cfg),
		pg,
		logger,
	)

	server := httpserver.New(
		engine.Access,
		engine.Registry,
		engine.Ledger,
		engine.Polls,
		engine.Subscriptions,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	pg, err := connectIfConfigured(cfg)
	if err != nil {
		return nil, err
	}

	engine := buildEngine(
		cfg.LedgerDomainSeparator,
		cfg.BootstrapAdmin,
		resolveVerifier(cfg),
		pg,
		logger,
	)

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	return &WorkerApp{
		postgres: pg,
		ledgerRelay: ledgerworkers.OutboxRelay{
			Outbox:    engine.LedgerOutbox,
			Publisher: ledgerEventPublisher{bus: kafka},
			BatchSize: 100,
			Logger:    logger,
		},
		pollRelay: pollworkers.OutboxRelay{
			Outbox:    engine.PollOutbox,
			Publisher: pollEventPublisher{bus: kafka},
			BatchSize: 100,
			Logger:    logger,
		},
		subscriptionRelay: subworkers.OutboxRelay{
			Outbox:    engine.SubscriptionOutbox,
			Publisher: subscriptionEventPublisher{bus: kafka},
			BatchSize: 100,
			Logger:    logger,
		},
		runLedgerRelay:       cfg.EnableLedgerOutboxRelay,
		runPollRelay:         cfg.EnablePollOutboxRelay,
		runSubscriptionRelay: cfg.EnableSubscriptionOutboxRelay,
		pollInterval:         2 * time.Second,
		logger:               logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.runLedgerRelay {
			if err := w.ledgerRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.runPollRelay {
			if err := w.pollRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.runSubscriptionRelay {
			if err := w.subscriptionRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func connectIfConfigured(cfg config.Config) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil
	}
	return db.Connect(cfg.PostgresDSN)
}

func resolveVerifier(cfg config.Config) ledgerports.SignatureVerifier {
	if cfg.VerifierKind == "static" {
		return ledgermemory.StaticVerifier{}
	}
	return ledgercrypto.Sr25519Verifier{}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
