package cli

import (
	"fmt"
	"log/slog"

	"github.com/mmynk/debtbook/internal/balance"
	"github.com/mmynk/debtbook/internal/config"
	"github.com/mmynk/debtbook/internal/events"
	"github.com/mmynk/debtbook/internal/history"
	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/remotesync"
	"github.com/mmynk/debtbook/internal/storage/sqlite"
)

// app wires the components every command shares.
type app struct {
	store     *sqlite.SQLiteStore
	ledger    *ledger.Ledger
	balances  *balance.Aggregator
	uploader  *remotesync.GitHub
	publisher *events.Publisher
}

// newApp opens the store and builds the ledger. withEvents connects to the
// AMQP broker when one is configured.
func newApp(cfg *config.Config, withEvents bool) (*app, error) {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Info("Storage initialized", "database", store.Path())

	a := &app{store: store, balances: balance.NewAggregator(store)}

	logger := history.NewLogger(store)
	if withEvents && cfg.AMQP.URL != "" {
		pub, err := events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			slog.Warn("AMQP unavailable, history events disabled", "error", err)
		} else {
			a.publisher = pub
			logger.SetPublisher(pub)
			slog.Info("History events enabled", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
		}
	}
	a.ledger = ledger.New(store, logger)

	if cfg.SyncEnabled() {
		a.uploader = remotesync.NewGitHub(cfg.RemoteSync(), store.Path(), nil)
	}
	return a, nil
}

func (a *app) Close() error {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			slog.Warn("Failed to close AMQP publisher", "error", err)
		}
	}
	return a.store.Close()
}
