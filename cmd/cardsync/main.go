package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pankajraut1/business-card-new/internal/config"
	"github.com/pankajraut1/business-card-new/internal/logging"
	"github.com/pankajraut1/business-card-new/internal/netcheck"
	"github.com/pankajraut1/business-card-new/internal/remote"
	"github.com/pankajraut1/business-card-new/internal/store"
	"github.com/pankajraut1/business-card-new/internal/sync"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Info("cardsync starting",
		slog.String("version", Version),
		slog.String("owner", cfg.OwnerID),
		slog.Duration("interval", cfg.SyncInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cards, err := store.OpenCards(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening card database: %w", err)
	}
	defer cards.Close()

	profiles, err := store.OpenProfiles(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("opening profile cache: %w", err)
	}
	defer profiles.Close()

	syncer := sync.New(sync.Config{
		Cards:        cards,
		Profiles:     profiles,
		Replica:      remote.NewClient(cfg.RemoteURL, cfg.RemoteAuth, nil),
		Oracle:       netcheck.NewChecker(cfg.ProbeURL, nil),
		AccountEmail: cfg.AccountEmail,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runSyncLoop(gctx, syncer, cfg.OwnerID, cfg.SyncInterval, logger)
	})

	return g.Wait()
}

// runSyncLoop triggers sync runs until the context is cancelled. A zero
// interval means run once and exit.
func runSyncLoop(ctx context.Context, syncer *sync.Syncer, ownerID string, interval time.Duration, logger *slog.Logger) error {
	syncer.SyncAll(ctx, ownerID)

	if interval == 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			syncer.SyncAll(ctx, ownerID)
		}
	}
}
