// Package worker rebuilds wallet balances from the transaction ledger. It
// reacts to wallet-dirty messages and runs a periodic sweep over every
// wallet so drift is repaired even when messages are lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"karkhana/internal/amqp"
	"karkhana/internal/metrics"
	"karkhana/internal/storage"
)

type ReconcileWorker struct {
	storage       *storage.SQLiteRepository
	amqpClient    *amqp.Client
	sweepInterval time.Duration
	batchSize     int
}

func NewReconcileWorker(storage *storage.SQLiteRepository, amqpClient *amqp.Client, sweepInterval time.Duration, batchSize int) *ReconcileWorker {
	return &ReconcileWorker{
		storage:       storage,
		amqpClient:    amqpClient,
		sweepInterval: sweepInterval,
		batchSize:     batchSize,
	}
}

// Run consumes wallet-dirty messages and sweeps in parallel until the
// context is cancelled. Without an AMQP client only the sweep runs.
func (w *ReconcileWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.amqpClient != nil {
		g.Go(func() error {
			err := w.amqpClient.ConsumeWalletDirty(ctx, func(msg *amqp.WalletDirtyMessage) error {
				return w.HandleWalletDirty(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		return w.runSweep(ctx)
	})

	return g.Wait()
}

// HandleWalletDirty rebuilds each flagged wallet's balance. A wallet that
// was deleted between flag and rebuild is skipped, not an error.
func (w *ReconcileWorker) HandleWalletDirty(ctx context.Context, msg *amqp.WalletDirtyMessage) error {
	slog.InfoContext(ctx, "Processing wallet dirty message",
		"message_id", msg.MessageID,
		"wallet_ids", msg.WalletIDs,
		"reason", msg.Reason)

	for _, id := range msg.WalletIDs {
		rr, err := w.storage.ReconcileWallet(ctx, id)
		if err != nil {
			if isNotFound(err) {
				slog.WarnContext(ctx, "Wallet gone before reconcile, skipping",
					"wallet_id", id, "message_id", msg.MessageID)
				continue
			}
			metrics.ReconcileMessagesTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("reconcile wallet %d: %w", id, err)
		}
		recordReconcile(rr)
	}

	metrics.ReconcileMessagesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (w *ReconcileWorker) runSweep(ctx context.Context) error {
	// Sweep once at startup to recover from downtime, then on the ticker.
	if err := w.SweepAllWallets(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sweep failed", "error", err)
	}

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping reconcile sweep", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.SweepAllWallets(ctx); err != nil {
				slog.ErrorContext(ctx, "Sweep failed", "error", err)
			}
		}
	}
}

// SweepAllWallets replays every wallet's history in batches.
func (w *ReconcileWorker) SweepAllWallets(ctx context.Context) error {
	wallets, err := w.storage.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if len(wallets) == 0 {
		return nil
	}

	repaired := 0
	for start := 0; start < len(wallets); start += w.batchSize {
		end := start + w.batchSize
		if end > len(wallets) {
			end = len(wallets)
		}
		for _, wallet := range wallets[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			rr, err := w.storage.ReconcileWallet(ctx, wallet.ID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return fmt.Errorf("reconcile wallet %d: %w", wallet.ID, err)
			}
			recordReconcile(rr)
			if !rr.Drift().IsZero() {
				repaired++
			}
		}
	}

	if repaired > 0 {
		slog.InfoContext(ctx, "Sweep repaired drifted wallets",
			"wallets", len(wallets), "repaired", repaired)
	}
	return nil
}

func recordReconcile(rr storage.ReconcileResult) {
	metrics.ReconcilesTotal.Inc()
	if !rr.Drift().IsZero() {
		metrics.DriftRepairedTotal.Inc()
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
