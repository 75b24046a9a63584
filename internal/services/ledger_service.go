// Package services orchestrates the ledger across storage, messaging, and
// the derived financial views.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"karkhana/internal/amqp"
	"karkhana/internal/core"
	"karkhana/internal/finance"
	"karkhana/internal/metrics"
	"karkhana/internal/storage"
)

// DirtyPublisher flags wallets for an asynchronous balance rebuild. Nil is
// a valid publisher: drift repair then relies on the worker's sweep alone.
type DirtyPublisher interface {
	PublishWalletDirty(ctx context.Context, msg *amqp.WalletDirtyMessage) error
}

// LedgerService wraps the transaction ledger. Every mutation commits in
// storage first; the wallet-dirty message is best effort and never fails
// the request.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher DirtyPublisher
}

func NewLedgerService(storage *storage.SQLiteRepository, publisher DirtyPublisher) *LedgerService {
	return &LedgerService{storage: storage, publisher: publisher}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	metrics.TransactionsTotal.WithLabelValues(string(created.Type)).Inc()
	s.flagDirty(ctx, amqp.ReasonTransactionCreated, created.WalletID)
	return created, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	old, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.storage.UpdateTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.flagDirty(ctx, amqp.ReasonTransactionUpdated, old.WalletID, updated.WalletID)
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	old, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.flagDirty(ctx, amqp.ReasonTransactionDeleted, old.WalletID)
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, f)
}

// ContactBalance computes the running debt balance for one contact.
func (s *LedgerService) ContactBalance(ctx context.Context, contactID int64) (core.Money, error) {
	ledger, err := s.storage.ContactLedger(ctx, contactID)
	if err != nil {
		return core.Money{}, err
	}
	return finance.ContactBalance(ledger), nil
}

// SettleContact neutralizes a contact's outstanding balance with one
// offsetting transaction. A settled contact is left untouched.
func (s *LedgerService) SettleContact(ctx context.Context, contactID int64, walletID *int64) (core.Transaction, bool, error) {
	balance, err := s.ContactBalance(ctx, contactID)
	if err != nil {
		return core.Transaction{}, false, err
	}

	settlement, ok := finance.SettlementTransaction(contactID, balance, walletID, time.Now())
	if !ok {
		return core.Transaction{}, false, nil
	}

	created, err := s.CreateTransaction(ctx, settlement)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("create settlement transaction: %w", err)
	}

	slog.InfoContext(ctx, "Contact settled",
		"contact_id", contactID,
		"amount_paise", created.Amount.Paise,
		"type", created.Type)
	return created, true, nil
}

// MonthlySummary loads a fresh snapshot and computes the month's summary.
func (s *LedgerService) MonthlySummary(ctx context.Context, month core.Month) (finance.Summary, error) {
	snap, err := s.storage.LoadSnapshot(ctx)
	if err != nil {
		return finance.Summary{}, err
	}
	return finance.Summarize(snap, month), nil
}

// ReconcileWallet rebuilds one wallet's balance from its history.
func (s *LedgerService) ReconcileWallet(ctx context.Context, walletID int64) (storage.ReconcileResult, error) {
	rr, err := s.storage.ReconcileWallet(ctx, walletID)
	if err != nil {
		return storage.ReconcileResult{}, err
	}
	metrics.ReconcilesTotal.Inc()
	if !rr.Drift().IsZero() {
		metrics.DriftRepairedTotal.Inc()
	}
	return rr, nil
}

func (s *LedgerService) flagDirty(ctx context.Context, reason string, walletIDs ...*int64) {
	if s.publisher == nil {
		return
	}
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range walletIDs {
		if p != nil && !seen[*p] {
			seen[*p] = true
			ids = append(ids, *p)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.publisher.PublishWalletDirty(ctx, amqp.NewWalletDirtyMessage(reason, ids...)); err != nil {
		// The sweep will repair any drift the lost message would have caught.
		slog.ErrorContext(ctx, "Failed to publish wallet dirty message",
			"reason", reason, "wallet_ids", ids, "error", err)
	}
}
