package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WalletDirtyMessage asks the worker to rebuild the named wallets'
// balances from their transaction history. It carries only ids; the
// worker reads the ledger itself.
type WalletDirtyMessage struct {
	MessageID string    `json:"message_id"`
	WalletIDs []int64   `json:"wallet_ids"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Reasons a wallet is flagged dirty.
const (
	ReasonTransactionCreated = "transaction_created"
	ReasonTransactionUpdated = "transaction_updated"
	ReasonTransactionDeleted = "transaction_deleted"
	ReasonManual             = "manual"
)

func NewWalletDirtyMessage(reason string, walletIDs ...int64) *WalletDirtyMessage {
	return &WalletDirtyMessage{
		MessageID: uuid.NewString(),
		WalletIDs: walletIDs,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *WalletDirtyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func WalletDirtyMessageFromJSON(data []byte) (*WalletDirtyMessage, error) {
	var msg WalletDirtyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
