// Package ledger provides the anchoring client boundary against the
// distributed ledger. It exposes transaction submission, transaction
// status reads, and network status reads; the ledger network itself is an
// external collaborator.
package ledger

import (
	"context"
	"time"
)

// TxStatus is the definitive state of an anchoring transaction.
type TxStatus string

const (
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// TxResult describes a submitted or queried anchoring transaction.
type TxResult struct {
	Hash   string   `json:"hash"`
	Height int64    `json:"height"`
	Status TxStatus `json:"status"`
}

// NetworkStatus reports the reachable ledger node's sync state.
type NetworkStatus struct {
	NodeID      string    `json:"node_id"`
	BlockHeight int64     `json:"block_height"`
	BlockTime   time.Time `json:"block_time"`
	CatchingUp  bool      `json:"catching_up"`
}

// Client is the anchoring contract used by batch anchoring and unit
// issuance. Submit blocks until the transaction is committed or the
// configured call timeout elapses.
type Client interface {
	// Submit anchors a payload and returns the committed transaction.
	// Returns ErrRejected for a terminal ledger rejection, ErrTimeout when
	// the call deadline elapses, and ErrUnavailable when the node cannot
	// be reached.
	Submit(ctx context.Context, payload []byte) (*TxResult, error)

	// Confirm reads the status of a previously anchored transaction by its
	// hex hash. Returns ErrTxNotFound if the ledger has no such transaction.
	Confirm(ctx context.Context, txHash string) (*TxResult, error)

	// NetworkStatus reads the ledger node's current network state.
	NetworkStatus(ctx context.Context) (*NetworkStatus, error)
}
