package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cmthttp "github.com/cometbft/cometbft/rpc/client/http"
	cmttypes "github.com/cometbft/cometbft/types"

	"github.com/JaimeStill/provenance/pkg/lifecycle"
)

// System manages the ledger client and its lifecycle coordination.
type System interface {
	Client
	// Start registers a startup hook that verifies the ledger node is reachable.
	Start(lc *lifecycle.Coordinator) error
}

type cometClient struct {
	rpc         *cmthttp.HTTP
	logger      *slog.Logger
	callTimeout time.Duration
}

// New creates a ledger system backed by a CometBFT node's RPC interface.
// The node is not contacted until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	rpc, err := cmthttp.NewWithClient(cfg.RPCAddress, &http.Client{
		Timeout: cfg.CallTimeoutDuration(),
	})
	if err != nil {
		return nil, fmt.Errorf("create ledger client: %w", err)
	}

	return &cometClient{
		rpc:         rpc,
		logger:      logger.With("system", "ledger"),
		callTimeout: cfg.CallTimeoutDuration(),
	}, nil
}

func (c *cometClient) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting ledger client")

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), c.callTimeout)
		defer cancel()

		status, err := c.NetworkStatus(ctx)
		if err != nil {
			c.logger.Error("ledger node unreachable", "error", err)
			return
		}

		c.logger.Info(
			"ledger node reachable",
			"node_id", status.NodeID,
			"block_height", status.BlockHeight,
			"catching_up", status.CatchingUp,
		)
	})

	return nil
}

func (c *cometClient) Submit(ctx context.Context, payload []byte) (*TxResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	result, err := c.rpc.BroadcastTxCommit(callCtx, cmttypes.Tx(payload))
	if err != nil {
		return nil, mapRPCError(callCtx, err)
	}

	if result.CheckTx.Code != 0 {
		return nil, fmt.Errorf("%w: check tx code %d: %s",
			ErrRejected, result.CheckTx.Code, result.CheckTx.Log)
	}
	if result.TxResult.Code != 0 {
		return nil, fmt.Errorf("%w: deliver tx code %d: %s",
			ErrRejected, result.TxResult.Code, result.TxResult.Log)
	}

	return &TxResult{
		Hash:   hex.EncodeToString(result.Hash),
		Height: result.Height,
		Status: TxConfirmed,
	}, nil
}

func (c *cometClient) Confirm(ctx context.Context, txHash string) (*TxResult, error) {
	hash, err := hex.DecodeString(txHash)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hash %q", ErrTxNotFound, txHash)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	result, err := c.rpc.Tx(callCtx, hash, false)
	if err != nil {
		if callCtx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txHash)
		}
		return nil, mapRPCError(callCtx, err)
	}

	status := TxConfirmed
	if result.TxResult.Code != 0 {
		status = TxFailed
	}

	return &TxResult{
		Hash:   hex.EncodeToString(result.Hash),
		Height: result.Height,
		Status: status,
	}, nil
}

func (c *cometClient) NetworkStatus(ctx context.Context) (*NetworkStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	status, err := c.rpc.Status(callCtx)
	if err != nil {
		return nil, mapRPCError(callCtx, err)
	}

	return &NetworkStatus{
		NodeID:      string(status.NodeInfo.DefaultNodeID),
		BlockHeight: status.SyncInfo.LatestBlockHeight,
		BlockTime:   status.SyncInfo.LatestBlockTime,
		CatchingUp:  status.SyncInfo.CatchingUp,
	}, nil
}

func mapRPCError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
