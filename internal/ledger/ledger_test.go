package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/JaimeStill/provenance/internal/ledger"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout is retryable", ledger.ErrTimeout, true},
		{"unavailable is retryable", ledger.ErrUnavailable, true},
		{"rejection is terminal", ledger.ErrRejected, false},
		{"not found is terminal", ledger.ErrTxNotFound, false},
		{"unrelated error is terminal", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ledger.Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryableWrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("submit unit 4"), ledger.ErrTimeout)
	if !ledger.Retryable(wrapped) {
		t.Error("wrapped timeout should stay retryable")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &ledger.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.RPCAddress == "" {
		t.Error("rpc_address default missing")
	}
	if cfg.CallTimeoutDuration() != 10*time.Second {
		t.Errorf("call timeout default = %s, want 10s", cfg.CallTimeout)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := &ledger.Config{CallTimeout: "whenever"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for invalid call_timeout")
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_LEDGER_RPC", "http://other:26657")

	cfg := &ledger.Config{}
	env := &ledger.Env{RPCAddress: "TEST_LEDGER_RPC"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.RPCAddress != "http://other:26657" {
		t.Errorf("rpc_address = %s, want env override", cfg.RPCAddress)
	}
}
