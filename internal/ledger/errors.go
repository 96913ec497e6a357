package ledger

import "errors"

// Anchor call failures. Rejections are terminal; timeouts and
// unavailability are retryable by the caller.
var (
	ErrRejected    = errors.New("ledger rejected transaction")
	ErrTimeout     = errors.New("ledger call timed out")
	ErrUnavailable = errors.New("ledger node unavailable")
	ErrTxNotFound  = errors.New("ledger transaction not found")
)

// Retryable reports whether a failed anchor call may be retried with the
// same payload.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}
