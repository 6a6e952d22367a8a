// Package submit sends user-initiated transfers and swap intents to the
// ledger and applies confirmed results to the view state.
package submit

import (
	"math"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/ledger"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// Alert texts for transport failures. Rejections carry the ledger's own text.
const (
	TransferFailedMessage = "Transaction failed"
	IntentFailedMessage   = "Creating intent failed"
)

// Dispatcher receives submission results.
type Dispatcher interface {
	Dispatch(ev viewstate.Event) bool
}

// Error is a failed submission. Message is what the user is shown.
type Error struct {
	Message  string
	Rejected bool
	Err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(err error, transportMessage string) *Error {
	if rej, ok := ledger.IsRejection(err); ok {
		return &Error{Message: rej.Message, Rejected: true, Err: err}
	}
	return &Error{Message: transportMessage, Err: err}
}

func checkAmount(amount float64) error {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return domain.ErrInvalidAmount
	}
	return nil
}
