package submit

import (
	"context"
	"log/slog"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/ledger"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// TransferClient posts transfers to the ledger.
type TransferClient interface {
	SubmitTransfer(ctx context.Context, req ledger.TransferRequest) (ledger.TransferResult, error)
}

// TransferSubmitter submits transfers and applies the ledger's authoritative result.
type TransferSubmitter struct {
	client TransferClient
	store  Dispatcher
}

// NewTransferSubmitter creates a transfer submitter.
func NewTransferSubmitter(client TransferClient, store Dispatcher) *TransferSubmitter {
	return &TransferSubmitter{client: client, store: store}
}

// Submit issues one transfer request. On success the sender's balances
// replace the snapshot and the confirmed transaction is appended; only the
// sender's view is updated. On failure the returned *Error carries the text
// to show and state is left as it was.
func (s *TransferSubmitter) Submit(ctx context.Context, generation uint64, sender, recipient domain.Identity, token string, amount float64) (domain.TransactionRecord, error) {
	if err := checkAmount(amount); err != nil {
		return domain.TransactionRecord{}, err
	}

	res, err := s.client.SubmitTransfer(ctx, ledger.TransferRequest{
		From:   sender,
		To:     recipient,
		Token:  token,
		Amount: amount,
	})
	if err != nil {
		serr := newError(err, TransferFailedMessage)
		if serr.Rejected {
			slog.Info("TransferSubmitter: rejected by ledger", "from", sender, "to", recipient, "token", token, "reason", serr.Message)
		} else {
			slog.Error("TransferSubmitter: request failed", "from", sender, "to", recipient, "token", token, "error", err)
		}
		s.store.Dispatch(viewstate.TransferFailed{Generation: generation, Err: serr})
		return domain.TransactionRecord{}, serr
	}

	s.store.Dispatch(viewstate.TransferSucceeded{
		Generation: generation,
		Sender:     sender,
		Tx:         res.Tx,
		Balances:   res.SenderBalances,
	})
	slog.Info("TransferSubmitter: transfer confirmed", "from", res.Tx.From, "to", res.Tx.To, "token", res.Tx.Token, "amount", res.Tx.Amount)
	return res.Tx, nil
}
