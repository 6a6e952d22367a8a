package submit

import (
	"context"
	"log/slog"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/ledger"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// IntentClient posts swap intents to the ledger.
type IntentClient interface {
	SubmitIntent(ctx context.Context, req ledger.IntentRequest) (domain.IntentRecord, error)
}

// IntentSubmitter submits swap intents and appends confirmed ones to the intent log.
type IntentSubmitter struct {
	client IntentClient
	store  Dispatcher
}

// NewIntentSubmitter creates an intent submitter.
func NewIntentSubmitter(client IntentClient, store Dispatcher) *IntentSubmitter {
	return &IntentSubmitter{client: client, store: store}
}

// Submit issues one swap intent. Intents are commitments, so balances are never touched.
func (s *IntentSubmitter) Submit(ctx context.Context, generation uint64, maker domain.Identity, amount float64, fromAsset, toAsset string) (domain.IntentRecord, error) {
	if err := checkAmount(amount); err != nil {
		return domain.IntentRecord{}, err
	}

	intent, err := s.client.SubmitIntent(ctx, ledger.NewSwapIntent(maker, amount, fromAsset, toAsset))
	if err != nil {
		serr := newError(err, IntentFailedMessage)
		if serr.Rejected {
			slog.Info("IntentSubmitter: rejected by ledger", "maker", maker, "from", fromAsset, "to", toAsset, "reason", serr.Message)
		} else {
			slog.Error("IntentSubmitter: request failed", "maker", maker, "from", fromAsset, "to", toAsset, "error", err)
		}
		s.store.Dispatch(viewstate.IntentFailed{Generation: generation, Err: serr})
		return domain.IntentRecord{}, serr
	}

	s.store.Dispatch(viewstate.IntentSucceeded{Generation: generation, Intent: intent})
	slog.Info("IntentSubmitter: intent recorded", "maker", intent.Maker, "from", intent.FromAsset, "to", intent.ToAsset, "amount", intent.Amount)
	return intent, nil
}
