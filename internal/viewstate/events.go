package viewstate

import (
	"log/slog"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/wallet/internal/domain"
)

// Event is a producer result applied to State by exactly one reducer transition.
// apply reports whether the event was accepted.
type Event interface {
	apply(s *State, opts Options) bool
}

// isCurrent guards identity-scoped events. generation is the value of
// State.Generation when the request was issued; results from an earlier
// identity selection are dropped.
func isCurrent(s *State, generation uint64, event string) bool {
	if generation != s.Generation {
		slog.Debug("ViewState: discarding stale result", "event", event, "generation", generation, "current", s.Generation)
		return false
	}
	return true
}

// IdentityChanged selects a new identity, discards everything tied to the
// previous one and starts a new generation.
type IdentityChanged struct {
	Identity domain.Identity
}

func (e IdentityChanged) apply(s *State, _ Options) bool {
	s.Identity = e.Identity
	s.Generation++
	s.Balance = nil
	s.Transactions = nil
	s.Intents = nil
	return true
}

// BalanceFetched replaces the balance snapshot.
type BalanceFetched struct {
	Generation uint64
	Snapshot   domain.BalanceSnapshot
}

func (e BalanceFetched) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "BalanceFetched") {
		return false
	}
	snap := domain.BalanceSnapshot{User: e.Snapshot.User, Balances: maps.Clone(e.Snapshot.Balances)}
	s.Balance = &snap
	return true
}

// BalanceFetchFailed marks the balance as absent.
type BalanceFetchFailed struct {
	Generation uint64
	Err        error
}

func (e BalanceFetchFailed) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "BalanceFetchFailed") {
		return false
	}
	s.Balance = nil
	return true
}

// TxsFetched replaces the transaction log.
type TxsFetched struct {
	Generation   uint64
	Transactions []domain.TransactionRecord
}

func (e TxsFetched) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "TxsFetched") {
		return false
	}
	s.Transactions = append(make([]domain.TransactionRecord, 0, len(e.Transactions)), e.Transactions...)
	return true
}

// TxsFetchFailed resets the transaction log to empty.
type TxsFetchFailed struct {
	Generation uint64
	Err        error
}

func (e TxsFetchFailed) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "TxsFetchFailed") {
		return false
	}
	s.Transactions = []domain.TransactionRecord{}
	return true
}

// IntentsFetched replaces the intent log.
type IntentsFetched struct {
	Generation uint64
	Intents    []domain.IntentRecord
}

func (e IntentsFetched) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "IntentsFetched") {
		return false
	}
	s.Intents = append(make([]domain.IntentRecord, 0, len(e.Intents)), e.Intents...)
	return true
}

// IntentsFetchFailed resets the intent log to empty.
type IntentsFetchFailed struct {
	Generation uint64
	Err        error
}

func (e IntentsFetchFailed) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "IntentsFetchFailed") {
		return false
	}
	s.Intents = []domain.IntentRecord{}
	return true
}

// PricesFetched replaces the price quote. Prices are not identity-scoped.
type PricesFetched struct {
	Prices map[string]float64
	At     time.Time
}

func (e PricesFetched) apply(s *State, _ Options) bool {
	s.Prices = domain.PriceQuote{USD: maps.Clone(e.Prices), UpdatedAt: e.At}
	return true
}

// PricesFetchFailed either keeps the last quote marked stale or clears it,
// depending on Options.RetainPricesOnFailure.
type PricesFetchFailed struct {
	Err error
}

func (e PricesFetchFailed) apply(s *State, opts Options) bool {
	if opts.RetainPricesOnFailure {
		s.Prices.Stale = true
		return true
	}
	s.Prices = domain.PriceQuote{}
	return true
}

// TransferSucceeded applies a confirmed transfer: the sender's balances
// replace the snapshot, the transaction is appended and the amount draft is cleared.
type TransferSucceeded struct {
	Generation uint64
	Sender     domain.Identity
	Tx         domain.TransactionRecord
	Balances   map[string]decimal.Decimal
}

func (e TransferSucceeded) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "TransferSucceeded") || e.Sender != s.Identity {
		return false
	}
	s.Balance = &domain.BalanceSnapshot{User: e.Sender, Balances: maps.Clone(e.Balances)}
	s.Transactions = append(s.Transactions, e.Tx)
	s.TransferDraft.Amount = ""
	return true
}

// TransferFailed records a rejected or failed transfer. State is left untouched
// so the draft can be corrected and resubmitted.
type TransferFailed struct {
	Generation uint64
	Err        error
}

func (e TransferFailed) apply(*State, Options) bool { return false }

// IntentSucceeded appends a confirmed intent and clears the intent amount draft.
type IntentSucceeded struct {
	Generation uint64
	Intent     domain.IntentRecord
}

func (e IntentSucceeded) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "IntentSucceeded") {
		return false
	}
	s.Intents = append(s.Intents, e.Intent)
	s.IntentDraft.Amount = ""
	return true
}

// IntentFailed leaves state untouched.
type IntentFailed struct {
	Generation uint64
	Err        error
}

func (e IntentFailed) apply(*State, Options) bool { return false }

// FaucetSucceeded replaces the balance snapshot with the post-faucet balances.
type FaucetSucceeded struct {
	Generation uint64
	Snapshot   domain.BalanceSnapshot
}

func (e FaucetSucceeded) apply(s *State, _ Options) bool {
	if !isCurrent(s, e.Generation, "FaucetSucceeded") {
		return false
	}
	snap := domain.BalanceSnapshot{User: e.Snapshot.User, Balances: maps.Clone(e.Snapshot.Balances)}
	s.Balance = &snap
	return true
}

// FaucetFailed leaves state untouched.
type FaucetFailed struct {
	Generation uint64
	Err        error
}

func (e FaucetFailed) apply(*State, Options) bool { return false }

// TabSelected switches the active tab.
type TabSelected struct {
	Tab domain.Tab
}

func (e TabSelected) apply(s *State, _ Options) bool {
	if !e.Tab.Valid() || e.Tab == s.Tab {
		return false
	}
	s.Tab = e.Tab
	return true
}

// TransferDraftUpdated replaces the transfer form values.
type TransferDraftUpdated struct {
	Draft TransferDraft
}

func (e TransferDraftUpdated) apply(s *State, _ Options) bool {
	s.TransferDraft = e.Draft
	return true
}

// IntentDraftUpdated replaces the intent form values.
type IntentDraftUpdated struct {
	Draft IntentDraft
}

func (e IntentDraftUpdated) apply(s *State, _ Options) bool {
	s.IntentDraft = e.Draft
	return true
}
