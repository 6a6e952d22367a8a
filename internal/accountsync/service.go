package accountsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// Fetcher is the subset of the ledger client used for a resync.
type Fetcher interface {
	FetchBalance(ctx context.Context, user domain.Identity) (domain.BalanceSnapshot, error)
	FetchTransactions(ctx context.Context) ([]domain.TransactionRecord, error)
	FetchIntents(ctx context.Context) ([]domain.IntentRecord, error)
}

// Dispatcher receives fetch results.
type Dispatcher interface {
	Dispatch(ev viewstate.Event) bool
}

// Service refreshes balance, transaction log and intent log for an identity.
type Service struct {
	fetcher Fetcher
	store   Dispatcher
}

// NewService creates a new account sync service.
func NewService(fetcher Fetcher, store Dispatcher) *Service {
	return &Service{fetcher: fetcher, store: store}
}

// Pending tracks the fetches of one resync.
type Pending struct {
	wg sync.WaitGroup
}

// Wait blocks until all three fetches have been applied or discarded.
func (p *Pending) Wait() {
	p.wg.Wait()
}

// Resync issues the balance, transaction and intent fetches concurrently and
// returns without waiting. Each result is dispatched as soon as it arrives,
// tagged with generation so results for a superseded identity are dropped.
// Failures are not retried.
func (s *Service) Resync(ctx context.Context, user domain.Identity, generation uint64) *Pending {
	p := &Pending{}
	p.wg.Add(3)

	go func() {
		defer p.wg.Done()
		snap, err := s.fetcher.FetchBalance(ctx, user)
		if err != nil {
			slog.Warn("AccountSync: balance fetch failed", "user", user, "error", err)
			s.store.Dispatch(viewstate.BalanceFetchFailed{Generation: generation, Err: err})
			return
		}
		s.store.Dispatch(viewstate.BalanceFetched{Generation: generation, Snapshot: snap})
	}()

	go func() {
		defer p.wg.Done()
		txs, err := s.fetcher.FetchTransactions(ctx)
		if err != nil {
			slog.Warn("AccountSync: transactions fetch failed", "user", user, "error", err)
			s.store.Dispatch(viewstate.TxsFetchFailed{Generation: generation, Err: err})
			return
		}
		s.store.Dispatch(viewstate.TxsFetched{Generation: generation, Transactions: txs})
	}()

	go func() {
		defer p.wg.Done()
		intents, err := s.fetcher.FetchIntents(ctx)
		if err != nil {
			slog.Warn("AccountSync: intents fetch failed", "user", user, "error", err)
			s.store.Dispatch(viewstate.IntentsFetchFailed{Generation: generation, Err: err})
			return
		}
		s.store.Dispatch(viewstate.IntentsFetched{Generation: generation, Intents: intents})
	}()

	return p
}
