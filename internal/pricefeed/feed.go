package pricefeed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/wallet/internal/viewstate"
)

// Source fetches the full price-feed id to USD map.
type Source interface {
	FetchPrices(ctx context.Context) (map[string]float64, error)
}

// Dispatcher receives poll results.
type Dispatcher interface {
	Dispatch(ev viewstate.Event) bool
}

// ticker abstracts time.Ticker so tests can drive poll cycles.
type ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) Chan() <-chan time.Time { return t.C }

// Feed periodically polls a price source and writes quotes into the view state.
type Feed struct {
	source    Source
	store     Dispatcher
	archive   QuoteRepository
	interval  time.Duration
	newTicker func(time.Duration) ticker
	now       func() time.Time
}

// Option configures a Feed.
type Option func(*Feed)

// WithArchive records every successful quote in repo.
func WithArchive(repo QuoteRepository) Option {
	return func(f *Feed) {
		f.archive = repo
	}
}

// NewFeed creates a price feed polling source every interval.
func NewFeed(source Source, store Dispatcher, interval time.Duration, opts ...Option) *Feed {
	f := &Feed{
		source:   source,
		store:    store,
		interval: interval,
		newTicker: func(d time.Duration) ticker {
			return realTicker{time.NewTicker(d)}
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run fetches immediately, then on every tick. It blocks until the context is cancelled.
func (f *Feed) Run(ctx context.Context) {
	slog.Info("PriceFeed: starting", "interval", f.interval)

	f.Poll(ctx)

	t := f.newTicker(f.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("PriceFeed: shutting down")
			return
		case <-t.Chan():
			f.Poll(ctx)
		}
	}
}

// Handle is an active feed. Stop must be called when the owning view goes away.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs the feed in the background until Stop is called or ctx is cancelled.
func (f *Feed) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		f.Run(ctx)
	}()
	return h
}

// Stop cancels the ticker and waits for the poll loop to exit. No fetch is
// issued after Stop returns. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the poll loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poll fetches once and applies the result, outside any ticker loop.
func (f *Feed) Poll(ctx context.Context) {
	prices, err := f.source.FetchPrices(ctx)
	if err != nil {
		slog.Warn("PriceFeed: fetch failed", "error", err)
		f.store.Dispatch(viewstate.PricesFetchFailed{Err: err})
		return
	}

	at := f.now()
	f.store.Dispatch(viewstate.PricesFetched{Prices: prices, At: at})

	if f.archive != nil {
		if err := f.archive.SaveQuotes(ctx, prices, at); err != nil {
			slog.Error("PriceFeed: archiving quotes failed", "error", err)
		}
	}
}
