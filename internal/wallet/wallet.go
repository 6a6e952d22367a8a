// Package wallet wires the view state to its producers: account sync,
// price feed, transfer and intent submission, and the faucet.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/wallet/internal/accountsync"
	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/pricefeed"
	"github.com/mtlprog/wallet/internal/submit"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// FaucetFailedMessage is shown when the faucet request fails for any reason.
const FaucetFailedMessage = "Faucet failed"

var (
	ErrNoIdentity       = errors.New("no identity selected")
	ErrUnknownTab       = errors.New("unknown tab")
	ErrUnsupportedAsset = errors.New("unsupported asset")
)

// Ledger is everything the wallet needs from the ledger service.
type Ledger interface {
	accountsync.Fetcher
	submit.TransferClient
	submit.IntentClient
	pricefeed.Source
	RequestFaucet(ctx context.Context, user domain.Identity) (domain.BalanceSnapshot, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

type logNotifier struct{}

func (logNotifier) Notify(message string) {
	slog.Warn("Wallet: alert", "message", message)
}

// Options configure a Wallet. Zero values fall back to defaults.
type Options struct {
	Assets                *domain.AssetRegistry
	DefaultRecipient      domain.Identity
	RetainPricesOnFailure bool
	PriceSource           pricefeed.Source
	PriceInterval         time.Duration
	PriceArchive          pricefeed.QuoteRepository
	Notifier              Notifier
}

// Wallet is the single owner of the view state.
type Wallet struct {
	ctx       context.Context
	assets    *domain.AssetRegistry
	ledger    Ledger
	store     *viewstate.Store
	sync      *accountsync.Service
	transfers *submit.TransferSubmitter
	intents   *submit.IntentSubmitter
	feed      *pricefeed.Feed
	notifier  Notifier
}

// New creates a wallet. ctx bounds the lifetime of background fetches;
// cancelling it abandons in-flight resyncs and stops the price feed.
func New(ctx context.Context, ledger Ledger, opts Options) *Wallet {
	if opts.Assets == nil {
		opts.Assets = domain.DefaultAssets()
	}
	if opts.PriceSource == nil {
		opts.PriceSource = ledger
	}
	if opts.PriceInterval <= 0 {
		opts.PriceInterval = 15 * time.Second
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{}
	}

	store := viewstate.NewStore(
		viewstate.Initial(opts.Assets, opts.DefaultRecipient),
		viewstate.Options{RetainPricesOnFailure: opts.RetainPricesOnFailure},
	)

	var feedOpts []pricefeed.Option
	if opts.PriceArchive != nil {
		feedOpts = append(feedOpts, pricefeed.WithArchive(opts.PriceArchive))
	}

	return &Wallet{
		ctx:       ctx,
		assets:    opts.Assets,
		ledger:    ledger,
		store:     store,
		sync:      accountsync.NewService(ledger, store),
		transfers: submit.NewTransferSubmitter(ledger, store),
		intents:   submit.NewIntentSubmitter(ledger, store),
		feed:      pricefeed.NewFeed(opts.PriceSource, store, opts.PriceInterval, feedOpts...),
		notifier:  opts.Notifier,
	}
}

// State returns a copy of the current view state.
func (w *Wallet) State() viewstate.State {
	return w.store.State()
}

// Subscribe streams view state changes. Call the returned func to stop.
func (w *Wallet) Subscribe() (<-chan viewstate.State, func()) {
	return w.store.Subscribe()
}

// Assets returns the asset table.
func (w *Wallet) Assets() *domain.AssetRegistry {
	return w.assets
}

// SelectIdentity clears everything shown for the previous identity, then
// starts a resync for id. The clear happens before this call returns.
func (w *Wallet) SelectIdentity(id domain.Identity) *accountsync.Pending {
	gen := w.store.SelectIdentity(id)
	slog.Info("Wallet: identity selected", "user", id, "generation", gen)
	return w.sync.Resync(w.ctx, id, gen)
}

// Refresh resyncs the current identity without clearing what is shown.
func (w *Wallet) Refresh() (*accountsync.Pending, error) {
	st := w.store.State()
	if st.Identity == "" {
		return nil, ErrNoIdentity
	}
	return w.sync.Resync(w.ctx, st.Identity, st.Generation), nil
}

// StartPrices activates the price feed. The caller owns the handle and must Stop it.
func (w *Wallet) StartPrices() *pricefeed.Handle {
	return w.feed.Start(w.ctx)
}

// RefreshPrices polls the price source once, independent of the feed's ticker.
func (w *Wallet) RefreshPrices(ctx context.Context) {
	w.feed.Poll(ctx)
}

// SetTab switches the active tab.
func (w *Wallet) SetTab(tab domain.Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %q, want one of %v", ErrUnknownTab, tab, domain.Tabs())
	}
	w.store.Dispatch(viewstate.TabSelected{Tab: tab})
	return nil
}

// UpdateTransferDraft replaces the transfer form values.
func (w *Wallet) UpdateTransferDraft(d viewstate.TransferDraft) {
	w.store.Dispatch(viewstate.TransferDraftUpdated{Draft: d})
}

// UpdateIntentDraft replaces the intent form values.
func (w *Wallet) UpdateIntentDraft(d viewstate.IntentDraft) {
	w.store.Dispatch(viewstate.IntentDraftUpdated{Draft: d})
}

// SubmitTransfer sends the transfer draft from the selected identity.
// Every failure is reported through the notifier as well as returned.
func (w *Wallet) SubmitTransfer(ctx context.Context) (domain.TransactionRecord, error) {
	st := w.store.State()
	draft := st.TransferDraft

	amount, err := w.validate(st.Identity, draft.Amount, draft.Token)
	if err != nil {
		w.notifier.Notify(err.Error())
		return domain.TransactionRecord{}, err
	}

	tx, err := w.transfers.Submit(context.WithoutCancel(ctx), st.Generation, st.Identity, draft.To, draft.Token, amount)
	if err != nil {
		w.notifier.Notify(err.Error())
		return domain.TransactionRecord{}, err
	}
	return tx, nil
}

// SubmitIntent sends the intent draft as a swap by the selected identity.
func (w *Wallet) SubmitIntent(ctx context.Context) (domain.IntentRecord, error) {
	st := w.store.State()
	draft := st.IntentDraft

	amount, err := w.validate(st.Identity, draft.Amount, draft.FromAsset, draft.ToAsset)
	if err != nil {
		w.notifier.Notify(err.Error())
		return domain.IntentRecord{}, err
	}

	intent, err := w.intents.Submit(context.WithoutCancel(ctx), st.Generation, st.Identity, amount, draft.FromAsset, draft.ToAsset)
	if err != nil {
		w.notifier.Notify(err.Error())
		return domain.IntentRecord{}, err
	}
	return intent, nil
}

// RequestFaucet credits test funds to the selected identity and replaces
// the balance snapshot with the result.
func (w *Wallet) RequestFaucet(ctx context.Context) error {
	st := w.store.State()
	if st.Identity == "" {
		w.notifier.Notify(ErrNoIdentity.Error())
		return ErrNoIdentity
	}

	snap, err := w.ledger.RequestFaucet(context.WithoutCancel(ctx), st.Identity)
	if err != nil {
		slog.Error("Wallet: faucet request failed", "user", st.Identity, "error", err)
		w.store.Dispatch(viewstate.FaucetFailed{Generation: st.Generation, Err: err})
		w.notifier.Notify(FaucetFailedMessage)
		return &submit.Error{Message: FaucetFailedMessage, Err: err}
	}

	w.store.Dispatch(viewstate.FaucetSucceeded{Generation: st.Generation, Snapshot: snap})
	return nil
}

func (w *Wallet) validate(id domain.Identity, amount string, symbols ...string) (float64, error) {
	if id == "" {
		return 0, ErrNoIdentity
	}
	for _, s := range symbols {
		if !w.assets.Supports(s) {
			return 0, fmt.Errorf("%w: %q", ErrUnsupportedAsset, s)
		}
	}
	return domain.ParseAmount(amount)
}
