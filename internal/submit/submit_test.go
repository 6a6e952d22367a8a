package submit

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/ledger"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// loadedStore returns a store for alice with a known balance, one
// transaction and drafts filled in.
func loadedStore(t *testing.T) (*viewstate.Store, uint64) {
	t.Helper()
	store := viewstate.NewStore(viewstate.Initial(domain.DefaultAssets(), "bob"), viewstate.Options{})
	gen := store.SelectIdentity("alice")
	store.Dispatch(viewstate.BalanceFetched{Generation: gen, Snapshot: domain.BalanceSnapshot{
		User:     "alice",
		Balances: map[string]decimal.Decimal{"ETH": decimal.NewFromInt(100), "XAN": decimal.NewFromInt(50)},
	}})
	store.Dispatch(viewstate.TxsFetched{Generation: gen, Transactions: []domain.TransactionRecord{{From: "bob", To: "alice", Token: "XAN", Amount: 50}}})
	store.Dispatch(viewstate.IntentsFetched{Generation: gen, Intents: []domain.IntentRecord{}})
	store.Dispatch(viewstate.TransferDraftUpdated{Draft: viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: "10"}})
	store.Dispatch(viewstate.IntentDraftUpdated{Draft: viewstate.IntentDraft{Amount: "5", FromAsset: "ETH", ToAsset: "XAN"}})
	return store, gen
}

func TestTransferSuccess(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"tx":{"from":"alice","to":"bob","token":"ETH","amount":10},"senderBalance":{"balances":{"ETH":90,"XAN":50}}}`))
	}))
	defer server.Close()

	store, gen := loadedStore(t)
	sub := NewTransferSubmitter(ledger.NewClient(server.URL), store)

	tx, err := sub.Submit(context.Background(), gen, "alice", "bob", "ETH", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (a) exact body
	if want := `{"from":"alice","to":"bob","token":"ETH","amount":10}`; gotBody != want {
		t.Errorf("body = %s, want %s", gotBody, want)
	}

	st := store.State()

	// (b) balance replaced with alice's returned balances
	if st.Balance.User != "alice" || !st.Balance.Amount("ETH").Equal(decimal.NewFromInt(90)) || !st.Balance.Amount("XAN").Equal(decimal.NewFromInt(50)) {
		t.Errorf("Balance = %+v", st.Balance)
	}

	// (c) exactly one record appended, equal to the returned tx
	want := domain.TransactionRecord{From: "alice", To: "bob", Token: "ETH", Amount: 10}
	if tx != want {
		t.Errorf("returned tx = %+v, want %+v", tx, want)
	}
	if len(st.Transactions) != 2 || st.Transactions[1] != want {
		t.Errorf("Transactions = %+v, want previous record plus %+v", st.Transactions, want)
	}

	// (d) amount cleared, (e) recipient and token unchanged
	if st.TransferDraft != (viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: ""}) {
		t.Errorf("TransferDraft = %+v", st.TransferDraft)
	}
}

func TestTransferRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"insufficient funds"}`))
	}))
	defer server.Close()

	store, gen := loadedStore(t)
	before := store.State()
	sub := NewTransferSubmitter(ledger.NewClient(server.URL), store)

	_, err := sub.Submit(context.Background(), gen, "alice", "bob", "ETH", 1000)

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if !serr.Rejected || serr.Message != "insufficient funds" {
		t.Errorf("error = %+v, want rejection with literal text", serr)
	}

	after := store.State()
	if !after.Balance.Amount("ETH").Equal(before.Balance.Amount("ETH")) {
		t.Errorf("balance changed: %s -> %s", before.Balance.Amount("ETH"), after.Balance.Amount("ETH"))
	}
	if len(after.Transactions) != len(before.Transactions) {
		t.Errorf("transactions changed: %d -> %d", len(before.Transactions), len(after.Transactions))
	}
	if after.TransferDraft.Amount != "10" {
		t.Errorf("amount draft = %q, want preserved 10", after.TransferDraft.Amount)
	}
}

func TestTransferTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	store, gen := loadedStore(t)
	sub := NewTransferSubmitter(ledger.NewClient(server.URL), store)

	_, err := sub.Submit(context.Background(), gen, "alice", "bob", "ETH", 10)

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if serr.Rejected || serr.Message != TransferFailedMessage {
		t.Errorf("error = %+v, want transport failure alert", serr)
	}
	if store.State().TransferDraft.Amount != "10" {
		t.Error("amount draft should be preserved")
	}
}

func TestTransferNonFiniteAmountIsNotSent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	store, gen := loadedStore(t)
	sub := NewTransferSubmitter(ledger.NewClient(server.URL), store)

	for _, amount := range []float64{math.Inf(1), math.NaN()} {
		if _, err := sub.Submit(context.Background(), gen, "alice", "bob", "ETH", amount); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("Submit(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("requests = %d, want 0", calls.Load())
	}
}

func TestTransferAfterIdentitySwitchDoesNotLeak(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"tx":{"from":"alice","to":"bob","token":"ETH","amount":10},"senderBalance":{"balances":{"ETH":90}}}`))
	}))
	defer server.Close()

	store, gen := loadedStore(t)
	sub := NewTransferSubmitter(ledger.NewClient(server.URL), store)

	done := make(chan error)
	go func() {
		_, err := sub.Submit(context.Background(), gen, "alice", "bob", "ETH", 10)
		done <- err
	}()

	store.SelectIdentity("bob")
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := store.State()
	if st.Balance != nil || st.Transactions != nil {
		t.Errorf("alice's transfer leaked into bob's view: %+v", st)
	}
}

func TestIntentSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"intent":{"maker":"alice","action":"swap","amount":5,"from_asset":"ETH","to_asset":"XAN"}}`))
	}))
	defer server.Close()

	store, gen := loadedStore(t)
	before := store.State()
	sub := NewIntentSubmitter(ledger.NewClient(server.URL), store)

	intent, err := sub.Submit(context.Background(), gen, "alice", 5, "ETH", "XAN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.IntentRecord{Maker: "alice", Action: "swap", Amount: 5, FromAsset: "ETH", ToAsset: "XAN"}
	if intent != want {
		t.Errorf("intent = %+v, want %+v", intent, want)
	}

	st := store.State()
	if len(st.Intents) != 1 || st.Intents[0] != want {
		t.Errorf("Intents = %+v, want [%+v]", st.Intents, want)
	}
	if !st.Balance.Amount("ETH").Equal(before.Balance.Amount("ETH")) || !st.Balance.Amount("XAN").Equal(before.Balance.Amount("XAN")) {
		t.Errorf("balance changed by intent: %v", st.Balance.Balances)
	}
	if st.IntentDraft.Amount != "" || st.IntentDraft.FromAsset != "ETH" || st.IntentDraft.ToAsset != "XAN" {
		t.Errorf("IntentDraft = %+v, want amount cleared only", st.IntentDraft)
	}
}

func TestIntentFailures(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantRejected bool
		wantMessage  string
	}{
		{"rejection", http.StatusOK, `{"error":"same asset"}`, true, "same asset"},
		{"transport", http.StatusInternalServerError, `oops`, false, IntentFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			store, gen := loadedStore(t)
			sub := NewIntentSubmitter(ledger.NewClient(server.URL), store)

			_, err := sub.Submit(context.Background(), gen, "alice", 5, "ETH", "ETH")

			var serr *Error
			if !errors.As(err, &serr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if serr.Rejected != tt.wantRejected || serr.Message != tt.wantMessage {
				t.Errorf("error = %+v, want rejected=%v message=%q", serr, tt.wantRejected, tt.wantMessage)
			}

			st := store.State()
			if len(st.Intents) != 0 {
				t.Errorf("Intents = %+v, want unchanged", st.Intents)
			}
			if st.IntentDraft.Amount != "5" {
				t.Errorf("intent amount draft = %q, want preserved", st.IntentDraft.Amount)
			}
		})
	}
}
