package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/ledger"
	"github.com/mtlprog/wallet/internal/submit"
	"github.com/mtlprog/wallet/internal/viewstate"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeLedger struct {
	posts    atomic.Int32
	lastBody atomic.Value
	faucetOK bool
}

func (f *fakeLedger) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /balance", func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		w.Write([]byte(`{"user":"` + user + `","balances":{"ETH":100,"XAN":` + map[string]string{"alice": "50", "bob": "7"}[user] + `}}`))
	})
	mux.HandleFunc("GET /txs", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"from":"alice","to":"bob","token":"ETH","amount":1}]`))
	})
	mux.HandleFunc("GET /intents", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("GET /prices", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ethereum":{"usd":2000}}`))
	})
	mux.HandleFunc("GET /faucet", func(w http.ResponseWriter, r *http.Request) {
		if !f.faucetOK {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"user":"` + r.URL.Query().Get("user") + `","balances":{"ETH":200,"XAN":50}}`))
	})
	mux.HandleFunc("POST /send", func(w http.ResponseWriter, r *http.Request) {
		f.posts.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(body))

		var req ledger.TransferRequest
		json.Unmarshal(body, &req)
		if req.Amount > 100 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"insufficient funds"}`))
			return
		}
		w.Write([]byte(`{"tx":` + string(body) + `,"senderBalance":{"balances":{"ETH":90,"XAN":50}}}`))
	})
	mux.HandleFunc("POST /intent", func(w http.ResponseWriter, r *http.Request) {
		f.posts.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(body))
		w.Write([]byte(`{"intent":` + string(body) + `}`))
	})
	return mux
}

func newTestWallet(t *testing.T, fl *fakeLedger) (*Wallet, *recordingNotifier) {
	t.Helper()
	srv := httptest.NewServer(fl.handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := &recordingNotifier{}
	w := New(ctx, ledger.NewClient(srv.URL), Options{
		DefaultRecipient:      "bob",
		RetainPricesOnFailure: true,
		PriceInterval:         time.Hour,
		Notifier:              n,
	})
	return w, n
}

func TestSelectIdentityClearsPreviousData(t *testing.T) {
	w, _ := newTestWallet(t, &fakeLedger{})

	w.SelectIdentity("alice").Wait()
	if st := w.State(); !st.Loaded() || st.Balance.User != "alice" {
		t.Fatalf("alice not loaded: %+v", st)
	}

	pending := w.SelectIdentity("bob")
	st := w.State()
	if st.Identity != "bob" {
		t.Errorf("Identity = %q, want bob", st.Identity)
	}
	if st.Balance != nil && st.Balance.User == "alice" {
		t.Error("alice balance visible after switching to bob")
	}
	pending.Wait()

	st = w.State()
	if st.Balance == nil || st.Balance.User != "bob" {
		t.Fatalf("Balance = %+v, want bob snapshot", st.Balance)
	}
	if st.Balance.Amount("XAN").IntPart() != 7 {
		t.Errorf("bob XAN = %s, want 7", st.Balance.Amount("XAN"))
	}
}

func TestSubmitTransferSuccess(t *testing.T) {
	fl := &fakeLedger{}
	w, n := newTestWallet(t, fl)
	w.SelectIdentity("alice").Wait()

	w.UpdateTransferDraft(viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: "10"})
	tx, err := w.SubmitTransfer(context.Background())
	if err != nil {
		t.Fatalf("SubmitTransfer: %v", err)
	}

	want := `{"from":"alice","to":"bob","token":"ETH","amount":10}`
	if got := fl.lastBody.Load(); got != want {
		t.Errorf("body = %v, want %s", got, want)
	}
	if tx.From != "alice" || tx.To != "bob" || tx.Amount != 10 {
		t.Errorf("tx = %+v", tx)
	}

	st := w.State()
	if st.Balance.Amount("ETH").IntPart() != 90 {
		t.Errorf("ETH = %s, want 90", st.Balance.Amount("ETH"))
	}
	if len(st.Transactions) != 2 {
		t.Errorf("len(Transactions) = %d, want 2", len(st.Transactions))
	}
	if st.TransferDraft != (viewstate.TransferDraft{To: "bob", Token: "ETH"}) {
		t.Errorf("TransferDraft = %+v", st.TransferDraft)
	}
	if msgs := n.all(); len(msgs) != 0 {
		t.Errorf("unexpected alerts: %v", msgs)
	}
}

func TestSubmitTransferRejected(t *testing.T) {
	fl := &fakeLedger{}
	w, n := newTestWallet(t, fl)
	w.SelectIdentity("alice").Wait()

	w.UpdateTransferDraft(viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: "1000"})
	before := w.State()

	_, err := w.SubmitTransfer(context.Background())
	var subErr *submit.Error
	if !errors.As(err, &subErr) || !subErr.Rejected {
		t.Fatalf("err = %v, want rejection", err)
	}

	after := w.State()
	if !after.Balance.Amount("ETH").Equal(before.Balance.Amount("ETH")) {
		t.Error("balance changed after rejection")
	}
	if len(after.Transactions) != len(before.Transactions) {
		t.Error("transaction appended after rejection")
	}
	if after.TransferDraft.Amount != "1000" {
		t.Errorf("amount draft = %q, want kept", after.TransferDraft.Amount)
	}
	if msgs := n.all(); len(msgs) != 1 || msgs[0] != "insufficient funds" {
		t.Errorf("alerts = %v", msgs)
	}
}

func TestSubmitTransferValidation(t *testing.T) {
	tests := []struct {
		name       string
		selectUser bool
		draft      viewstate.TransferDraft
		wantErr    error
	}{
		{"no identity", false, viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: "1"}, ErrNoIdentity},
		{"empty amount", true, viewstate.TransferDraft{To: "bob", Token: "ETH"}, domain.ErrInvalidAmount},
		{"garbage amount", true, viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: "ten"}, domain.ErrInvalidAmount},
		{"infinite amount", true, viewstate.TransferDraft{To: "bob", Token: "ETH", Amount: "Inf"}, domain.ErrInvalidAmount},
		{"unknown token", true, viewstate.TransferDraft{To: "bob", Token: "DOGE", Amount: "1"}, ErrUnsupportedAsset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := &fakeLedger{}
			w, n := newTestWallet(t, fl)
			if tt.selectUser {
				w.SelectIdentity("alice").Wait()
			}
			w.UpdateTransferDraft(tt.draft)

			_, err := w.SubmitTransfer(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if fl.posts.Load() != 0 {
				t.Error("request issued for invalid draft")
			}
			if len(n.all()) != 1 {
				t.Errorf("alerts = %v, want one", n.all())
			}
		})
	}
}

func TestSubmitIntentSuccess(t *testing.T) {
	fl := &fakeLedger{}
	w, _ := newTestWallet(t, fl)
	w.SelectIdentity("alice").Wait()
	before := w.State()

	w.UpdateIntentDraft(viewstate.IntentDraft{Amount: "5", FromAsset: "ETH", ToAsset: "XAN"})
	intent, err := w.SubmitIntent(context.Background())
	if err != nil {
		t.Fatalf("SubmitIntent: %v", err)
	}
	if intent.Action != domain.ActionSwap || intent.Maker != "alice" {
		t.Errorf("intent = %+v", intent)
	}

	st := w.State()
	if len(st.Intents) != 1 {
		t.Errorf("len(Intents) = %d, want 1", len(st.Intents))
	}
	if !st.Balance.Amount("ETH").Equal(before.Balance.Amount("ETH")) {
		t.Error("intent changed balance")
	}
	if st.IntentDraft.Amount != "" {
		t.Errorf("intent amount draft = %q, want cleared", st.IntentDraft.Amount)
	}
}

func TestRequestFaucet(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w, n := newTestWallet(t, &fakeLedger{faucetOK: true})
		w.SelectIdentity("alice").Wait()

		if err := w.RequestFaucet(context.Background()); err != nil {
			t.Fatalf("RequestFaucet: %v", err)
		}
		if got := w.State().Balance.Amount("ETH").IntPart(); got != 200 {
			t.Errorf("ETH = %d, want 200", got)
		}
		if len(n.all()) != 0 {
			t.Errorf("alerts = %v", n.all())
		}
	})

	t.Run("failure", func(t *testing.T) {
		w, n := newTestWallet(t, &fakeLedger{})
		w.SelectIdentity("alice").Wait()
		before := w.State()

		if err := w.RequestFaucet(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if !w.State().Balance.Amount("ETH").Equal(before.Balance.Amount("ETH")) {
			t.Error("balance changed after failed faucet")
		}
		if msgs := n.all(); len(msgs) != 1 || msgs[0] != FaucetFailedMessage {
			t.Errorf("alerts = %v", msgs)
		}
	})
}

func TestSetTab(t *testing.T) {
	w, _ := newTestWallet(t, &fakeLedger{})

	if err := w.SetTab(domain.TabHistory); err != nil {
		t.Fatalf("SetTab: %v", err)
	}
	if w.State().Tab != domain.TabHistory {
		t.Errorf("Tab = %q", w.State().Tab)
	}
	if err := w.SetTab("settings"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("err = %v, want ErrUnknownTab", err)
	}
}

func TestRefreshRequiresIdentity(t *testing.T) {
	w, _ := newTestWallet(t, &fakeLedger{})
	if _, err := w.Refresh(); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("err = %v, want ErrNoIdentity", err)
	}

	w.SelectIdentity("alice").Wait()
	pending, err := w.Refresh()
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	pending.Wait()
	if len(w.State().Transactions) != 1 {
		t.Errorf("refresh appended instead of replacing: %d txs", len(w.State().Transactions))
	}
}

func TestStartPrices(t *testing.T) {
	w, _ := newTestWallet(t, &fakeLedger{})
	updates, unsubscribe := w.Subscribe()
	defer unsubscribe()

	h := w.StartPrices()
	defer h.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-updates:
			if p, ok := st.Prices.Price("ethereum"); ok && p == 2000 {
				return
			}
		case <-deadline:
			t.Fatal("prices never arrived")
		}
	}
}

func TestRefreshPrices(t *testing.T) {
	w, _ := newTestWallet(t, &fakeLedger{})

	w.RefreshPrices(context.Background())

	st := w.State()
	if p, ok := st.Prices.Price("ethereum"); !ok || p != 2000 {
		t.Errorf("ethereum = %v, %v; want 2000", p, ok)
	}
	if st.Prices.Stale {
		t.Error("fresh quote marked stale")
	}
}
