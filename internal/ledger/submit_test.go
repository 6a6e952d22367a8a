package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSubmitTransferSendsExactBody(t *testing.T) {
	var gotBody, gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"tx":{"from":"alice","to":"bob","token":"ETH","amount":10},"senderBalance":{"balances":{"ETH":90,"XAN":5}}}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL).SubmitTransfer(context.Background(), TransferRequest{
		From: "alice", To: "bob", Token: "ETH", Amount: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if want := `{"from":"alice","to":"bob","token":"ETH","amount":10}`; gotBody != want {
		t.Errorf("body = %s, want %s", gotBody, want)
	}
	if res.Tx.From != "alice" || res.Tx.To != "bob" || res.Tx.Amount != 10 {
		t.Errorf("Tx = %+v", res.Tx)
	}
	if !res.SenderBalances["ETH"].Equal(decimal.NewFromInt(90)) {
		t.Errorf("ETH = %s, want 90", res.SenderBalances["ETH"])
	}
}

func TestSubmitTransferRejection(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"insufficient funds"}`))
		}))

		_, err := NewClient(server.URL).SubmitTransfer(context.Background(), TransferRequest{From: "alice", To: "bob", Token: "ETH", Amount: 1e9})
		server.Close()

		rej, ok := IsRejection(err)
		if !ok {
			t.Fatalf("status %d: error = %v, want rejection", status, err)
		}
		if rej.Error() != "insufficient funds" {
			t.Errorf("status %d: message = %q, want literal ledger text", status, rej.Error())
		}
	}
}

func TestSubmitTransferTransportFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error without body", http.StatusInternalServerError, ``},
		{"server error html", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"missing balances", http.StatusOK, `{"tx":{"from":"alice","to":"bob","token":"ETH","amount":1}}`},
		{"missing tx", http.StatusOK, `{"senderBalance":{"balances":{"ETH":1}}}`},
		{"malformed", http.StatusOK, `{"tx":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).SubmitTransfer(context.Background(), TransferRequest{From: "alice", To: "bob", Token: "ETH", Amount: 1})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if _, ok := IsRejection(err); ok {
				t.Errorf("error %v should not be a rejection", err)
			}
		})
	}
}

func TestSubmitIntent(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/intent" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"intent":{"maker":"alice","action":"swap","amount":5,"from_asset":"ETH","to_asset":"XAN"}}`))
	}))
	defer server.Close()

	intent, err := NewClient(server.URL).SubmitIntent(context.Background(), NewSwapIntent("alice", 5, "ETH", "XAN"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{"maker": "alice", "action": "swap", "amount": float64(5), "from_asset": "ETH", "to_asset": "XAN"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("body has %d fields, want %d", len(got), len(want))
	}

	if intent.Maker != "alice" || intent.Action != "swap" || intent.Amount != 5 || intent.FromAsset != "ETH" || intent.ToAsset != "XAN" {
		t.Errorf("intent = %+v", intent)
	}
}

func TestSubmitIntentRejectionAndFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"unsupported pair"}`))
	}))
	_, err := NewClient(server.URL).SubmitIntent(context.Background(), NewSwapIntent("alice", 5, "ETH", "ETH"))
	server.Close()

	if rej, ok := IsRejection(err); !ok || rej.Message != "unsupported pair" {
		t.Errorf("error = %v, want rejection 'unsupported pair'", err)
	}

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err = NewClient(server.URL).SubmitIntent(context.Background(), NewSwapIntent("alice", 5, "ETH", "XAN"))
	if err == nil {
		t.Fatal("expected error for response without intent")
	}
	if _, ok := IsRejection(err); ok {
		t.Error("empty response should not be a rejection")
	}
}
