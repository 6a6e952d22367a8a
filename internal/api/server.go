package api

import (
	"net/http"
	"time"

	"github.com/mtlprog/wallet/internal/wallet"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, w *wallet.Wallet) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(w),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter returns the API routes wrapped in CORS handling.
func NewRouter(w *wallet.Wallet) http.Handler {
	handler := NewHandler(w)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/state", handler.GetState)
	mux.HandleFunc("GET /api/v1/assets", handler.GetAssets)
	mux.HandleFunc("GET /api/v1/stream", handler.Stream)
	mux.HandleFunc("POST /api/v1/identity", handler.SelectIdentity)
	mux.HandleFunc("POST /api/v1/refresh", handler.Refresh)
	mux.HandleFunc("POST /api/v1/tab", handler.SetTab)
	mux.HandleFunc("PUT /api/v1/drafts/transfer", handler.UpdateTransferDraft)
	mux.HandleFunc("PUT /api/v1/drafts/intent", handler.UpdateIntentDraft)
	mux.HandleFunc("POST /api/v1/transfer", handler.SubmitTransfer)
	mux.HandleFunc("POST /api/v1/intent", handler.SubmitIntent)
	mux.HandleFunc("POST /api/v1/faucet", handler.RequestFaucet)

	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
