package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/submit"
	"github.com/mtlprog/wallet/internal/viewstate"
	"github.com/mtlprog/wallet/internal/wallet"
)

const maxBodyBytes = 1 << 16

// Handler provides HTTP endpoints over a wallet's view state.
type Handler struct {
	wallet *wallet.Wallet
}

// NewHandler creates a new API handler.
func NewHandler(w *wallet.Wallet) *Handler {
	return &Handler{wallet: w}
}

// GetState handles GET /api/v1/state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// GetAssets handles GET /api/v1/assets.
func (h *Handler) GetAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.wallet.Assets().All())
}

type identityRequest struct {
	User domain.Identity `json:"user"`
}

// SelectIdentity handles POST /api/v1/identity. With ?wait=true the
// response is delayed until all three account fetches have landed.
func (h *Handler) SelectIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}

	pending := h.wallet.SelectIdentity(req.User)
	if r.URL.Query().Get("wait") == "true" {
		pending.Wait()
		h.writeState(w, http.StatusOK)
		return
	}
	h.writeState(w, http.StatusAccepted)
}

// Refresh handles POST /api/v1/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	pending, err := h.wallet.Refresh()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if r.URL.Query().Get("wait") == "true" {
		pending.Wait()
		h.writeState(w, http.StatusOK)
		return
	}
	h.writeState(w, http.StatusAccepted)
}

type tabRequest struct {
	Tab domain.Tab `json:"tab"`
}

// SetTab handles POST /api/v1/tab.
func (h *Handler) SetTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.wallet.SetTab(req.Tab); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeState(w, http.StatusOK)
}

// UpdateTransferDraft handles PUT /api/v1/drafts/transfer.
func (h *Handler) UpdateTransferDraft(w http.ResponseWriter, r *http.Request) {
	var d viewstate.TransferDraft
	if !decodeBody(w, r, &d) {
		return
	}
	h.wallet.UpdateTransferDraft(d)
	h.writeState(w, http.StatusOK)
}

// UpdateIntentDraft handles PUT /api/v1/drafts/intent.
func (h *Handler) UpdateIntentDraft(w http.ResponseWriter, r *http.Request) {
	var d viewstate.IntentDraft
	if !decodeBody(w, r, &d) {
		return
	}
	h.wallet.UpdateIntentDraft(d)
	h.writeState(w, http.StatusOK)
}

// SubmitTransfer handles POST /api/v1/transfer.
func (h *Handler) SubmitTransfer(w http.ResponseWriter, r *http.Request) {
	tx, err := h.wallet.SubmitTransfer(r.Context())
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tx": tx, "state": h.view()})
}

// SubmitIntent handles POST /api/v1/intent.
func (h *Handler) SubmitIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.wallet.SubmitIntent(r.Context())
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"intent": intent, "state": h.view()})
}

// RequestFaucet handles POST /api/v1/faucet.
func (h *Handler) RequestFaucet(w http.ResponseWriter, r *http.Request) {
	if err := h.wallet.RequestFaucet(r.Context()); err != nil {
		writeSubmitError(w, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) view() StateView {
	return newStateView(h.wallet.State(), h.wallet.Assets())
}

func (h *Handler) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, h.view())
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var subErr *submit.Error
	switch {
	case errors.As(err, &subErr) && subErr.Rejected:
		writeError(w, http.StatusUnprocessableEntity, subErr.Message)
	case errors.As(err, &subErr):
		slog.Warn("ledger request failed", "error", subErr.Err)
		writeError(w, http.StatusBadGateway, subErr.Message)
	case errors.Is(err, wallet.ErrNoIdentity):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
