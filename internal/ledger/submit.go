package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mtlprog/wallet/internal/domain"
)

// SubmitTransfer posts a transfer. An explicit error field in the response
// is returned as *RejectionError; anything else that is not a confirmed
// transaction with sender balances is a transport or parse failure.
func (c *Client) SubmitTransfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	status, body, err := c.postJSON(ctx, "/send", req)
	if err != nil {
		return TransferResult{}, fmt.Errorf("submitting transfer: %w", err)
	}

	var resp transferResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if !isSuccess(status) {
			return TransferResult{}, &HTTPError{StatusCode: status, URL: c.baseURL + "/send", Body: string(body)}
		}
		return TransferResult{}, fmt.Errorf("parsing transfer response: %w", err)
	}
	if resp.Error != "" {
		return TransferResult{}, &RejectionError{Message: resp.Error}
	}
	if !isSuccess(status) {
		return TransferResult{}, &HTTPError{StatusCode: status, URL: c.baseURL + "/send", Body: string(body)}
	}
	if resp.Tx == nil || resp.SenderBalance == nil || resp.SenderBalance.Balances == nil {
		return TransferResult{}, fmt.Errorf("transfer response missing tx or senderBalance")
	}

	return TransferResult{Tx: *resp.Tx, SenderBalances: resp.SenderBalance.Balances}, nil
}

// SubmitIntent posts a swap intent and returns the ledger's confirmed record.
func (c *Client) SubmitIntent(ctx context.Context, req IntentRequest) (domain.IntentRecord, error) {
	status, body, err := c.postJSON(ctx, "/intent", req)
	if err != nil {
		return domain.IntentRecord{}, fmt.Errorf("submitting intent: %w", err)
	}

	var resp intentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if !isSuccess(status) {
			return domain.IntentRecord{}, &HTTPError{StatusCode: status, URL: c.baseURL + "/intent", Body: string(body)}
		}
		return domain.IntentRecord{}, fmt.Errorf("parsing intent response: %w", err)
	}
	if resp.Error != "" {
		return domain.IntentRecord{}, &RejectionError{Message: resp.Error}
	}
	if !isSuccess(status) {
		return domain.IntentRecord{}, &HTTPError{StatusCode: status, URL: c.baseURL + "/intent", Body: string(body)}
	}
	if resp.Intent == nil {
		return domain.IntentRecord{}, fmt.Errorf("intent response missing intent")
	}

	return *resp.Intent, nil
}
