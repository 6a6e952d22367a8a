package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/wallet/internal/domain"
)

// PriceEntry is one entry of the GET /prices response.
type PriceEntry struct {
	USD float64 `json:"usd"`
}

// TransferRequest is the POST /send body.
type TransferRequest struct {
	From   domain.Identity `json:"from"`
	To     domain.Identity `json:"to"`
	Token  string          `json:"token"`
	Amount float64         `json:"amount"`
}

// transferResponse is the POST /send response: either tx and senderBalance, or error.
type transferResponse struct {
	Error         string                    `json:"error,omitempty"`
	Tx            *domain.TransactionRecord `json:"tx,omitempty"`
	SenderBalance *struct {
		Balances map[string]decimal.Decimal `json:"balances"`
	} `json:"senderBalance,omitempty"`
}

// TransferResult is a confirmed transfer with the sender's post-transfer balances.
type TransferResult struct {
	Tx             domain.TransactionRecord
	SenderBalances map[string]decimal.Decimal
}

// IntentRequest is the POST /intent body.
type IntentRequest struct {
	Maker     domain.Identity `json:"maker"`
	Action    string          `json:"action"`
	Amount    float64         `json:"amount"`
	FromAsset string          `json:"from_asset"`
	ToAsset   string          `json:"to_asset"`
}

// NewSwapIntent builds a swap intent request.
func NewSwapIntent(maker domain.Identity, amount float64, fromAsset, toAsset string) IntentRequest {
	return IntentRequest{
		Maker:     maker,
		Action:    domain.ActionSwap,
		Amount:    amount,
		FromAsset: fromAsset,
		ToAsset:   toAsset,
	}
}

type intentResponse struct {
	Error  string               `json:"error,omitempty"`
	Intent *domain.IntentRecord `json:"intent,omitempty"`
}
