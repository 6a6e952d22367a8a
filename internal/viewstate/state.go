package viewstate

import (
	"slices"

	"github.com/mtlprog/wallet/internal/domain"
)

// TransferDraft holds the transfer form values.
type TransferDraft struct {
	To     domain.Identity `json:"to"`
	Token  string          `json:"token"`
	Amount string          `json:"amount"`
}

// IntentDraft holds the swap intent form values.
type IntentDraft struct {
	Amount    string `json:"amount"`
	FromAsset string `json:"fromAsset"`
	ToAsset   string `json:"toAsset"`
}

// State is everything the wallet view renders.
//
// Balance is nil and the logs are nil while they are unknown, that is after
// an identity change and before the corresponding fetch lands. A failed log
// fetch leaves an empty, non-nil log.
type State struct {
	Tab           domain.Tab                 `json:"tab"`
	Identity      domain.Identity            `json:"identity"`
	Generation    uint64                     `json:"generation"`
	Balance       *domain.BalanceSnapshot    `json:"balance"`
	Transactions  []domain.TransactionRecord `json:"transactions"`
	Intents       []domain.IntentRecord      `json:"intents"`
	Prices        domain.PriceQuote          `json:"prices"`
	TransferDraft TransferDraft              `json:"transferDraft"`
	IntentDraft   IntentDraft                `json:"intentDraft"`
}

// Initial returns the state before any identity is selected.
// Draft tokens default to the first two assets of the registry.
func Initial(assets *domain.AssetRegistry, recipient domain.Identity) State {
	symbols := assets.Symbols()
	first, second := "", ""
	if len(symbols) > 0 {
		first = symbols[0]
		second = symbols[0]
	}
	if len(symbols) > 1 {
		second = symbols[1]
	}

	return State{
		Tab:           domain.TabHome,
		TransferDraft: TransferDraft{To: recipient, Token: first},
		IntentDraft:   IntentDraft{FromAsset: first, ToAsset: second},
	}
}

// Clone returns a deep copy sharing no slices or maps with s.
func (s State) Clone() State {
	s.Balance = s.Balance.Clone()
	s.Transactions = slices.Clone(s.Transactions)
	s.Intents = slices.Clone(s.Intents)
	s.Prices = s.Prices.Clone()
	return s
}

// Loaded reports whether balance, transactions and intents have all arrived for the current identity.
func (s State) Loaded() bool {
	return s.Balance != nil && s.Transactions != nil && s.Intents != nil
}
