package domain

// ActionSwap is the only intent action the wallet creates.
const ActionSwap = "swap"

// TransactionRecord is a settled transfer as reported by the ledger.
// Records carry no identity key; the log is append-only in arrival order.
type TransactionRecord struct {
	From   Identity `json:"from"`
	To     Identity `json:"to"`
	Token  string   `json:"token"`
	Amount float64  `json:"amount"`
}

// IntentRecord is a recorded swap request. Matching and settlement happen in the ledger.
type IntentRecord struct {
	Maker     Identity `json:"maker"`
	Action    string   `json:"action"`
	Amount    float64  `json:"amount"`
	FromAsset string   `json:"from_asset"`
	ToAsset   string   `json:"to_asset"`
}

// Involves reports whether id is the sender or the recipient.
func (t TransactionRecord) Involves(id Identity) bool {
	return t.From == id || t.To == id
}
