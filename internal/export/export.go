// Package export writes a wallet view state to spreadsheets.
package export

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// Sheet names in the order they are written.
const (
	SheetBalances     = "Balances"
	SheetTransactions = "Transactions"
	SheetIntents      = "Intents"
)

// Table is one sheet: a header row followed by data rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Values returns the header and rows as a single grid.
func (t Table) Values() [][]any {
	values := make([][]any, 0, len(t.Rows)+1)
	values = append(values, lo.Map(t.Header, func(h string, _ int) any { return h }))
	return append(values, t.Rows...)
}

// Writer writes tables to a spreadsheet destination.
type Writer interface {
	Write(ctx context.Context, tables []Table) error
}

// Options narrow what is exported.
type Options struct {
	// OnlyIdentity drops transactions and intents the selected identity is not part of.
	OnlyIdentity bool
}

// Tables builds the balance, transaction and intent sheets from a state snapshot.
func Tables(st viewstate.State, assets *domain.AssetRegistry, opts Options) []Table {
	txs := st.Transactions
	intents := st.Intents
	if opts.OnlyIdentity {
		txs = lo.Filter(txs, func(t domain.TransactionRecord, _ int) bool { return t.Involves(st.Identity) })
		intents = lo.Filter(intents, func(i domain.IntentRecord, _ int) bool { return i.Maker == st.Identity })
	}

	return []Table{
		balanceTable(st, assets),
		{
			Name:   SheetTransactions,
			Header: []string{"From", "To", "Token", "Amount"},
			Rows: lo.Map(txs, func(t domain.TransactionRecord, _ int) []any {
				return []any{string(t.From), string(t.To), t.Token, t.Amount}
			}),
		},
		{
			Name:   SheetIntents,
			Header: []string{"Maker", "Action", "Amount", "From asset", "To asset"},
			Rows: lo.Map(intents, func(i domain.IntentRecord, _ int) []any {
				return []any{string(i.Maker), i.Action, i.Amount, i.FromAsset, i.ToAsset}
			}),
		},
	}
}

// balanceTable has one row per held asset plus a total row.
// Columns: Asset | Name | Amount | USD
func balanceTable(st viewstate.State, assets *domain.AssetRegistry) Table {
	vals := domain.ValueBalances(st.Balance, st.Prices, assets)
	rows := lo.Map(vals, func(v domain.AssetValuation, _ int) []any {
		return []any{v.Asset.Symbol, v.Asset.Name, toFloat(v.Amount), ptrFloat(v.USD)}
	})
	if len(vals) > 0 {
		rows = append(rows, []any{"Total", "", nil, toFloat(domain.TotalUSD(vals))})
	}
	return Table{
		Name:   SheetBalances,
		Header: []string{"Asset", "Name", "Amount", "USD"},
		Rows:   rows,
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
