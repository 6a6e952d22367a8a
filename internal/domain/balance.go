package domain

import (
	"fmt"
	"maps"
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the ledger's balance map for one identity as of the last fetch.
// It is always replaced wholesale, never merged.
type BalanceSnapshot struct {
	User     Identity                   `json:"user"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

// Validate rejects snapshots without a balance map or with negative amounts.
func (b BalanceSnapshot) Validate() error {
	if b.Balances == nil {
		return fmt.Errorf("balance snapshot has no balances")
	}
	for symbol, amount := range b.Balances {
		if amount.IsNegative() {
			return fmt.Errorf("negative balance %s for %s", amount, symbol)
		}
	}
	return nil
}

// Clone returns a deep copy. Nil stays nil.
func (b *BalanceSnapshot) Clone() *BalanceSnapshot {
	if b == nil {
		return nil
	}
	return &BalanceSnapshot{User: b.User, Balances: maps.Clone(b.Balances)}
}

// Amount returns the balance for symbol, zero when the asset is not held.
func (b *BalanceSnapshot) Amount(symbol string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return b.Balances[symbol]
}

// Symbols returns the held symbols ordered by the registry, then alphabetically for unknown ones.
func (b *BalanceSnapshot) Symbols(assets *AssetRegistry) []string {
	if b == nil {
		return nil
	}
	order := make(map[string]int)
	if assets != nil {
		for i, s := range assets.Symbols() {
			order[s] = i
		}
	}
	symbols := make([]string, 0, len(b.Balances))
	for s := range b.Balances {
		symbols = append(symbols, s)
	}
	sort.Slice(symbols, func(i, j int) bool {
		oi, iok := order[symbols[i]]
		oj, jok := order[symbols[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return symbols[i] < symbols[j]
		}
	})
	return symbols
}
