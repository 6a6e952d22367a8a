package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AssetValuation is one balance line with its optional USD value.
// USD is nil when the asset has no price-feed mapping or no current quote.
type AssetValuation struct {
	Asset  AssetDescriptor  `json:"asset"`
	Amount decimal.Decimal  `json:"amount"`
	USD    *decimal.Decimal `json:"usd,omitempty"`
}

// ValueBalances values every held asset against the quote.
func ValueBalances(b *BalanceSnapshot, quote PriceQuote, assets *AssetRegistry) []AssetValuation {
	if b == nil {
		return nil
	}
	return lo.Map(b.Symbols(assets), func(symbol string, _ int) AssetValuation {
		desc, ok := assets.Lookup(symbol)
		if !ok {
			desc = AssetDescriptor{Symbol: symbol, Name: symbol}
		}
		v := AssetValuation{Asset: desc, Amount: b.Balances[symbol]}
		if price, ok := quote.Price(desc.PriceFeedID); ok {
			usd := v.Amount.Mul(decimal.NewFromFloat(price)).Round(usdPrecision)
			v.USD = &usd
		}
		return v
	})
}

// TotalUSD sums the USD values that are known.
func TotalUSD(vals []AssetValuation) decimal.Decimal {
	return lo.Reduce(vals, func(acc decimal.Decimal, v AssetValuation, _ int) decimal.Decimal {
		if v.USD == nil {
			return acc
		}
		return acc.Add(*v.USD)
	}, decimal.Zero)
}
