package api

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// StateView is the view state as served to the front end, with USD valuation.
type StateView struct {
	viewstate.State
	Loaded    bool                    `json:"loaded"`
	Valuation []domain.AssetValuation `json:"valuation"`
	TotalUSD  *decimal.Decimal        `json:"totalUsd"`
}

func newStateView(st viewstate.State, assets *domain.AssetRegistry) StateView {
	v := StateView{State: st, Loaded: st.Loaded()}
	if st.Balance != nil {
		v.Valuation = domain.ValueBalances(st.Balance, st.Prices, assets)
		total := domain.TotalUSD(v.Valuation)
		v.TotalUSD = &total
	}
	return v
}
