package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/export"
	"github.com/mtlprog/wallet/internal/pricefeed"
	"github.com/mtlprog/wallet/internal/viewstate"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printBalances(w io.Writer, st viewstate.State, assets *domain.AssetRegistry) {
	if st.Balance == nil {
		fmt.Fprintln(w, "balance unavailable")
		return
	}
	vals := domain.ValueBalances(st.Balance, st.Prices, assets)

	tw := newTabWriter(w)
	fmt.Fprintf(tw, "%s\tAMOUNT\tUSD\n", strings.ToUpper(string(st.Balance.User)))
	for _, v := range vals {
		usd := "-"
		if v.USD != nil {
			usd = domain.FormatUSD(*v.USD)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Asset.Symbol, v.Amount.String(), usd)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\n", domain.FormatUSD(domain.TotalUSD(vals)))
	tw.Flush()

	if st.Prices.Stale {
		fmt.Fprintln(w, "(prices are stale)")
	}
}

func printTable(w io.Writer, t export.Table) {
	fmt.Fprintln(w, t.Name)
	tw := newTabWriter(w)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Header, "\t")))
	for _, row := range t.Rows {
		cells := lo.Map(row, func(v any, _ int) string {
			if v == nil {
				return ""
			}
			return fmt.Sprint(v)
		})
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func printPrices(w io.Writer, q domain.PriceQuote, assets *domain.AssetRegistry) {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ASSET\tFEED\tUSD")
	for _, a := range assets.All() {
		if !a.HasPrice() {
			fmt.Fprintf(tw, "%s\t-\t-\n", a.Symbol)
			continue
		}
		usd := "-"
		if p, ok := q.Price(a.PriceFeedID); ok {
			usd = fmt.Sprintf("%g", p)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Symbol, a.PriceFeedID, usd)
	}
	tw.Flush()
	fmt.Fprintf(w, "updated %s\n", q.UpdatedAt.Format(time.RFC3339))
}

func printQuotes(w io.Writer, quotes []pricefeed.Quote) {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "FETCHED AT\tFEED\tUSD")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", q.FetchedAt.Format(time.RFC3339), q.FeedID, q.PriceUSD.String())
	}
	tw.Flush()
}
