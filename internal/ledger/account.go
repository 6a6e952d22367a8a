package ledger

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mtlprog/wallet/internal/domain"
)

// FetchBalance retrieves the balance snapshot for an identity.
// A response without a balance map or with negative amounts is reported as malformed.
func (c *Client) FetchBalance(ctx context.Context, user domain.Identity) (domain.BalanceSnapshot, error) {
	return c.fetchSnapshot(ctx, "/balance", user)
}

// RequestFaucet asks the ledger to credit test funds and returns the resulting snapshot.
func (c *Client) RequestFaucet(ctx context.Context, user domain.Identity) (domain.BalanceSnapshot, error) {
	return c.fetchSnapshot(ctx, "/faucet", user)
}

func (c *Client) fetchSnapshot(ctx context.Context, path string, user domain.Identity) (domain.BalanceSnapshot, error) {
	var snap domain.BalanceSnapshot
	if err := c.getJSON(ctx, path+"?user="+url.QueryEscape(user.String()), &snap); err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("fetching %s for %s: %w", path, user, err)
	}
	if err := snap.Validate(); err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("malformed %s response for %s: %w", path, user, err)
	}
	if snap.User == "" {
		snap.User = user
	}
	return snap, nil
}

// FetchTransactions retrieves the full transaction log in ledger order.
func (c *Client) FetchTransactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	var txs []domain.TransactionRecord
	if err := c.getJSON(ctx, "/txs", &txs); err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	if txs == nil {
		txs = []domain.TransactionRecord{}
	}
	return txs, nil
}

// FetchIntents retrieves the full intent log in ledger order.
func (c *Client) FetchIntents(ctx context.Context) ([]domain.IntentRecord, error) {
	var intents []domain.IntentRecord
	if err := c.getJSON(ctx, "/intents", &intents); err != nil {
		return nil, fmt.Errorf("fetching intents: %w", err)
	}
	if intents == nil {
		intents = []domain.IntentRecord{}
	}
	return intents, nil
}

// FetchPrices retrieves the price-feed id to USD map.
func (c *Client) FetchPrices(ctx context.Context) (map[string]float64, error) {
	var raw map[string]PriceEntry
	if err := c.getJSON(ctx, "/prices", &raw); err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	result := make(map[string]float64, len(raw))
	for id, entry := range raw {
		result[id] = entry.USD
	}
	return result, nil
}
