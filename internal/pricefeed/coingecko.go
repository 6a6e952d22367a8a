package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CoinGeckoClient fetches USD prices directly from the CoinGecko API.
// It returns the same id to USD shape as the ledger's /prices endpoint.
type CoinGeckoClient struct {
	baseURL    string
	ids        []string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a client quoting the given CoinGecko ids.
func NewCoinGeckoClient(baseURL string, ids []string) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		ids:        ids,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPrices fetches USD prices for all configured ids.
func (c *CoinGeckoClient) FetchPrices(ctx context.Context) (map[string]float64, error) {
	if len(c.ids) == 0 {
		return map[string]float64{}, nil
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(strings.Join(c.ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating CoinGecko request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CoinGecko request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading CoinGecko response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CoinGecko HTTP %d: %s", resp.StatusCode, string(body))
	}

	// Parse: {"ethereum":{"usd":3000},...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing CoinGecko response: %w", err)
	}

	result := make(map[string]float64, len(raw))
	for _, id := range c.ids {
		if prices, ok := raw[id]; ok {
			if usd, ok := prices["usd"]; ok {
				result[id] = usd
			}
		}
	}
	return result, nil
}
