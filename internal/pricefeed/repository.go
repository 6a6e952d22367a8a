package pricefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Quote is one archived price observation.
type Quote struct {
	FeedID    string          `json:"feedId"`
	PriceUSD  decimal.Decimal `json:"priceUsd"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// QuoteRepository archives successful price polls.
type QuoteRepository interface {
	SaveQuotes(ctx context.Context, prices map[string]float64, at time.Time) error
	History(ctx context.Context, feedID string, limit int) ([]Quote, error)
}

// PgQuoteRepository implements QuoteRepository with PostgreSQL.
type PgQuoteRepository struct {
	pool *pgxpool.Pool
}

// NewPgQuoteRepository creates a new PostgreSQL quote repository.
func NewPgQuoteRepository(pool *pgxpool.Pool) *PgQuoteRepository {
	return &PgQuoteRepository{pool: pool}
}

func (r *PgQuoteRepository) SaveQuotes(ctx context.Context, prices map[string]float64, at time.Time) error {
	if len(prices) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for id, usd := range prices {
		batch.Queue(
			`INSERT INTO price_quotes (feed_id, price_usd, fetched_at) VALUES ($1, $2, $3)`,
			id, decimal.NewFromFloat(usd), at)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving %d quotes: %w", len(prices), err)
	}
	return nil
}

func (r *PgQuoteRepository) History(ctx context.Context, feedID string, limit int) ([]Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT feed_id, price_usd, fetched_at FROM price_quotes
		 WHERE feed_id = $1 ORDER BY fetched_at DESC LIMIT $2`,
		feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying quote history for %s: %w", feedID, err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.FeedID, &q.PriceUSD, &q.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
