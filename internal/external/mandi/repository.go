package mandi

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists wholesale quotes. Quotes live in their own table:
// they are reference prices, not sales, and must never leak into the
// sales history the forecasts are built on.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new quote repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertQuotes stores quotes, skipping rows already present for the
// same flower, market and day
func (r *Repository) InsertQuotes(ctx context.Context, quotes []PriceQuote) (int, error) {
	query := `
		INSERT INTO sales.wholesale_quotes (flower, market, quote_date, price_per_kg)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (flower, market, quote_date) DO NOTHING
	`

	inserted := 0
	for _, q := range quotes {
		tag, err := r.pool.Exec(ctx, query, q.Flower, q.Market, q.QuoteDate, q.PricePerKg)
		if err != nil {
			return inserted, fmt.Errorf("insert quote %s/%s: %w",
				q.Flower, q.QuoteDate.Format("2006-01-02"), err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// LatestQuotes retrieves the most recent quote per flower since the
// given date
func (r *Repository) LatestQuotes(ctx context.Context, since time.Time) ([]PriceQuote, error) {
	query := `
		SELECT DISTINCT ON (flower) flower, market, quote_date, price_per_kg
		FROM sales.wholesale_quotes
		WHERE quote_date >= $1
		ORDER BY flower, quote_date DESC
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query wholesale quotes: %w", err)
	}
	defer rows.Close()

	var quotes []PriceQuote
	for rows.Next() {
		var q PriceQuote
		if err := rows.Scan(&q.Flower, &q.Market, &q.QuoteDate, &q.PricePerKg); err != nil {
			return nil, fmt.Errorf("scan wholesale quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
