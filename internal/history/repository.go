package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// Repository is the Postgres-backed sales history source. It serves
// the same record shape as the CSV loader, so a Store can be built
// from either.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new history repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetAll retrieves every sales record, oldest first
func (r *Repository) GetAll(ctx context.Context) ([]contracts.SaleRecord, error) {
	query := `
		SELECT product_name, sale_date, unit_price, qty_sold, customer_segment, weather
		FROM sales.records
		ORDER BY sale_date ASC, product_name ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sales records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByDateRange retrieves records within [from, to] inclusive,
// optionally restricted to one product
func (r *Repository) GetByDateRange(ctx context.Context, from, to time.Time, product string) ([]contracts.SaleRecord, error) {
	query := `
		SELECT product_name, sale_date, unit_price, qty_sold, customer_segment, weather
		FROM sales.records
		WHERE sale_date BETWEEN $1 AND $2
		  AND ($3 = '' OR product_name = $3)
		ORDER BY sale_date ASC, product_name ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to, product)
	if err != nil {
		return nil, fmt.Errorf("query sales records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// InsertBatch stores newly collected records, skipping rows already
// present for the same product and day
func (r *Repository) InsertBatch(ctx context.Context, records []contracts.SaleRecord) (int, error) {
	query := `
		INSERT INTO sales.records (product_name, sale_date, unit_price, qty_sold, customer_segment, weather)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_name, sale_date) DO NOTHING
	`

	inserted := 0
	for _, rec := range records {
		tag, err := r.pool.Exec(ctx, query,
			rec.Product, rec.Date, rec.UnitPrice, rec.Quantity, rec.Segment, rec.Weather,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert record %s/%s: %w",
				rec.Product, rec.Date.Format("2006-01-02"), err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// LoadStore materializes the full history into an immutable Store
func (r *Repository) LoadStore(ctx context.Context) (*Store, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDataLoad, err)
	}
	return NewStore(records), nil
}

func scanRecords(rows pgx.Rows) ([]contracts.SaleRecord, error) {
	var records []contracts.SaleRecord
	for rows.Next() {
		var rec contracts.SaleRecord
		if err := rows.Scan(&rec.Product, &rec.Date, &rec.UnitPrice, &rec.Quantity, &rec.Segment, &rec.Weather); err != nil {
			return nil, fmt.Errorf("scan sales record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
