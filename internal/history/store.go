package history

import (
	"fmt"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// Store is a read-only view over loaded sales history, queryable by
// date range and product. Records never change after construction, so
// the store is safe for concurrent reads.
type Store struct {
	records []contracts.SaleRecord
}

// NewStore wraps a record slice. The caller hands over ownership of
// the slice; it must not be modified afterwards.
func NewStore(records []contracts.SaleRecord) *Store {
	return &Store{records: records}
}

// Len returns the number of records held.
func (s *Store) Len() int {
	return len(s.records)
}

// ProductNames returns every product name occurring in the records,
// duplicates included, for catalog construction.
func (s *Store) ProductNames() []string {
	names := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		names = append(names, rec.Product)
	}
	return names
}

// Filter returns records whose date falls within the range, inclusive
// on both ends. An empty product string matches every product. An
// empty result is a valid answer, not an error.
func (s *Store) Filter(r contracts.DateRange, product string) []contracts.SaleRecord {
	var out []contracts.SaleRecord
	for _, rec := range s.records {
		if rec.Date.Before(r.Start) || rec.Date.After(r.End) {
			continue
		}
		if product != "" && rec.Product != product {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// ByProduct returns every record of one product regardless of date.
func (s *Store) ByProduct(product string) []contracts.SaleRecord {
	var out []contracts.SaleRecord
	for _, rec := range s.records {
		if rec.Product == product {
			out = append(out, rec)
		}
	}
	return out
}

// MeanPrice returns the arithmetic mean unit price over all records,
// optionally restricted to one product. Used as the baseline price
// feature for synthesized forecast rows.
func (s *Store) MeanPrice(product string) (float64, error) {
	var sum float64
	var n int
	for _, rec := range s.records {
		if product != "" && rec.Product != product {
			continue
		}
		sum += rec.UnitPrice
		n++
	}

	if n == 0 {
		if product == "" {
			return 0, fmt.Errorf("%w: store is empty", contracts.ErrInsufficientData)
		}
		return 0, fmt.Errorf("%w: no records for %q", contracts.ErrInsufficientData, product)
	}

	return sum / float64(n), nil
}

// MeanPriceInRange is MeanPrice restricted to a date range.
func (s *Store) MeanPriceInRange(r contracts.DateRange, product string) (float64, error) {
	matched := s.Filter(r, product)
	if len(matched) == 0 {
		return 0, fmt.Errorf("%w: no records for %q in range", contracts.ErrInsufficientData, product)
	}

	var sum float64
	for _, rec := range matched {
		sum += rec.UnitPrice
	}
	return sum / float64(len(matched)), nil
}
