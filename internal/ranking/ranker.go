package ranking

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// Ranker orders aggregated forecast results. Ordering is descending by
// value with ties broken by the catalog's canonical product order, so
// every surface ranks identically.
type Ranker struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewRanker creates a new ranker
func NewRanker(cat *catalog.Catalog, log zerolog.Logger) *Ranker {
	return &Ranker{
		catalog: cat,
		log:     log.With().Str("component", "ranking").Logger(),
	}
}

// Rank re-expresses an aggregated result as an ordered list.
func (r *Ranker) Rank(result *contracts.AggregatedResult) *contracts.RankedResult {
	entries := make([]contracts.RankedEntry, 0, len(result.Values))
	for name, value := range result.Values {
		entries = append(entries, contracts.RankedEntry{Name: name, Value: value})
	}

	// Canonical order first so the stable sort's tie-break is the
	// catalog order, not map iteration order.
	sort.Slice(entries, func(i, j int) bool {
		return r.catalog.Order(entries[i].Name) < r.catalog.Order(entries[j].Name)
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	ranked := &contracts.RankedResult{
		Metric:  result.Metric,
		Range:   result.Range,
		Entries: entries,
	}

	if len(entries) > 0 {
		r.log.Debug().
			Str("metric", string(result.Metric)).
			Int("products", len(entries)).
			Str("top_name", entries[0].Name).
			Float64("top_value", entries[0].Value).
			Msg("ranking completed")
	}

	return ranked
}

// Top ranks and truncates to the first n entries.
func (r *Ranker) Top(result *contracts.AggregatedResult, n int) (*contracts.RankedResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: top n must be positive, got %d", contracts.ErrInvalidArgument, n)
	}

	ranked := r.Rank(result)
	if len(ranked.Entries) > n {
		ranked.Entries = ranked.Entries[:n]
	}
	return ranked, nil
}
