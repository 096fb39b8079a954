package ranking

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

func newRanker(t *testing.T, names ...string) *Ranker {
	t.Helper()
	cat, err := catalog.New(names)
	require.NoError(t, err)
	return NewRanker(cat, zerolog.Nop())
}

func result(values map[string]float64) *contracts.AggregatedResult {
	return &contracts.AggregatedResult{
		Metric: contracts.MetricRevenue,
		Values: values,
	}
}

func TestRankDescending(t *testing.T) {
	r := newRanker(t, "Rose", "Lily", "Tulip")

	ranked := r.Rank(result(map[string]float64{
		"Rose":  300,
		"Lily":  450,
		"Tulip": 120,
	}))

	require.Len(t, ranked.Entries, 3)
	assert.Equal(t, "Lily", ranked.Entries[0].Name)
	assert.Equal(t, "Rose", ranked.Entries[1].Name)
	assert.Equal(t, "Tulip", ranked.Entries[2].Name)

	for i, e := range ranked.Entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankStableTieBreak(t *testing.T) {
	// Jasmine and Marigold tie; Jasmine comes first in catalog
	// (lexicographic) order, so it must stay first.
	r := newRanker(t, "Marigold", "Jasmine", "Orchid")

	ranked := r.Rank(result(map[string]float64{
		"Marigold": 200,
		"Jasmine":  200,
		"Orchid":   500,
	}))

	require.Len(t, ranked.Entries, 3)
	assert.Equal(t, "Orchid", ranked.Entries[0].Name)
	assert.Equal(t, "Jasmine", ranked.Entries[1].Name)
	assert.Equal(t, "Marigold", ranked.Entries[2].Name)
}

func TestTop(t *testing.T) {
	r := newRanker(t, "Rose", "Lily")

	top, err := r.Top(result(map[string]float64{
		"Rose": 300,
		"Lily": 450,
	}), 1)
	require.NoError(t, err)

	require.Len(t, top.Entries, 1)
	assert.Equal(t, "Lily", top.Entries[0].Name)
	assert.Equal(t, 450.0, top.Entries[0].Value)
}

func TestTopLargerThanResult(t *testing.T) {
	r := newRanker(t, "Rose", "Lily")

	top, err := r.Top(result(map[string]float64{"Rose": 1, "Lily": 2}), 10)
	require.NoError(t, err)
	assert.Len(t, top.Entries, 2)
}

func TestTopInvalidN(t *testing.T) {
	r := newRanker(t, "Rose")

	for _, n := range []int{0, -1, -100} {
		_, err := r.Top(result(map[string]float64{"Rose": 1}), n)
		assert.ErrorIs(t, err, contracts.ErrInvalidArgument, "n=%d", n)
	}
}

func TestRankEmptyResult(t *testing.T) {
	r := newRanker(t, "Rose")

	ranked := r.Rank(result(map[string]float64{}))
	assert.Empty(t, ranked.Entries)
}
