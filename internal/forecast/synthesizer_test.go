package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/pkg/redis"
)

func TestFixedQuantity(t *testing.T) {
	policy := FixedQuantity{Value: 10}

	got := policy.Quantities(5)
	require.Len(t, got, 5)
	for _, q := range got {
		assert.Equal(t, 10.0, q)
	}
}

func TestSampledQuantityBounds(t *testing.T) {
	policy := NewSampledQuantity(50, 200)

	got := policy.Quantities(500)
	require.Len(t, got, 500)
	for _, q := range got {
		assert.GreaterOrEqual(t, q, 50.0)
		assert.Less(t, q, 200.0)
		assert.Equal(t, q, float64(int(q)), "sampled quantities are integers")
	}
}

func TestSampledQuantitySeededReproducible(t *testing.T) {
	a := NewSeededSampledQuantity(50, 200, 42)
	b := NewSeededSampledQuantity(50, 200, 42)

	assert.Equal(t, a.Quantities(30), b.Quantities(30),
		"same seed must draw the same sequence")

	c := NewSeededSampledQuantity(50, 200, 43)
	assert.NotEqual(t, a.Quantities(30), c.Quantities(30),
		"different seeds should diverge")
}

func TestSynthesize(t *testing.T) {
	product := contracts.Product{Name: "Rose", EncodedID: 3}
	days, err := ExpandRange(contracts.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 4)})
	require.NoError(t, err)

	rows := Synthesize(product, days, 99.5, FixedQuantity{Value: 7})
	require.Len(t, rows, 4)

	for _, row := range rows {
		assert.Equal(t, 3, row.EncodedID)
		assert.Equal(t, 7.0, row.Quantity)
		assert.Equal(t, 99.5, row.UnitPrice)
	}
}

func TestPolicyNames(t *testing.T) {
	assert.Equal(t, "fixed-10", FixedQuantity{Value: 10}.Name())
	assert.Equal(t, "sampled-50-200", NewSampledQuantity(50, 200).Name())
	assert.Equal(t, "sampled-50-200-seed-42", NewSeededSampledQuantity(50, 200, 42).Name())
}

func TestSampledQuantityCacheKeysDoNotCollide(t *testing.T) {
	key := func(p QuantityPolicy) string {
		return redis.ForecastKey("revenue", "2024-01-01", "2024-01-31", p.Name())
	}

	seeded1 := key(NewSeededSampledQuantity(50, 200, 1))
	seeded2 := key(NewSeededSampledQuantity(50, 200, 2))
	unseeded := key(NewSampledQuantity(50, 200))

	assert.NotEqual(t, seeded1, seeded2, "different seeds must cache separately")
	assert.NotEqual(t, seeded1, unseeded, "a seeded run must not serve the unseeded snapshot")
	assert.NotEqual(t, seeded2, unseeded)
}
