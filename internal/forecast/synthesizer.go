package forecast

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// QuantityPolicy produces the per-day quantity feature for synthetic
// forecast rows. No real future order data exists, so the quantity is
// an assumption; keeping it behind a named policy makes the assumption
// visible and swappable instead of hidden inline randomness.
type QuantityPolicy interface {
	// Name tags the policy in cache keys and logs.
	Name() string

	// Quantities returns one value per day.
	Quantities(days int) []float64
}

// FixedQuantity reuses one externally supplied value for every day.
// Used by callers that already know a best quantity; fully
// deterministic.
type FixedQuantity struct {
	Value float64
}

func (p FixedQuantity) Name() string { return fmt.Sprintf("fixed-%g", p.Value) }

func (p FixedQuantity) Quantities(days int) []float64 {
	out := make([]float64, days)
	for i := range out {
		out[i] = p.Value
	}
	return out
}

// SampledQuantity draws each day's quantity independently from the
// integer range [Low, High). This is a placeholder for unknown demand,
// not a forecast of it: resulting financial numbers vary run to run
// unless the caller fixes the seed.
type SampledQuantity struct {
	Low    int // inclusive
	High   int // exclusive
	rng    *rand.Rand
	seed   int64
	seeded bool
}

// NewSampledQuantity creates a sampled policy seeded from the clock.
func NewSampledQuantity(low, high int) *SampledQuantity {
	return &SampledQuantity{
		Low:  low,
		High: high,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededSampledQuantity creates a sampled policy with a fixed seed,
// making runs reproducible.
func NewSeededSampledQuantity(low, high int, seed int64) *SampledQuantity {
	return &SampledQuantity{
		Low:    low,
		High:   high,
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,
		seeded: true,
	}
}

// Name carries the explicit seed so that seeded runs never share a
// cache entry with each other or with unseeded runs.
func (p *SampledQuantity) Name() string {
	if p.seeded {
		return fmt.Sprintf("sampled-%d-%d-seed-%d", p.Low, p.High, p.seed)
	}
	return fmt.Sprintf("sampled-%d-%d", p.Low, p.High)
}

func (p *SampledQuantity) Quantities(days int) []float64 {
	out := make([]float64, days)
	for i := range out {
		out[i] = float64(p.Low + p.rng.Intn(p.High-p.Low))
	}
	return out
}

// Synthesize builds one feature row per day for a product: the
// product's encoded id, the policy's quantity for that day, and the
// baseline price on every row. Row order follows day order.
func Synthesize(product contracts.Product, days []time.Time, baselinePrice float64, policy QuantityPolicy) []contracts.FeatureRow {
	quantities := policy.Quantities(len(days))

	rows := make([]contracts.FeatureRow, len(days))
	for i := range days {
		rows[i] = contracts.FeatureRow{
			EncodedID: product.EncodedID,
			Quantity:  quantities[i],
			UnitPrice: baselinePrice,
		}
	}
	return rows
}
