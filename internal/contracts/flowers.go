package contracts

import "time"

// Product identifies a flower in the catalog. EncodedID is the stable
// integer the regression models were trained on; it is a model-input
// feature only, never a business identity.
type Product struct {
	Name      string `json:"name"`
	EncodedID int    `json:"encoded_id"`
}

// SaleRecord is one observed row of sales history. Records are
// immutable once loaded.
type SaleRecord struct {
	Product   string    `json:"product"`
	Date      time.Time `json:"date"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  float64   `json:"quantity"` // kg sold
	Segment   string    `json:"segment,omitempty"`
	Weather   string    `json:"weather,omitempty"`
}

// DateRange is an inclusive [Start, End] calendar range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether Start does not come after End.
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// FeatureRow is one model input row. Field order and count are part of
// the trained models' binary contract; changing either requires
// retraining.
type FeatureRow struct {
	EncodedID int     `json:"encoded_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Metric names a predicted financial quantity.
type Metric string

const (
	MetricRevenue Metric = "revenue"
	MetricProfit  Metric = "profit"
)

// AggregatedResult maps each product name to the sum of its predicted
// per-day values over a range. Every requested product appears exactly
// once in Values; products whose inference failed appear in Errors
// instead of being silently dropped.
type AggregatedResult struct {
	Metric Metric             `json:"metric"`
	Range  DateRange          `json:"range"`
	Values map[string]float64 `json:"values"`
	Errors map[string]string  `json:"errors,omitempty"`
}

// RankedEntry is one (product, value) pair of a ranked result.
type RankedEntry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// RankedResult is an AggregatedResult re-expressed as an ordered list,
// descending by value, ties broken by catalog order.
type RankedResult struct {
	Metric  Metric        `json:"metric"`
	Range   DateRange     `json:"range"`
	Entries []RankedEntry `json:"entries"`
}

// QuantityAdvice is a per-product sales quantity recommendation with
// its projected profit over a range.
type QuantityAdvice struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	ProjectedProfit float64 `json:"projected_profit"`
}
