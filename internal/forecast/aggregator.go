package forecast

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/history"
)

// Aggregator runs the forecast pipeline: for every product it expands
// the range into days, synthesizes one feature row per day around the
// product's historical mean price, batch-invokes the model, and sums
// the per-day predictions into one scalar. Every surface that reports
// predicted financials goes through this one implementation.
type Aggregator struct {
	catalog *catalog.Catalog
	store   *history.Store
	log     zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(cat *catalog.Catalog, store *history.Store, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		catalog: cat,
		store:   store,
		log:     log.With().Str("component", "forecast.aggregator").Logger(),
	}
}

// Aggregate produces one predicted scalar per catalog product over the
// range. Iteration follows catalog order; summation follows day order
// within a product. Every product appears exactly once in the output:
// a product whose inference fails lands in Errors with the cause, and
// the rest still aggregate. NaN predictions propagate as NaN, which is
// distinct from zero; callers must not read NaN as "no data".
func (a *Aggregator) Aggregate(ctx context.Context, model contracts.ForecastModel, metric contracts.Metric, r contracts.DateRange, policy QuantityPolicy) (*contracts.AggregatedResult, error) {
	days, err := ExpandRange(r)
	if err != nil {
		return nil, err
	}

	result := &contracts.AggregatedResult{
		Metric: metric,
		Range:  r,
		Values: make(map[string]float64, a.catalog.Len()),
	}

	// Dataset-wide mean backs products with no price history of their
	// own. An entirely empty store cannot provide any baseline.
	overallMean, err := a.store.MeanPrice("")
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, product := range a.catalog.Products() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		baselinePrice, err := a.store.MeanPrice(product.Name)
		if err != nil {
			baselinePrice = overallMean
		}

		rows := Synthesize(product, days, baselinePrice, policy)

		predictions, err := model.Predict(ctx, rows)
		if err == nil && len(predictions) != len(rows) {
			err = errors.New("prediction count does not match row count")
		}
		if err != nil {
			infErr := &contracts.ModelInferenceError{
				Model:   model.Name(),
				Product: product.Name,
				Err:     err,
			}
			if result.Errors == nil {
				result.Errors = make(map[string]string)
			}
			result.Errors[product.Name] = infErr.Error()
			result.Values[product.Name] = 0
			failed++

			a.log.Warn().
				Str("product", product.Name).
				Str("model", model.Name()).
				Err(err).
				Msg("inference failed, product marked")
			continue
		}

		// Plain float accumulation in day order; NaN/Inf pass through
		var total float64
		for _, v := range predictions {
			total += v
		}
		result.Values[product.Name] = total
	}

	a.log.Info().
		Str("metric", string(metric)).
		Str("policy", policy.Name()).
		Int("days", len(days)).
		Int("products", a.catalog.Len()).
		Int("failed", failed).
		Msg("aggregation completed")

	return result, nil
}
