package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/history"
	"github.com/petalworks/bloomcast/backend/pkg/redis"
)

// Service fronts the aggregator for every surface: single-metric
// calls, parallel multi-metric calls, quantity recommendations, and
// the redis snapshot cache. Models share only read-only state, so
// per-metric aggregations run concurrently.
type Service struct {
	aggregator *Aggregator
	store      *history.Store
	catalog    *catalog.Catalog
	models     map[contracts.Metric]contracts.ForecastModel
	cache      *redis.Cache
	cacheTTL   time.Duration
	log        zerolog.Logger
}

// NewService creates a forecast service. cache may be nil; a
// non-positive cacheTTL falls back to the daily snapshot TTL.
func NewService(
	agg *Aggregator,
	store *history.Store,
	cat *catalog.Catalog,
	models map[contracts.Metric]contracts.ForecastModel,
	cache *redis.Cache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *Service {
	if cacheTTL <= 0 {
		cacheTTL = redis.TTLDaily
	}
	return &Service{
		aggregator: agg,
		store:      store,
		catalog:    cat,
		models:     models,
		cache:      cache,
		cacheTTL:   cacheTTL,
		log:        log.With().Str("component", "forecast.service").Logger(),
	}
}

// Aggregate runs one metric over the range.
func (s *Service) Aggregate(ctx context.Context, metric contracts.Metric, r contracts.DateRange, policy QuantityPolicy) (*contracts.AggregatedResult, error) {
	model, ok := s.models[metric]
	if !ok {
		return nil, fmt.Errorf("%w: no model for metric %q", contracts.ErrInvalidArgument, metric)
	}
	return s.aggregator.Aggregate(ctx, model, metric, r, policy)
}

// AggregateCached runs one metric over the range, serving yesterday's
// snapshot from cache when present. Sampled-policy snapshots are still
// cacheable: each cache key pins one drawn sample for its TTL.
func (s *Service) AggregateCached(ctx context.Context, metric contracts.Metric, r contracts.DateRange, policy QuantityPolicy) (*contracts.AggregatedResult, error) {
	if s.cache == nil {
		return s.Aggregate(ctx, metric, r, policy)
	}

	key := redis.ForecastKey(string(metric), r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), policy.Name())

	var cached contracts.AggregatedResult
	found, err := s.cache.Get(ctx, key, &cached)
	if err == nil && found {
		return &cached, nil
	}

	result, err := s.Aggregate(ctx, metric, r, policy)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("forecast cache write failed")
	}
	return result, nil
}

// AggregateAll runs every configured metric over the range in
// parallel and returns results keyed by metric. Aggregations share
// only the immutable catalog and store.
func (s *Service) AggregateAll(ctx context.Context, r contracts.DateRange, policyFor func(contracts.Metric) QuantityPolicy) (map[contracts.Metric]*contracts.AggregatedResult, error) {
	results := make(map[contracts.Metric]*contracts.AggregatedResult, len(s.models))
	order := s.metricOrder()

	g, gctx := errgroup.WithContext(ctx)
	resultSlots := make([]*contracts.AggregatedResult, len(order))

	for i, metric := range order {
		i, metric := i, metric
		g.Go(func() error {
			res, err := s.Aggregate(gctx, metric, r, policyFor(metric))
			if err != nil {
				return fmt.Errorf("aggregate %s: %w", metric, err)
			}
			resultSlots[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, metric := range order {
		results[metric] = resultSlots[i]
	}
	return results, nil
}

// Metrics returns the configured metrics in stable order.
func (s *Service) Metrics() []contracts.Metric {
	return s.metricOrder()
}

func (s *Service) metricOrder() []contracts.Metric {
	order := make([]contracts.Metric, 0, len(s.models))
	for metric := range s.models {
		order = append(order, metric)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}

// RecommendQuantities projects the profit of selling bestQty units of
// each product at its observed prices in the range, with profit per
// record of (price − unitCost) × quantity. Products without records in
// the range are skipped.
func (s *Service) RecommendQuantities(ctx context.Context, r contracts.DateRange, unitCost float64, bestQty map[string]float64) ([]contracts.QuantityAdvice, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: start after end", contracts.ErrInvalidRange)
	}

	var advice []contracts.QuantityAdvice
	for _, product := range s.catalog.Products() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		quantity, ok := bestQty[product.Name]
		if !ok {
			continue
		}

		records := s.store.Filter(r, product.Name)
		if len(records) == 0 {
			continue
		}

		var profit float64
		for _, rec := range records {
			profit += (rec.UnitPrice - unitCost) * quantity
		}

		advice = append(advice, contracts.QuantityAdvice{
			Name:            product.Name,
			Quantity:        quantity,
			ProjectedProfit: profit,
		})
	}

	return advice, nil
}
