package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// warmDays is the forecast horizon the nightly warm covers. The
// dashboard's default view asks for the next thirty days.
const warmDays = 30

// ForecastWarmJob precomputes the default forecast window every night
// so the first dashboard request of the day hits the cache.
type ForecastWarmJob struct {
	service *forecast.Service
	cfg     *config.Config
	logger  *logger.Logger
}

// NewForecastWarmJob creates a new forecast warm job
func NewForecastWarmJob(svc *forecast.Service, cfg *config.Config, log *logger.Logger) *ForecastWarmJob {
	return &ForecastWarmJob{
		service: svc,
		cfg:     cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *ForecastWarmJob) Name() string {
	return "forecast_warm"
}

// Schedule returns the cron schedule (2:30 AM daily)
func (j *ForecastWarmJob) Schedule() string {
	return "0 30 2 * * *"
}

// Run aggregates every metric over the default window through the
// caching path. The unseeded policy shares its cache key with the
// dashboard's default requests, so the warmed snapshot pins the day's
// sample for them.
func (j *ForecastWarmJob) Run(ctx context.Context) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	window := contracts.DateRange{
		Start: today,
		End:   today.AddDate(0, 0, warmDays-1),
	}

	low, high := j.cfg.Forecast.QuantityLow, j.cfg.Forecast.QuantityHigh

	for _, metric := range j.service.Metrics() {
		policy := forecast.NewSampledQuantity(low, high)

		result, err := j.service.AggregateCached(ctx, metric, window, policy)
		if err != nil {
			return fmt.Errorf("warm %s forecast: %w", metric, err)
		}

		j.logger.WithFields(map[string]interface{}{
			"metric":   string(metric),
			"start":    window.Start.Format("2006-01-02"),
			"end":      window.End.Format("2006-01-02"),
			"products": len(result.Values),
			"failed":   len(result.Errors),
		}).Info("Forecast snapshot warmed")
	}

	return nil
}
