package commands

import (
	"context"
	"fmt"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/external/modelserver"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/internal/history"
	"github.com/petalworks/bloomcast/backend/internal/ranking"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/database"
	"github.com/petalworks/bloomcast/backend/pkg/httputil"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
	"github.com/petalworks/bloomcast/backend/pkg/redis"
)

// pipeline bundles everything the commands share: loaded history, the
// catalog derived from it, the models and the services on top.
type pipeline struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil when history comes from CSV
	redis   *redis.Client
	store   *history.Store
	catalog *catalog.Catalog
	service *forecast.Service
	ranker  *ranking.Ranker
}

// close releases held connections.
func (p *pipeline) close() {
	if p.redis != nil {
		p.redis.Close()
	}
	if p.db != nil {
		p.db.Close()
	}
}

// buildPipeline loads config, history and models, and wires the
// forecast service. Every command entry point starts here.
func buildPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	p := &pipeline{cfg: cfg, log: log}

	// History: CSV when configured, Postgres otherwise
	if cfg.Dataset.CSVPath != "" {
		p.store, err = history.LoadCSV(cfg.Dataset.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		log.WithFields(map[string]interface{}{
			"path":    cfg.Dataset.CSVPath,
			"records": p.store.Len(),
		}).Info("Loaded sales history from CSV")
	} else {
		p.db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		p.store, err = history.NewRepository(p.db.Pool).LoadStore(ctx)
		if err != nil {
			p.close()
			return nil, fmt.Errorf("load history: %w", err)
		}
		log.WithField("records", p.store.Len()).Info("Loaded sales history from Postgres")
	}

	p.catalog, err = catalog.New(p.store.ProductNames())
	if err != nil {
		p.close()
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	models, err := buildModels(cfg, log)
	if err != nil {
		p.close()
		return nil, err
	}

	p.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, forecast cache disabled")
		p.redis = nil
	}
	var cache *redis.Cache
	if p.redis != nil && p.redis.Enabled() {
		cache = redis.NewCache(p.redis, "bloomcast")
	}

	agg := forecast.NewAggregator(p.catalog, p.store, log.Zerolog())
	p.service = forecast.NewService(agg, p.store, p.catalog, models, cache, cfg.Forecast.CacheTTL, log.Zerolog())
	p.ranker = ranking.NewRanker(p.catalog, log.Zerolog())

	return p, nil
}

// buildModels wires one model per metric: remote clients when an
// inference server is configured, exported linear weights otherwise.
func buildModels(cfg *config.Config, log *logger.Logger) (map[contracts.Metric]contracts.ForecastModel, error) {
	models := make(map[contracts.Metric]contracts.ForecastModel, 2)

	if cfg.Models.ServerURL != "" {
		httpClient := httputil.NewWithTimeout(log, cfg.Models.RequestTimeout)
		models[contracts.MetricRevenue] = modelserver.New(cfg.Models.ServerURL, "revenue", httpClient, log)
		models[contracts.MetricProfit] = modelserver.New(cfg.Models.ServerURL, "profit", httpClient, log)
		return models, nil
	}

	if cfg.Models.RevenueWeights == "" || cfg.Models.ProfitWeights == "" {
		return nil, fmt.Errorf("either MODEL_SERVER_URL or both weight paths are required")
	}

	revenue, err := forecast.LoadLinearModel("revenue", cfg.Models.RevenueWeights)
	if err != nil {
		return nil, fmt.Errorf("load revenue model: %w", err)
	}
	profit, err := forecast.LoadLinearModel("profit", cfg.Models.ProfitWeights)
	if err != nil {
		return nil, fmt.Errorf("load profit model: %w", err)
	}

	models[contracts.MetricRevenue] = revenue
	models[contracts.MetricProfit] = profit
	return models, nil
}
