package handlers

import (
	"net/http"
	"strconv"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/internal/narrate"
	"github.com/petalworks/bloomcast/backend/internal/ranking"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// defaultTopN is how many entries the top endpoints return without an
// explicit limit, matching the dashboard's three highlight cards.
const defaultTopN = 3

// ForecastHandler handles forecast-related API endpoints.
type ForecastHandler struct {
	service *forecast.Service
	ranker  *ranking.Ranker
	cfg     *config.Config
	logger  *logger.Logger
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(svc *forecast.Service, rk *ranking.Ranker, cfg *config.Config, log *logger.Logger) *ForecastHandler {
	return &ForecastHandler{
		service: svc,
		ranker:  rk,
		cfg:     cfg,
		logger:  log,
	}
}

// policyFactoryFromQuery builds a quantity policy factory for a
// request. An explicit qty parameter pins every day to that value; a
// seed parameter makes the sampled policy reproducible; otherwise
// sampling is fresh per request. Sampled policies carry their own rng
// state, so every factory call hands out a new instance and callers
// running metrics in parallel never share one.
func (h *ForecastHandler) policyFactoryFromQuery(r *http.Request) (func() forecast.QuantityPolicy, error) {
	if qty := r.URL.Query().Get("qty"); qty != "" {
		value, err := strconv.ParseFloat(qty, 64)
		if err != nil || value < 0 {
			return nil, contracts.ErrInvalidArgument
		}
		return func() forecast.QuantityPolicy {
			return forecast.FixedQuantity{Value: value}
		}, nil
	}

	low, high := h.cfg.Forecast.QuantityLow, h.cfg.Forecast.QuantityHigh
	if seed := r.URL.Query().Get("seed"); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return nil, contracts.ErrInvalidArgument
		}
		return func() forecast.QuantityPolicy {
			return forecast.NewSeededSampledQuantity(low, high, n)
		}, nil
	}

	return func() forecast.QuantityPolicy {
		return forecast.NewSampledQuantity(low, high)
	}, nil
}

// GetRevenue returns the per-product revenue forecast.
// GET /api/forecast/revenue?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *ForecastHandler) GetRevenue(w http.ResponseWriter, r *http.Request) {
	h.getMetric(w, r, contracts.MetricRevenue)
}

// GetProfit returns the per-product profit forecast.
// GET /api/forecast/profit?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *ForecastHandler) GetProfit(w http.ResponseWriter, r *http.Request) {
	h.getMetric(w, r, contracts.MetricProfit)
}

func (h *ForecastHandler) getMetric(w http.ResponseWriter, r *http.Request, metric contracts.Metric) {
	dr, err := rangeFromQuery(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	newPolicy, err := h.policyFactoryFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid qty or seed parameter")
		return
	}

	result, err := h.service.AggregateCached(r.Context(), metric, dr, newPolicy())
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"metric": string(metric),
		}).Error("Forecast aggregation failed")
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// GetTopRevenue returns the highest-revenue products.
// GET /api/forecast/top-revenue?start_date=...&end_date=...&limit=3
func (h *ForecastHandler) GetTopRevenue(w http.ResponseWriter, r *http.Request) {
	h.getTop(w, r, contracts.MetricRevenue)
}

// GetTopProfit returns the highest-profit products.
// GET /api/forecast/top-profit?start_date=...&end_date=...&limit=3
func (h *ForecastHandler) GetTopProfit(w http.ResponseWriter, r *http.Request) {
	h.getTop(w, r, contracts.MetricProfit)
}

func (h *ForecastHandler) getTop(w http.ResponseWriter, r *http.Request, metric contracts.Metric) {
	dr, err := rangeFromQuery(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	limit := defaultTopN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
	}

	newPolicy, err := h.policyFactoryFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid qty or seed parameter")
		return
	}

	result, err := h.service.AggregateCached(r.Context(), metric, dr, newPolicy())
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	top, err := h.ranker.Top(result, limit)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    top,
	})
}

// GetSummary returns every metric forecast plus its ranking in one
// payload. Metrics are aggregated in parallel.
// GET /api/forecast/summary?start_date=...&end_date=...&limit=3
func (h *ForecastHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	dr, err := rangeFromQuery(r)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	limit := defaultTopN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
	}

	summary, err := h.buildSummary(r, dr, limit)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}

// buildSummary aggregates every metric in parallel and pairs each
// result with its top-N ranking, in stable metric order.
func (h *ForecastHandler) buildSummary(r *http.Request, dr contracts.DateRange, limit int) (*narrate.Summary, error) {
	newPolicy, err := h.policyFactoryFromQuery(r)
	if err != nil {
		return nil, contracts.ErrInvalidArgument
	}

	results, err := h.service.AggregateAll(r.Context(), dr, func(contracts.Metric) forecast.QuantityPolicy {
		return newPolicy()
	})
	if err != nil {
		return nil, err
	}

	var parts []narrate.Part
	for _, metric := range h.service.Metrics() {
		result := results[metric]

		parts = append(parts, narrate.Part{
			Label:      "Predicted " + string(metric),
			Aggregated: result,
		})

		top, err := h.ranker.Top(result, limit)
		if err != nil {
			return nil, err
		}
		parts = append(parts, narrate.Part{
			Label:  "Top by " + string(metric),
			Ranked: top,
		})
	}

	return narrate.Build(dr, parts...), nil
}
