package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// QuantityHandler recommends sales quantities with projected profit.
type QuantityHandler struct {
	service *forecast.Service
	cfg     *config.Config
	logger  *logger.Logger
}

// NewQuantityHandler creates a new quantity handler.
func NewQuantityHandler(svc *forecast.Service, cfg *config.Config, log *logger.Logger) *QuantityHandler {
	return &QuantityHandler{
		service: svc,
		cfg:     cfg,
		logger:  log,
	}
}

type quantityRequest struct {
	Start      string             `json:"start_date"`
	End        string             `json:"end_date"`
	UnitCost   *float64           `json:"unit_cost,omitempty"`
	Quantities map[string]float64 `json:"quantities"`
}

// Recommend projects profit for the requested per-product quantities
// over a historical window.
// POST /api/quantity/recommend
func (h *QuantityHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Quantities) == 0 {
		respondError(w, http.StatusBadRequest, "quantities must not be empty")
		return
	}

	dr, err := forecast.ParseRange(req.Start, req.End)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	unitCost := h.cfg.Forecast.UnitCost
	if req.UnitCost != nil {
		unitCost = *req.UnitCost
	}

	advice, err := h.service.RecommendQuantities(r.Context(), dr, unitCost, req.Quantities)
	if err != nil {
		h.logger.WithError(err).Error("Quantity recommendation failed")
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"unit_cost": unitCost,
			"count":     len(advice),
			"advice":    advice,
		},
	})
}
