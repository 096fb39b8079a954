package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/history"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// ProductsHandler serves the catalog and per-product sales history.
type ProductsHandler struct {
	catalog *catalog.Catalog
	store   *history.Store
	logger  *logger.Logger
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(cat *catalog.Catalog, store *history.Store, log *logger.Logger) *ProductsHandler {
	return &ProductsHandler{
		catalog: cat,
		store:   store,
		logger:  log,
	}
}

// GetProducts returns every cataloged flower in canonical order.
// GET /api/products
func (h *ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Products()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":    len(products),
			"products": products,
		},
	})
}

// GetHistory returns the sales records of one flower with their mean
// unit price, optionally restricted to a date range.
// GET /api/products/{name}/history?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *ProductsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if _, err := h.catalog.Encode(name); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	var records []contracts.SaleRecord
	if r.URL.Query().Get("start_date") != "" || r.URL.Query().Get("end_date") != "" {
		dr, err := rangeFromQuery(r)
		if err != nil {
			respondDomainError(w, h.logger, err)
			return
		}
		records = h.store.Filter(dr, name)
	} else {
		records = h.store.ByProduct(name)
	}

	// Mean over the returned slice; null when it is empty
	var meanPrice *float64
	if len(records) > 0 {
		var sum float64
		for _, rec := range records {
			sum += rec.UnitPrice
		}
		mean := sum / float64(len(records))
		meanPrice = &mean
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"product":    name,
			"count":      len(records),
			"mean_price": meanPrice,
			"records":    records,
		},
	})
}
