package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalworks/bloomcast/backend/internal/catalog"
	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/internal/history"
	"github.com/petalworks/bloomcast/backend/internal/ranking"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// constModel predicts the same value for every row.
type constModel struct {
	name  string
	value float64
}

func (m constModel) Name() string { return m.name }

func (m constModel) Predict(_ context.Context, rows []contracts.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = m.value
	}
	return out, nil
}

type stubNarrator struct {
	answer string
}

func (n stubNarrator) Summarize(context.Context, string) (string, error) {
	return n.answer, nil
}

// failingNarrator simulates an upstream failure whose message must
// never reach the response body.
type failingNarrator struct{}

func (failingNarrator) Summarize(context.Context, string) (string, error) {
	return "", errors.New("genai: quota exceeded for project flower-shop-prod")
}

func day(d int) time.Time {
	return time.Date(2024, 11, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Forecast: config.ForecastConfig{
			QuantityLow:  50,
			QuantityHigh: 200,
			UnitCost:     50,
		},
	}
}

// newTestRouter wires the full route table over an in-memory fixture:
// Rose at price 100, Lily at price 150, a revenue model predicting 10
// per day and a profit model predicting 5 per day.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithNarrator(t, stubNarrator{answer: "stock more lilies"})
}

func newTestRouterWithNarrator(t *testing.T, narrator contracts.Narrator) http.Handler {
	t.Helper()

	cfg := testConfig()
	log := logger.New(cfg)

	store := history.NewStore([]contracts.SaleRecord{
		{Product: "Rose", Date: day(1), UnitPrice: 100, Quantity: 5},
		{Product: "Rose", Date: day(2), UnitPrice: 100, Quantity: 7},
		{Product: "Lily", Date: day(1), UnitPrice: 150, Quantity: 3},
	})

	cat, err := catalog.New(store.ProductNames())
	require.NoError(t, err)

	agg := forecast.NewAggregator(cat, store, zerolog.Nop())
	svc := forecast.NewService(agg, store, cat, map[contracts.Metric]contracts.ForecastModel{
		contracts.MetricRevenue: constModel{name: "revenue", value: 10},
		contracts.MetricProfit:  constModel{name: "profit", value: 5},
	}, nil, 0, zerolog.Nop())
	rk := ranking.NewRanker(cat, zerolog.Nop())

	return newRoutes(
		NewForecastHandler(svc, rk, cfg, log),
		NewProductsHandler(cat, store, log),
		NewQuantityHandler(svc, cfg, log),
		NewChatHandler(svc, rk, narrator, cfg, log),
	)
}

// newRoutes mirrors the production route table without the
// middleware stack.
func newRoutes(
	fh *ForecastHandler,
	ph *ProductsHandler,
	qh *QuantityHandler,
	ch *ChatHandler,
) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/forecast/revenue", fh.GetRevenue).Methods("GET")
	r.HandleFunc("/api/forecast/profit", fh.GetProfit).Methods("GET")
	r.HandleFunc("/api/forecast/top-revenue", fh.GetTopRevenue).Methods("GET")
	r.HandleFunc("/api/forecast/top-profit", fh.GetTopProfit).Methods("GET")
	r.HandleFunc("/api/forecast/summary", fh.GetSummary).Methods("GET")
	r.HandleFunc("/api/products", ph.GetProducts).Methods("GET")
	r.HandleFunc("/api/products/{name}/history", ph.GetHistory).Methods("GET")
	r.HandleFunc("/api/quantity/recommend", qh.Recommend).Methods("POST")
	r.HandleFunc("/api/chat", ch.Chat).Methods("POST")
	return r
}

func doGET(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doPOST(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetRevenue(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/revenue?start_date=2024-11-01&end_date=2024-11-03&qty=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                       `json:"success"`
		Data    contracts.AggregatedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, contracts.MetricRevenue, resp.Data.Metric)
	// 3 days at 10 per day for every product
	assert.Equal(t, 30.0, resp.Data.Values["Rose"])
	assert.Equal(t, 30.0, resp.Data.Values["Lily"])
}

func TestGetRevenueMissingDates(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/revenue")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRevenueInvertedRange(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/revenue?start_date=2024-11-03&end_date=2024-11-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRevenueBadQty(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/revenue?start_date=2024-11-01&end_date=2024-11-03&qty=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTopProfitLimit(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/top-profit?start_date=2024-11-01&end_date=2024-11-03&limit=1&qty=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data contracts.RankedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, 1, resp.Data.Entries[0].Rank)
	// Equal values tie-break on catalog order, Lily before Rose
	assert.Equal(t, "Lily", resp.Data.Entries[0].Name)
	assert.Equal(t, 15.0, resp.Data.Entries[0].Value)
}

func TestGetTopRevenueInvalidLimit(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/top-revenue?start_date=2024-11-01&end_date=2024-11-03&limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/forecast/summary?start_date=2024-11-01&end_date=2024-11-03&qty=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Parts []struct {
				Label string `json:"label"`
			} `json:"parts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Two metrics, an aggregated part plus a ranked part each
	require.Len(t, resp.Data.Parts, 4)
	assert.Equal(t, "Predicted profit", resp.Data.Parts[0].Label)
	assert.Equal(t, "Top by profit", resp.Data.Parts[1].Label)
	assert.Equal(t, "Predicted revenue", resp.Data.Parts[2].Label)
	assert.Equal(t, "Top by revenue", resp.Data.Parts[3].Label)
}

func TestGetProducts(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/products")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Count    int                 `json:"count"`
			Products []contracts.Product `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, 2, resp.Data.Count)
	assert.Equal(t, "Lily", resp.Data.Products[0].Name)
	assert.Equal(t, "Rose", resp.Data.Products[1].Name)
}

func TestGetHistory(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/products/Rose/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Count   int                    `json:"count"`
			Records []contracts.SaleRecord `json:"records"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Count)
}

func TestGetHistoryRangeFilter(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/products/Rose/history?start_date=2024-11-02&end_date=2024-11-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Count)
}

func TestGetHistoryUnknownProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := doGET(t, router, "/api/products/Orchid/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuantityRecommend(t *testing.T) {
	router := newTestRouter(t)

	rec := doPOST(t, router, "/api/quantity/recommend", map[string]interface{}{
		"start_date": "2024-11-01",
		"end_date":   "2024-11-30",
		"quantities": map[string]float64{
			"Rose": 10,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			UnitCost float64                   `json:"unit_cost"`
			Advice   []contracts.QuantityAdvice `json:"advice"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 50.0, resp.Data.UnitCost)
	require.Len(t, resp.Data.Advice, 1)
	// Two Rose records at price 100: (100-50)*10 each
	assert.Equal(t, 1000.0, resp.Data.Advice[0].ProjectedProfit)
}

func TestQuantityRecommendEmptyBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doPOST(t, router, "/api/quantity/recommend", map[string]interface{}{
		"start_date":      "2024-11-01",
		"end_date":        "2024-11-30",
		"quantities": map[string]float64{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat(t *testing.T) {
	router := newTestRouter(t)

	rec := doPOST(t, router, "/api/chat", map[string]string{
		"question": "What should I stock?",
		"start_date":    "2024-11-01",
		"end_date":      "2024-11-03",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data chatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stock more lilies", resp.Data.Answer)
}

func TestChatInternalErrorIsGeneric(t *testing.T) {
	router := newTestRouterWithNarrator(t, failingNarrator{})

	rec := doPOST(t, router, "/api/chat", map[string]string{
		"question": "What should I stock?",
		"start_date":    "2024-11-01",
		"end_date":      "2024-11-03",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "quota")
}

func TestChatEmptyQuestion(t *testing.T) {
	router := newTestRouter(t)

	rec := doPOST(t, router, "/api/chat", map[string]string{
		"question": "",
		"start_date":    "2024-11-01",
		"end_date":      "2024-11-03",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
