package modelserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/pkg/config"
	"github.com/petalworks/bloomcast/backend/pkg/httputil"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := testLogger()
	return New(srv.URL, "revenue", httputil.New(log).DisableRetry(), log)
}

func TestPredict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predict", r.URL.Path)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "revenue", req.Model)
		require.Len(t, req.Rows, 2)

		json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{100, 200}})
	})

	got, err := client.Predict(context.Background(), []contracts.FeatureRow{
		{EncodedID: 0, Quantity: 50, UnitPrice: 100},
		{EncodedID: 1, Quantity: 60, UnitPrice: 150},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200}, got)
}

func TestPredictCountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{100}})
	})

	_, err := client.Predict(context.Background(), []contracts.FeatureRow{
		{EncodedID: 0}, {EncodedID: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 predictions for 2 rows")
}

func TestPredictServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{Error: "unknown model"})
	})

	_, err := client.Predict(context.Background(), []contracts.FeatureRow{{EncodedID: 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestPredictBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Predict(context.Background(), []contracts.FeatureRow{{EncodedID: 0}})
	assert.Error(t, err)
}
