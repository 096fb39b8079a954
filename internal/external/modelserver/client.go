package modelserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/pkg/httputil"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// Client talks to the inference service that serves the trained
// regression models. One Client instance backs one named model, so it
// plugs in anywhere a contracts.ForecastModel is expected.
type Client struct {
	baseURL    string
	modelName  string
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates a model client for one served model.
func New(baseURL, modelName string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelName:  modelName,
		httpClient: httpClient,
		logger:     log,
	}
}

// Name implements contracts.ForecastModel
func (c *Client) Name() string { return c.modelName }

type predictRequest struct {
	Model string                 `json:"model"`
	Rows  []contracts.FeatureRow `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error,omitempty"`
}

// Predict implements contracts.ForecastModel by scoring a batch
// remotely. The response must carry one prediction per input row.
func (c *Client) Predict(ctx context.Context, rows []contracts.FeatureRow) ([]float64, error) {
	url := fmt.Sprintf("%s/v1/predict", c.baseURL)

	resp, err := c.httpClient.PostJSON(ctx, url, predictRequest{
		Model: c.modelName,
		Rows:  rows,
	})
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}

	var out predictResponse
	if err := httputil.DecodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("predict response invalid: %w", err)
	}

	if out.Error != "" {
		return nil, fmt.Errorf("model server error: %s", out.Error)
	}
	if len(out.Predictions) != len(rows) {
		return nil, fmt.Errorf("model server returned %d predictions for %d rows",
			len(out.Predictions), len(rows))
	}

	c.logger.WithFields(map[string]interface{}{
		"model": c.modelName,
		"rows":  len(rows),
	}).Debug("Batch scored")

	return out.Predictions, nil
}
