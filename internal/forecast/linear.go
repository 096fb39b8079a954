package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// LinearModel scores feature rows with exported regression
// coefficients. Training happens elsewhere; this only evaluates
// weights exported to a JSON file, so a trained model can be served
// in-process without an inference server.
type LinearModel struct {
	name      string
	intercept float64
	idCoef    float64
	qtyCoef   float64
	priceCoef float64
}

// linearWeights is the exported weight file layout.
type linearWeights struct {
	Intercept float64 `json:"intercept"`
	EncodedID float64 `json:"encoded_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// NewLinearModel creates a linear model from explicit coefficients.
func NewLinearModel(name string, intercept, idCoef, qtyCoef, priceCoef float64) *LinearModel {
	return &LinearModel{
		name:      name,
		intercept: intercept,
		idCoef:    idCoef,
		qtyCoef:   qtyCoef,
		priceCoef: priceCoef,
	}
}

// LoadLinearModel reads exported weights from a JSON file.
func LoadLinearModel(name, path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights %s: %w", path, err)
	}

	var w linearWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", path, err)
	}

	return NewLinearModel(name, w.Intercept, w.EncodedID, w.Quantity, w.UnitPrice), nil
}

// Name implements contracts.ForecastModel
func (m *LinearModel) Name() string { return m.name }

// Predict implements contracts.ForecastModel
func (m *LinearModel) Predict(_ context.Context, rows []contracts.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = m.intercept +
			m.idCoef*float64(row.EncodedID) +
			m.qtyCoef*row.Quantity +
			m.priceCoef*row.UnitPrice
	}
	return out, nil
}
