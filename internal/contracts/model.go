package contracts

import "context"

// ForecastModel is the contract of a trained regression predictor. The
// returned slice has the same length and order as rows. Implementations
// must be safe for concurrent use; the weights behind a model never
// change after load.
type ForecastModel interface {
	// Name identifies the model in logs and error messages.
	Name() string

	// Predict scores a batch of feature rows.
	Predict(ctx context.Context, rows []FeatureRow) ([]float64, error)
}

// Narrator is the contract of the external narration service. Its
// output is unreliable: it may fail outright or return empty text, and
// callers must never assume the result is well-formed.
type Narrator interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
