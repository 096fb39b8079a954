package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/petalworks/bloomcast/backend/internal/external/mandi"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// RefreshQuotesJob pulls the latest wholesale quotes from the mandi
// board and persists them for pricing reference.
type RefreshQuotesJob struct {
	client *mandi.Client
	repo   *mandi.Repository
	logger *logger.Logger
}

// NewRefreshQuotesJob creates a new quote refresh job
func NewRefreshQuotesJob(client *mandi.Client, repo *mandi.Repository, log *logger.Logger) *RefreshQuotesJob {
	return &RefreshQuotesJob{
		client: client,
		repo:   repo,
		logger: log,
	}
}

// Name returns the job name
func (j *RefreshQuotesJob) Name() string {
	return "refresh_quotes"
}

// Schedule returns the cron schedule (6 AM daily, after the board
// posts the morning auction)
func (j *RefreshQuotesJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run fetches the last seven days of quotes and stores the new ones.
// The overlap backfills days the board published late.
func (j *RefreshQuotesJob) Run(ctx context.Context) error {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -7)

	quotes, err := j.client.FetchQuotes(ctx, from, to)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	if len(quotes) == 0 {
		j.logger.Warn("Mandi board returned no quotes")
		return nil
	}

	inserted, err := j.repo.InsertQuotes(ctx, quotes)
	if err != nil {
		return fmt.Errorf("store quotes: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"fetched":  len(quotes),
		"inserted": inserted,
	}).Info("Wholesale quotes refreshed")

	return nil
}
