package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petalworks/bloomcast/backend/internal/external/mandi"
	"github.com/petalworks/bloomcast/backend/internal/scheduler"
	"github.com/petalworks/bloomcast/backend/internal/scheduler/jobs"
	"github.com/petalworks/bloomcast/backend/pkg/httputil"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the background job scheduler",
	Long: `Run the background job scheduler.

Jobs:
  forecast_warm   - precompute the default forecast window nightly
  refresh_quotes  - pull wholesale mandi quotes daily (when enabled)

Example:
  go run ./cmd/bloomcast scheduler
  go run ./cmd/bloomcast scheduler --run-now forecast_warm`,
	RunE: runScheduler,
}

var runNowJob string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&runNowJob, "run-now", "", "run one job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close()

	sched := scheduler.New(p.log)

	if err := sched.AddJob(jobs.NewForecastWarmJob(p.service, p.cfg, p.log)); err != nil {
		return err
	}

	// Quote refresh needs both the board and Postgres
	if p.cfg.Mandi.Enabled && p.cfg.Mandi.BaseURL != "" && p.db != nil {
		httpClient := httputil.New(p.log).WithRateLimit(2, 1)
		client := mandi.NewClient(p.cfg.Mandi.BaseURL, httpClient, p.log)
		repo := mandi.NewRepository(p.db.Pool)

		if err := sched.AddJob(jobs.NewRefreshQuotesJob(client, repo, p.log)); err != nil {
			return err
		}
	} else {
		p.log.Info("Mandi quote refresh disabled")
	}

	sched.Start()
	defer sched.Stop()

	if runNowJob != "" {
		if err := sched.RunJob(runNowJob); err != nil {
			return err
		}
	}

	fmt.Printf("Scheduler running with jobs: %v\n", sched.Jobs())
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
