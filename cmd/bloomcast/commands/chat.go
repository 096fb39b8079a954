package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/internal/narrate"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the forecast assistant a question",
	Long: `Aggregate the default forecast window, feed the figures to the
narrator and print its answer.

Example:
  go run ./cmd/bloomcast chat "Which flower should I stock next month?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var (
	chatStart string
	chatEnd   string
)

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatStart, "start", "", "window start (default: today)")
	chatCmd.Flags().StringVar(&chatEnd, "end", "", "window end (default: 30 days out)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close()

	if p.cfg.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for chat")
	}

	dr, err := chatWindow()
	if err != nil {
		return err
	}

	narrator, err := narrate.NewGemini(ctx, p.cfg, p.log)
	if err != nil {
		return fmt.Errorf("create narrator: %w", err)
	}
	defer narrator.Close()

	low, high := p.cfg.Forecast.QuantityLow, p.cfg.Forecast.QuantityHigh
	results, err := p.service.AggregateAll(ctx, dr, func(contracts.Metric) forecast.QuantityPolicy {
		return forecast.NewSampledQuantity(low, high)
	})
	if err != nil {
		return err
	}

	var parts []narrate.Part
	for _, metric := range p.service.Metrics() {
		result := results[metric]
		top, err := p.ranker.Top(result, 3)
		if err != nil {
			return err
		}
		parts = append(parts,
			narrate.Part{Label: "Predicted " + string(metric), Aggregated: result},
			narrate.Part{Label: "Top by " + string(metric), Ranked: top},
		)
	}

	prompt := narrate.Build(dr, parts...).Prompt(question)
	answer, err := narrator.Summarize(ctx, prompt)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}

// chatWindow resolves the forecast window flags, defaulting to the
// next thirty days.
func chatWindow() (contracts.DateRange, error) {
	if chatStart != "" || chatEnd != "" {
		return forecast.ParseRange(chatStart, chatEnd)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	return contracts.DateRange{Start: today, End: today.AddDate(0, 0, 29)}, nil
}
