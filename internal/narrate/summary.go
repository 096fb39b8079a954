package narrate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// Part is one labeled piece of a summary: an aggregated mapping or a
// ranked list, never both.
type Part struct {
	Label      string                      `json:"label"`
	Aggregated *contracts.AggregatedResult `json:"aggregated,omitempty"`
	Ranked     *contracts.RankedResult     `json:"ranked,omitempty"`
}

// Summary is the assembled payload handed to transport or interpolated
// into the narration prompt. Assembly preserves the numeric precision
// of its inputs; rounding happens only in explicit display formatting.
type Summary struct {
	Range contracts.DateRange `json:"range"`
	Parts []Part              `json:"parts"`
}

// Build assembles labeled parts in the given order.
func Build(r contracts.DateRange, parts ...Part) *Summary {
	return &Summary{Range: r, Parts: parts}
}

// Prompt renders the summary into the narration request, one block per
// part, mirroring how the dashboard chatbot feeds its figures to the
// assistant. Values keep full precision; the assistant does its own
// rounding when it speaks.
func (s *Summary) Prompt(question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Forecast window: %s to %s.\n\n",
		s.Range.Start.Format("2006-01-02"), s.Range.End.Format("2006-01-02"))

	for _, part := range s.Parts {
		fmt.Fprintf(&b, "%s:\n", part.Label)

		switch {
		case part.Aggregated != nil:
			// Sorted name order keeps the prompt identical across runs
			names := make([]string, 0, len(part.Aggregated.Values))
			for name := range part.Aggregated.Values {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				if msg, failed := part.Aggregated.Errors[name]; failed {
					fmt.Fprintf(&b, "- %s: unavailable (%s)\n", name, msg)
					continue
				}
				fmt.Fprintf(&b, "- %s: %s\n", name, strconv.FormatFloat(part.Aggregated.Values[name], 'g', -1, 64))
			}
		case part.Ranked != nil:
			for _, e := range part.Ranked.Entries {
				fmt.Fprintf(&b, "%d. %s: %s\n", e.Rank, e.Name, strconv.FormatFloat(e.Value, 'g', -1, 64))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("You are the analytics assistant of a flower shop. ")
	b.WriteString("Answer using only the figures above.\n")
	if question != "" {
		fmt.Fprintf(&b, "Question: %s\n", question)
	}

	return b.String()
}

// FormatCurrency renders a value for display with two decimals. Only
// display layers call this; the payload itself stays unrounded.
func FormatCurrency(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
