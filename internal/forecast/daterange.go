package forecast

import (
	"fmt"
	"time"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// ExpandRange turns an inclusive date range into its ordered sequence
// of calendar days. The sequence length is the single source of truth
// for how many synthetic rows each product gets in a forecast run.
func ExpandRange(r contracts.DateRange) ([]time.Time, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: start %s after end %s",
			contracts.ErrInvalidRange,
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}

	days := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// ParseRange parses start/end date strings in YYYY-MM-DD form into a
// validated range.
func ParseRange(start, end string) (contracts.DateRange, error) {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return contracts.DateRange{}, fmt.Errorf("%w: bad start date %q", contracts.ErrInvalidRange, start)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return contracts.DateRange{}, fmt.Errorf("%w: bad end date %q", contracts.ErrInvalidRange, end)
	}

	r := contracts.DateRange{Start: s, End: e}
	if !r.Valid() {
		return contracts.DateRange{}, fmt.Errorf("%w: start %s after end %s", contracts.ErrInvalidRange, start, end)
	}
	return r, nil
}
