package contracts

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_Valid(t *testing.T) {
	tests := []struct {
		name string
		r    DateRange
		want bool
	}{
		{
			name: "ascending range",
			r:    DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 3)},
			want: true,
		},
		{
			name: "single day",
			r:    DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 1)},
			want: true,
		},
		{
			name: "inverted range",
			r:    DateRange{Start: date(2024, 2, 5), End: date(2024, 2, 1)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name string
		r    DateRange
		want int
	}{
		{
			name: "three days",
			r:    DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 3)},
			want: 3,
		},
		{
			name: "single day",
			r:    DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 1)},
			want: 1,
		},
		{
			name: "month boundary",
			r:    DateRange{Start: date(2024, 1, 30), End: date(2024, 2, 2)},
			want: 4,
		},
		{
			name: "inverted range",
			r:    DateRange{Start: date(2024, 2, 5), End: date(2024, 2, 1)},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Days(); got != tt.want {
				t.Errorf("Days() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModelInferenceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ModelInferenceError{Model: "revenue", Product: "Rose", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}

	var infErr *ModelInferenceError
	if !errors.As(error(err), &infErr) {
		t.Error("expected errors.As to match ModelInferenceError")
	}

	if infErr.Product != "Rose" {
		t.Errorf("expected product Rose, got %s", infErr.Product)
	}
}
