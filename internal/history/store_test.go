package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleStore() *Store {
	return NewStore([]contracts.SaleRecord{
		{Product: "Rose", Date: day(2024, 1, 1), UnitPrice: 90, Quantity: 10},
		{Product: "Rose", Date: day(2024, 1, 2), UnitPrice: 110, Quantity: 12},
		{Product: "Lily", Date: day(2024, 1, 2), UnitPrice: 150, Quantity: 8},
		{Product: "Lily", Date: day(2024, 2, 1), UnitPrice: 150, Quantity: 9},
	})
}

func TestFilterInclusiveBounds(t *testing.T) {
	s := sampleStore()

	r := contracts.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 2)}
	got := s.Filter(r, "")
	assert.Len(t, got, 3)

	// Both boundary days are included
	r = contracts.DateRange{Start: day(2024, 1, 2), End: day(2024, 2, 1)}
	got = s.Filter(r, "Lily")
	assert.Len(t, got, 2)
}

func TestFilterEmptyResult(t *testing.T) {
	s := sampleStore()

	r := contracts.DateRange{Start: day(2030, 1, 1), End: day(2030, 1, 31)}
	got := s.Filter(r, "")
	assert.Empty(t, got, "no match must yield an empty slice, not an error")
}

func TestFilterOnEmptyStore(t *testing.T) {
	s := NewStore(nil)

	r := contracts.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)}
	assert.Empty(t, s.Filter(r, ""))

	_, err := s.MeanPrice("")
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestMeanPrice(t *testing.T) {
	s := sampleStore()

	rose, err := s.MeanPrice("Rose")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, rose, 1e-9)

	lily, err := s.MeanPrice("Lily")
	require.NoError(t, err)
	assert.InDelta(t, 150.0, lily, 1e-9)

	all, err := s.MeanPrice("")
	require.NoError(t, err)
	assert.InDelta(t, 125.0, all, 1e-9)

	_, err = s.MeanPrice("Sunflower")
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestMeanPriceInRange(t *testing.T) {
	s := sampleStore()

	r := contracts.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 1)}
	got, err := s.MeanPriceInRange(r, "Rose")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, got, 1e-9)

	_, err = s.MeanPriceInRange(r, "Lily")
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"Flower Name,Timestamp,MRP (₹),Qty Sold (kg),Customer Segment,Weather",
		"Rose,2024-01-01,90.5,10,Retail,Sunny",
		"Lily,2024-01-02,150,8,Wholesale,Rainy",
	}, "\n")

	records, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Rose", records[0].Product)
	assert.Equal(t, day(2024, 1, 1), records[0].Date)
	assert.Equal(t, 90.5, records[0].UnitPrice)
	assert.Equal(t, 10.0, records[0].Quantity)
	assert.Equal(t, "Retail", records[0].Segment)
	assert.Equal(t, "Rainy", records[1].Weather)
}

func TestParseCSVShortHeaders(t *testing.T) {
	input := strings.Join([]string{
		"product,date,unit price,quantity",
		"Tulip,2024-03-05,42.0,3.5",
	}, "\n")

	records, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tulip", records[0].Product)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "missing required column",
			input: "Flower Name,Timestamp\nRose,2024-01-01",
		},
		{
			name:  "bad date",
			input: "product,date,unit price,quantity\nRose,notadate,90,10",
		},
		{
			name:  "bad price",
			input: "product,date,unit price,quantity\nRose,2024-01-01,ninety,10",
		},
		{
			name:  "empty product",
			input: "product,date,unit price,quantity\n,2024-01-01,90,10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, contracts.ErrDataLoad)
		})
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV("testdata/does-not-exist.csv")
	assert.ErrorIs(t, err, contracts.ErrDataLoad)
}
