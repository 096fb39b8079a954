package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
)

// Column aliases accepted in the dataset header. The cleaned dataset
// ships with the verbose names; the short ones cover re-exports.
var columnAliases = map[string]string{
	"flower name":      "product",
	"product":          "product",
	"timestamp":        "date",
	"date":             "date",
	"mrp":              "unit_price",
	"unit price":       "unit_price",
	"qty sold":         "quantity",
	"quantity":         "quantity",
	"customer segment": "segment",
	"segment":          "segment",
	"weather":          "weather",
}

// LoadCSV reads the cleaned sales dataset into a Store. A malformed
// header, row shape or cell value fails the whole load; partial
// datasets are worse than no dataset.
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDataLoad, err)
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		return nil, err
	}
	return NewStore(records), nil
}

func parseCSV(r io.Reader) ([]contracts.SaleRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", contracts.ErrDataLoad, err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	for _, required := range []string{"product", "date", "unit_price", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", contracts.ErrDataLoad, required)
		}
	}

	var records []contracts.SaleRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", contracts.ErrDataLoad, line, err)
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", contracts.ErrDataLoad, line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, cols map[string]int) (contracts.SaleRecord, error) {
	var rec contracts.SaleRecord

	name := strings.TrimSpace(row[cols["product"]])
	if name == "" {
		return rec, fmt.Errorf("empty product name")
	}
	rec.Product = name

	date, err := parseDate(strings.TrimSpace(row[cols["date"]]))
	if err != nil {
		return rec, err
	}
	rec.Date = date

	rec.UnitPrice, err = strconv.ParseFloat(strings.TrimSpace(row[cols["unit_price"]]), 64)
	if err != nil {
		return rec, fmt.Errorf("bad unit price: %v", err)
	}

	rec.Quantity, err = strconv.ParseFloat(strings.TrimSpace(row[cols["quantity"]]), 64)
	if err != nil {
		return rec, fmt.Errorf("bad quantity: %v", err)
	}

	if i, ok := cols["segment"]; ok && i < len(row) {
		rec.Segment = strings.TrimSpace(row[i])
	}
	if i, ok := cols["weather"]; ok && i < len(row) {
		rec.Weather = strings.TrimSpace(row[i])
	}

	return rec, nil
}

// normalizeHeader maps a raw header cell to its canonical column name.
// Unit suffixes like "(kg)" and currency markers are stripped first.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if i := strings.Index(h, "("); i > 0 {
		h = strings.TrimSpace(h[:i])
	}
	if canonical, ok := columnAliases[h]; ok {
		return canonical
	}
	return h
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			// Records are keyed by calendar day
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}
