package mandi

import (
	"testing"
	"time"
)

const boardPage = `
<html><body>
<table class="quote-table">
<tr><th>Date</th><th>Flower</th><th>Market</th><th>Modal Price</th></tr>
<tr><td>15-11-2024</td><td>Rose</td><td>Ghazipur</td><td>₹1,250.50</td></tr>
<tr><td>15-11-2024</td><td>Lily</td><td>Ghazipur</td><td>₹980</td></tr>
<tr><td>14-11-2024</td><td>Rose</td><td>Ghazipur</td><td>-</td></tr>
<tr><td>13-11-2024</td><td>Tulip</td><td>Ghazipur</td><td>₹2,100</td></tr>
</table>
<div class="pager-next">next</div>
</body></html>`

func TestParseQuotesHTML(t *testing.T) {
	from := time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)

	quotes, lastDate, hasMore := parseQuotesHTML(boardPage, from, to)

	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes inside window, got %d", len(quotes))
	}
	if quotes[0].Flower != "Rose" || quotes[0].PricePerKg != 1250.50 {
		t.Errorf("unexpected first quote: %+v", quotes[0])
	}
	if quotes[1].Flower != "Lily" || quotes[1].PricePerKg != 980 {
		t.Errorf("unexpected second quote: %+v", quotes[1])
	}
	if quotes[0].Market != "Ghazipur" {
		t.Errorf("expected market Ghazipur, got %q", quotes[0].Market)
	}

	// Last row on the page is 13-11, before the window
	want := time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC)
	if !lastDate.Equal(want) {
		t.Errorf("expected lastDate %v, got %v", want, lastDate)
	}
	if !hasMore {
		t.Error("expected hasMore from pager-next marker")
	}
}

func TestParseQuotesHTMLNoTable(t *testing.T) {
	quotes, lastDate, hasMore := parseQuotesHTML("<html><body>maintenance</body></html>",
		time.Time{}, time.Now())

	if len(quotes) != 0 || !lastDate.IsZero() || hasMore {
		t.Errorf("expected empty parse, got quotes=%d lastDate=%v hasMore=%v",
			len(quotes), lastDate, hasMore)
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"₹1,250.50", 1250.50, true},
		{" ₹980 ", 980, true},
		{"2100", 2100, true},
		{"-", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parsePrice(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
