package mandi

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxPages bounds board pagination so a broken pager cannot loop forever.
const maxPages = 50

// FetchQuotes fetches wholesale quotes for all listed flowers between
// from and to, inclusive. The board paginates newest first, so paging
// stops as soon as a row older than the window shows up.
func (c *Client) FetchQuotes(ctx context.Context, from, to time.Time) ([]PriceQuote, error) {
	var allQuotes []PriceQuote
	noDataPages := 0

	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return allQuotes, ctx.Err()
		default:
		}

		params := url.Values{}
		params.Set("page", strconv.Itoa(page))

		html, err := c.fetchHTML(ctx, "/market/flowers", params)
		if err != nil {
			return allQuotes, fmt.Errorf("fetch board page %d: %w", page, err)
		}

		quotes, lastDate, hasMore := parseQuotesHTML(html, from, to)
		allQuotes = append(allQuotes, quotes...)

		if !lastDate.IsZero() && lastDate.Before(from) {
			break
		}

		if !hasMore {
			break
		}

		if lastDate.IsZero() {
			noDataPages++
			if noDataPages >= 3 {
				break
			}
		} else {
			noDataPages = 0
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"count": len(allQuotes),
	}).Debug("Fetched mandi quotes")
	return allQuotes, nil
}

var quoteDateRe = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// parseQuotesHTML parses one board page. It returns the quotes inside
// the window, the date of the last row seen on the page and whether
// the pager advertises another page.
//
// Board layout: table.quote-table with rows of
// date | flower | market | modal price (₹/kg).
func parseQuotesHTML(html string, from, to time.Time) ([]PriceQuote, time.Time, bool) {
	var quotes []PriceQuote
	var lastDate time.Time

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return quotes, lastDate, false
	}

	table := doc.Find("table.quote-table")
	if table.Length() == 0 {
		return quotes, lastDate, false
	}

	table.First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !quoteDateRe.MatchString(dateText) {
			return
		}

		quoteDate, err := time.Parse("02-01-2006", dateText)
		if err != nil {
			return
		}

		lastDate = quoteDate

		if quoteDate.Before(from) || quoteDate.After(to) {
			return
		}

		flower := strings.TrimSpace(cells.Eq(1).Text())
		if flower == "" {
			return
		}

		price, ok := parsePrice(cells.Eq(3).Text())
		if !ok {
			return
		}

		quotes = append(quotes, PriceQuote{
			Flower:     flower,
			QuoteDate:  quoteDate,
			PricePerKg: price,
			Market:     strings.TrimSpace(cells.Eq(2).Text()),
		})
	})

	hasMore := doc.Find(".pager-next").Length() > 0
	return quotes, lastDate, hasMore
}

// parsePrice strips the currency sign and thousand separators from a
// price cell. Dashes and empty cells mean no quote that day.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
