package listing

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/corpusfind/corpusfind/internal/model"
)

// Structural constants of the Apache fancy-index table.
const (
	// headerRows is the number of leading table rows that carry column
	// titles and the horizontal rule, not listing data.
	headerRows = 3

	// footerRows is the number of trailing rows (the closing horizontal
	// rule).
	footerRows = 1

	// minColumns is the minimum number of data cells a row must have to be
	// treated as a listing row: name, last-modified, size, description.
	minColumns = 4
)

// ParseError reports a listing page whose structure could not be parsed.
// Like FetchError, it is fatal at the root of a walk and contained in
// descendant branches.
type ParseError struct {
	// URL is the page whose content failed to parse.
	URL string

	// Err is the underlying parser error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse listing %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser converts fetched listing HTML into ordered entries.
// The zero value is ready to use; the type exists so the production
// fetch+parse pair can satisfy the walker's Source interface.
type Parser struct{}

// NewParser creates a listing parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts one listing page into entries, in document row order.
//
// Rows without an anchor still produce an entry with empty Name and URL;
// downstream pattern filtering drops them naturally, which matches the
// behavior of the crawler this tool replaces. A listing with fewer rows
// than the header/footer window yields no entries and no error.
func (p *Parser) Parse(content, baseURL string) ([]model.Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &ParseError{URL: baseURL, Err: err}
	}

	rows := doc.Find("table tr")
	total := rows.Length()
	if total <= headerRows+footerRows {
		return nil, nil
	}

	entries := make([]model.Entry, 0, total-headerRows-footerRows)
	rows.Slice(headerRows, total-footerRows).Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < minColumns {
			return
		}

		// Standard fancy-index rows lead with an icon cell; tolerate its
		// absence by shifting the column offset.
		offset := 0
		if cols.Length() > minColumns {
			offset = 1
		}

		var name, entryURL string
		if anchor := cols.Eq(offset).Find("a").First(); anchor.Length() > 0 {
			name = anchor.Text()
			if href, ok := anchor.Attr("href"); ok {
				entryURL = resolveHref(baseURL, href)
			}
		}

		kind := model.KindFile
		if strings.HasSuffix(entryURL, "/") {
			kind = model.KindDirectory
		}

		entries = append(entries, model.Entry{
			URL:          entryURL,
			Name:         name,
			Kind:         kind,
			LastModified: strings.TrimSpace(cols.Eq(offset + 1).Text()),
			Size:         strings.TrimSpace(cols.Eq(offset + 2).Text()),
			Description:  strings.TrimSpace(cols.Eq(offset + 3).Text()),
		})
	})

	return entries, nil
}

// resolveHref makes a listing href absolute. Targets that already carry a
// scheme pass through untouched; everything else is joined to the base URL
// with a single "/" between them.
func resolveHref(baseURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + "/" + href
}
