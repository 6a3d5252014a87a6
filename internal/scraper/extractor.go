package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Extract parses an HTML document and returns the trimmed text of every element
// matching selector, in document order. The result is never nil.
func Extract(r io.Reader, selector string) ([]string, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, newInvalidSelectorError(selector, err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, newParseError(err)
	}

	items := []string{}
	doc.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
		items = append(items, strings.TrimSpace(s.Text()))
	})
	return items, nil
}
