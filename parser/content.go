package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
)

// contentXPath addresses the article body of a MediaWiki page
const contentXPath = `//*[@id="mw-content-text"]`

var anchorSel = cascadia.MustCompile("a[href]")

// parsePage parses htmlContent and returns the whole document together with
// the article content root
func parsePage(htmlContent, pageURL string) (*goquery.Document, *goquery.Document, error) {
	top, err := htmlquery.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	node, err := htmlquery.Query(top, contentXPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query content root: %w", err)
	}
	if node == nil {
		return nil, nil, &PageStructureError{URL: pageURL, Element: "content root #mw-content-text"}
	}

	return goquery.NewDocumentFromNode(top), goquery.NewDocumentFromNode(node), nil
}

// findFirst returns the matches of the first selector that matches anything
func findFirst(s *goquery.Selection, selectors ...cascadia.Selector) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.FindMatcher(sel); found.Length() > 0 {
			return found
		}
	}
	return s.FindMatcher(selectors[len(selectors)-1])
}

// firstHref returns the href of the first anchor inside s, if any
func firstHref(s *goquery.Selection) (string, bool) {
	return hrefOf(s.FindMatcher(anchorSel).First())
}

// hrefOf returns the non-empty href of the first element in s
func hrefOf(s *goquery.Selection) (string, bool) {
	href, ok := s.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return href, true
}
