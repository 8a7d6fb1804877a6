package parser

import (
	"fmt"

	"liquipedia-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	panelHeadingSel = cascadia.MustCompile(".panel-box-heading")
	panelBodySel    = cascadia.MustCompile(".panel-box-body")
	teamTileSel     = cascadia.MustCompile(".team-template-team-standard")
	templateBoxSel  = cascadia.MustCompile(".template-box")
)

// Parser extracts the region index from the teams portal
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParsePortal returns one Region per portal panel, in page order. Every
// team tile contributes the first link it contains, resolved against pageURL.
func (p *Parser) ParsePortal(htmlContent, pageURL string) ([]models.Region, error) {
	_, root, err := parsePage(htmlContent, pageURL)
	if err != nil {
		return nil, err
	}

	headings := root.FindMatcher(panelHeadingSel)
	bodies := root.FindMatcher(panelBodySel)
	if headings.Length() == 0 {
		return nil, &PageStructureError{URL: pageURL, Element: "region panels .panel-box-heading"}
	}
	if headings.Length() != bodies.Length() {
		return nil, &PageStructureError{
			URL:     pageURL,
			Element: fmt.Sprintf("matching panel bodies (%d headings, %d bodies)", headings.Length(), bodies.Length()),
		}
	}

	regions := make([]models.Region, 0, headings.Length())
	for i := 0; i < headings.Length(); i++ {
		name := normalizeWhitespace(headings.Eq(i).Text())
		if name == "" {
			return nil, &PageStructureError{URL: pageURL, Element: fmt.Sprintf("name of region panel %d", i)}
		}

		links, err := p.extractTeamLinks(bodies.Eq(i), pageURL)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", name, err)
		}
		regions = append(regions, models.Region{Name: name, Links: links})
	}

	return regions, nil
}

// extractTeamLinks collects one absolute team URL per tile in a panel body.
// A team listed twice in the same panel is kept once.
func (p *Parser) extractTeamLinks(body *goquery.Selection, pageURL string) ([]string, error) {
	links := []string{}
	seen := make(map[string]bool)
	var resolveErr error

	findFirst(body, teamTileSel, templateBoxSel).EachWithBreak(func(i int, tile *goquery.Selection) bool {
		href, ok := firstHref(tile)
		if !ok {
			return true
		}
		link, err := resolveURL(pageURL, href)
		if err != nil {
			resolveErr = err
			return false
		}
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
		return true
	})

	if resolveErr != nil {
		return nil, resolveErr
	}
	return links, nil
}
