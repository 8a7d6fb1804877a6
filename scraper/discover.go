package scraper

import (
	"context"
	"fmt"

	"liquipedia-scraper/fetcher"
	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"
	"liquipedia-scraper/parser"
)

// Discoverer finds the team pages listed on the teams portal
type Discoverer struct {
	fetcher fetcher.Fetcher
	parser  *parser.Parser
}

// NewDiscoverer creates a new Discoverer instance
func NewDiscoverer(f fetcher.Fetcher) *Discoverer {
	return &Discoverer{
		fetcher: f,
		parser:  parser.NewParser(),
	}
}

// Discover returns the portal's regions and their team links in page order
func (d *Discoverer) Discover(ctx context.Context, portalURL string) ([]models.Region, error) {
	page, err := d.fetcher.Fetch(ctx, portalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portal: %w", err)
	}

	regions, err := d.parser.ParsePortal(page.HTML, pageURL(page, portalURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse portal: %w", err)
	}

	logging.L().Infof("Discovered %d regions with %d teams", len(regions), models.LinkCount(regions))
	return regions, nil
}

// pageURL prefers the final URL after redirects
func pageURL(page *fetcher.Page, requested string) string {
	if page.URL != "" {
		return page.URL
	}
	return requested
}
