package fetcher

import (
	"context"
	"fmt"

	"liquipedia-scraper/logging"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements the Fetcher interface using colly. Pages are
// fetched over plain HTTP without running JavaScript.
type CollyFetcher struct {
	collector *colly.Collector
	opts      Options
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(opts Options) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(opts.userAgent()),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.timeout())

	return &CollyFetcher{
		collector: c,
		opts:      opts,
	}
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := cf.opts.wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	// a clone keeps callbacks of concurrent fetches apart
	c := cf.collector.Clone()

	var page *Page
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		page = &Page{URL: r.Request.URL.String(), HTML: string(r.Body)}
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &FetchError{URL: url, StatusCode: r.StatusCode, Err: err}
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, &FetchError{URL: url, Err: ctx.Err()}
	case err := <-done:
		if fetchErr != nil {
			return nil, fetchErr
		}
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
	}

	if page == nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("no response received")}
	}

	logging.L().Debugf("Fetched %s (%d bytes)", url, len(page.HTML))
	return page, nil
}

// Close implements the Fetcher interface
func (cf *CollyFetcher) Close() error {
	return nil
}
