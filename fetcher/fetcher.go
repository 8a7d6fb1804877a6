package fetcher

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the scraper to the wiki, which asks bots to
// send a descriptive agent
const DefaultUserAgent = "liquipedia-scraper/1.0 (team roster export; Go)"

// Page is a fetched document
type Page struct {
	URL  string
	HTML string
}

// Fetcher retrieves one page at a time. A Fetcher is a single session and is
// not safe for concurrent use unless documented otherwise.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Close() error
}

// FetchError reports a transport, navigation or HTTP status failure
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options are shared by all fetcher implementations
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Limiter is shared between sessions so a pool stays polite as a whole
	Limiter *rate.Limiter
}

// NewLimiter returns a limiter allowing rps requests per second. Zero disables limiting.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 30 * time.Second
	}
	return o.Timeout
}

func (o Options) userAgent() string {
	if o.UserAgent == "" {
		return DefaultUserAgent
	}
	return o.UserAgent
}

func (o Options) wait(ctx context.Context) error {
	if o.Limiter == nil {
		return ctx.Err()
	}
	return o.Limiter.Wait(ctx)
}
