package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

// Downloader fetches binary assets such as team logos
type Downloader struct {
	client *resty.Client
	opts   Options
}

// NewDownloader creates a Downloader that retries transient failures
func NewDownloader(opts Options) *Downloader {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.timeout()).
		SetHeader("User-Agent", opts.userAgent())

	return &Downloader{client: client, opts: opts}
}

// Download returns the body and content type of url
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	if err := d.opts.wait(ctx); err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}

	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, "", &FetchError{URL: url, StatusCode: resp.StatusCode(), Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	return resp.Body(), resp.Header().Get("Content-Type"), nil
}
