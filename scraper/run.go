package scraper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"liquipedia-scraper/filter"
	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"
	"liquipedia-scraper/store"

	"golang.org/x/sync/errgroup"
)

// Downloader fetches a binary asset and its content type
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// Runner performs one complete rebuild: discovery, extraction, persistence
// and logo download. Nil Writers, Assets or Downloader skip that step.
type Runner struct {
	Discoverer *Discoverer
	Extract    ExtractFunc
	Filter     *filter.Filter
	Writers    []store.DocumentWriter
	Assets     store.AssetWriter
	Downloader Downloader
	Options    Options
}

// Run scrapes portalURL from scratch. Documents are written only once the
// whole aggregate is assembled; a logo that fails to download is logged and
// counted without failing the run.
func (r *Runner) Run(ctx context.Context, portalURL string) (*models.AggregateResult, *models.RunReport, error) {
	report := &models.RunReport{Started: time.Now(), DryRun: len(r.Writers) == 0 && r.Assets == nil}

	regions, err := r.Discoverer.Discover(ctx, portalURL)
	if err != nil {
		return nil, nil, err
	}

	if r.Filter != nil {
		for _, name := range r.Filter.Missing(regions) {
			logging.L().Warnf("Region %q is not on the portal", name)
		}
		regions = r.Filter.ApplyFilters(regions)
	}

	result, err := Aggregate(ctx, regions, r.Extract, r.Options)
	if err != nil {
		return nil, nil, err
	}
	report.Stats = result.Stats

	for _, w := range r.Writers {
		if err := w.WriteDocument(ctx, result); err != nil {
			return nil, nil, fmt.Errorf("failed to write document: %w", err)
		}
	}

	if r.Assets != nil && r.Downloader != nil {
		report.LogosWritten, report.LogosFailed, err = r.writeLogos(ctx, result)
		if err != nil {
			return nil, nil, err
		}
	}

	report.Duration = time.Since(report.Started)
	logging.L().Infof("Run finished in %s: %d regions, %d/%d teams, %d skipped, %d logos (%d failed)",
		report.Duration.Round(time.Millisecond), report.Stats.Regions, report.Stats.Records, report.Stats.Links,
		report.Stats.Skipped, report.LogosWritten, report.LogosFailed)

	return result, report, nil
}

// writeLogos downloads and stores every record's logo. Only cancellation is
// returned as an error.
func (r *Runner) writeLogos(ctx context.Context, result *models.AggregateResult) (int, int, error) {
	var written, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Options.Workers, 1))

	for _, region := range result.Regions {
		for _, record := range region.Records {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				name := record.Identity.DisplayName
				data, contentType, err := r.Downloader.Download(gctx, record.LogoReference)
				if err == nil {
					err = r.Assets.WriteAsset(gctx, data, region.Name, name, store.Extension(record.LogoReference, contentType))
				}
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					failed.Add(1)
					logging.L().Warnf("Failed to save logo of %s: %v", name, err)
					return nil
				}

				written.Add(1)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return int(written.Load()), int(failed.Load()), err
	}
	return int(written.Load()), int(failed.Load()), nil
}
