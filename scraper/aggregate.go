package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"

	"golang.org/x/sync/errgroup"
)

// ExtractFunc extracts the record behind one team link
type ExtractFunc func(ctx context.Context, entityURL string) (*models.Record, error)

// Policy decides what a failed extraction does to the run
type Policy string

const (
	// PolicyAbort stops the run at the first failed team
	PolicyAbort Policy = "abort"
	// PolicySkip logs the failed team and leaves it out of the result
	PolicySkip Policy = "skip"
)

// Options control Aggregate
type Options struct {
	// Workers is the number of teams extracted at the same time. Values
	// below 2 extract sequentially.
	Workers int
	OnError Policy
}

type job struct {
	region int
	link   int
	url    string
}

// Aggregate extracts every link of every region and assembles the result in
// discovery order, whatever order the extractions finish in
func Aggregate(ctx context.Context, regions []models.Region, extract ExtractFunc, opts Options) (*models.AggregateResult, error) {
	var jobs []job
	slots := make([][]*models.Record, len(regions))
	for r, region := range regions {
		slots[r] = make([]*models.Record, len(region.Links))
		for l, link := range region.Links {
			jobs = append(jobs, job{region: r, link: l, url: link})
		}
	}

	var done, skipped atomic.Int64
	run := func(ctx context.Context, j job) error {
		record, err := extract(ctx, j.url)
		if err == nil && record == nil {
			err = errors.New("no record returned")
		}
		n := done.Add(1)
		if err != nil {
			if opts.OnError == PolicySkip && ctx.Err() == nil {
				skipped.Add(1)
				logging.L().Warnf("Skipping %s (%d/%d): %v", j.url, n, len(jobs), err)
				return nil
			}
			return fmt.Errorf("failed to extract %s: %w", j.url, err)
		}
		slots[j.region][j.link] = record
		logging.L().Infof("Extracted %s (%d/%d)", record.Identity.DisplayName, n, len(jobs))
		return nil
	}

	if opts.Workers < 2 {
		for _, j := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(ctx, j); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for _, j := range jobs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return run(gctx, j)
			})
		}
		if err := g.Wait(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.AggregateResult{
		Regions: make([]models.RegionRecords, 0, len(regions)),
		Stats: models.Stats{
			Regions: len(regions),
			Links:   len(jobs),
			Skipped: int(skipped.Load()),
		},
	}
	for r, region := range regions {
		records := make([]models.Record, 0, len(slots[r]))
		for _, record := range slots[r] {
			if record != nil {
				records = append(records, *record)
			}
		}
		result.Regions = append(result.Regions, models.RegionRecords{Name: region.Name, Records: records})
	}
	result.Stats.Records = result.Len()

	return result, nil
}
