package main

import (
	"context"
	"errors"
	"fmt"

	"liquipedia-scraper/config"
	"liquipedia-scraper/db"
	"liquipedia-scraper/fetcher"
	"liquipedia-scraper/filter"
	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"
	"liquipedia-scraper/notifier"
	"liquipedia-scraper/scheduler"
	"liquipedia-scraper/scraper"
	"liquipedia-scraper/sheets"
	"liquipedia-scraper/store"
)

// app holds everything a run needs and what has to be closed afterwards
type app struct {
	portalURL string
	runner    *scraper.Runner
	notifier  scheduler.Notifier
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, dryRun bool) (*app, error) {
	a := &app{portalURL: cfg.PortalURL}

	opts := fetcher.Options{
		Timeout: cfg.FetchTimeout,
		Limiter: fetcher.NewLimiter(cfg.RequestsPerSecond),
	}

	pool, err := a.newPool(cfg, opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.runner = &scraper.Runner{
		Discoverer: scraper.NewDiscoverer(pool),
		Extract:    scraper.PooledExtract(pool, scraper.RandomIDs),
		Options: scraper.Options{
			Workers: cfg.Workers,
			OnError: scraper.Policy(cfg.OnError),
		},
	}
	if len(cfg.Regions) > 0 {
		a.runner.Filter = filter.NewFilter(cfg.Regions)
	}

	if cfg.Telegram.Token != "" {
		n, err := notifier.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logging.L().Warnf("Failed to initialize Telegram notifier: %v", err)
		} else {
			a.notifier = n
		}
	}

	if dryRun {
		logging.L().Infof("Dry run: nothing will be written")
		return a, nil
	}

	if err := a.addSinks(ctx, cfg, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// newPool creates cfg.Workers fetch sessions of the configured backend
func (a *app) newPool(cfg *config.Config, opts fetcher.Options) (*fetcher.Pool, error) {
	var newSession func() (fetcher.Fetcher, error)

	switch cfg.Fetcher {
	case config.FetcherRod:
		browser, err := fetcher.NewRodFetcher(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create browser: %w", err)
		}
		a.closers = append(a.closers, browser.Close)
		newSession = func() (fetcher.Fetcher, error) {
			return browser.NewSession()
		}
	default:
		newSession = func() (fetcher.Fetcher, error) {
			return fetcher.NewCollyFetcher(opts), nil
		}
	}

	pool, err := fetcher.NewPool(cfg.Workers, newSession)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch sessions: %w", err)
	}
	// sessions close before the browser that owns them
	a.closers = append([]func() error{pool.Close}, a.closers...)
	return pool, nil
}

// addSinks configures the file store and the optional database and spreadsheet
func (a *app) addSinks(ctx context.Context, cfg *config.Config, opts fetcher.Options) error {
	files := store.NewFileStore(cfg.OutputDir)
	a.runner.Writers = append(a.runner.Writers, files)
	if cfg.DownloadLogos {
		a.runner.Assets = files
		a.runner.Downloader = fetcher.NewDownloader(opts)
	}

	if cfg.Database.URL != "" {
		database, err := db.NewDB(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		a.runner.Writers = append(a.runner.Writers, database)
	}

	if cfg.Sheets.SpreadsheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL)
		if spreadsheetID == "" {
			logging.L().Warnf("Could not extract spreadsheet ID from URL: %s", cfg.Sheets.SpreadsheetURL)
			return nil
		}
		writer, err := sheets.NewWriter(ctx, spreadsheetID, cfg.Sheets.CredentialsPath)
		if err != nil {
			logging.L().Warnf("Failed to initialize Google Sheets writer: %v", err)
			return nil
		}
		a.runner.Writers = append(a.runner.Writers, writer)
	}
	return nil
}

func (a *app) runOnce(ctx context.Context) (*models.RunReport, error) {
	_, report, err := a.runner.Run(ctx, a.portalURL)
	return report, err
}

func (a *app) notifySuccess(ctx context.Context, report *models.RunReport) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.NotifySuccess(ctx, report); err != nil {
		logging.L().Warnf("Error sending notification: %v", err)
	}
}

func (a *app) notifyFailure(ctx context.Context, runErr error) {
	if a.notifier == nil {
		return
	}
	// the run context may already be cancelled
	if err := a.notifier.NotifyFailure(context.WithoutCancel(ctx), runErr); err != nil {
		logging.L().Warnf("Error sending notification: %v", err)
	}
}

// Close releases fetch sessions, the browser and database connections
func (a *app) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		logging.L().Warnf("Error during shutdown: %v", err)
		return err
	}
	return nil
}
