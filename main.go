package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"liquipedia-scraper/config"
	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"
	"liquipedia-scraper/scheduler"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	portalURL := flag.String("portal", "", "Teams portal URL (overrides config)")
	outputDir := flag.String("out", "", "Output directory for teams.json and logos (overrides config)")
	workers := flag.Int("workers", 0, "Number of teams extracted at the same time (overrides config)")
	fetcherName := flag.String("fetcher", "", "Page fetcher: colly or rod (overrides config)")
	onError := flag.String("on-error", "", "What a failed team does to the run: abort or skip (overrides config)")
	regions := flag.String("regions", "", "Comma separated region allowlist (overrides config)")
	interval := flag.Duration("interval", 0, "Rebuild periodically at this interval instead of running once")
	dryRun := flag.Bool("dry-run", false, "Scrape and print a summary without writing anything")
	flag.Parse()

	cfg, loadErr := loadConfig(*configPath)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "portal":
			cfg.PortalURL = *portalURL
		case "out":
			cfg.OutputDir = *outputDir
		case "workers":
			cfg.Workers = *workers
		case "fetcher":
			cfg.Fetcher = *fetcherName
		case "on-error":
			cfg.OnError = *onError
		case "regions":
			cfg.Regions = splitList(*regions)
		case "interval":
			cfg.Schedule.Interval = *interval
		}
	})

	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if loadErr != nil {
		logging.L().Warnf("Failed to load config file: %v. Using defaults.", loadErr)
	}

	if err := run(cfg, *dryRun); err != nil {
		logging.L().Errorf("%v", err)
		logging.Sync()
		os.Exit(1)
	}
}

// run wires the scraper from cfg and runs it once or on a schedule
func run(cfg *config.Config, dryRun bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Schedule.Interval > 0 {
		logging.L().Infof("Rebuilding every %s", cfg.Schedule.Interval)
		s := scheduler.NewScheduler(cfg.Schedule.Interval, a.runOnce, a.notifier)
		s.Start(ctx)
		<-ctx.Done()
		s.Stop()
		return nil
	}

	report, err := a.runOnce(ctx)
	if err != nil {
		a.notifyFailure(ctx, err)
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}
	a.notifySuccess(ctx, report)

	if dryRun {
		printReport(report)
	}
	return nil
}

// loadConfig loads the config file when it exists. The returned config is
// always usable; the error only explains why defaults were used.
func loadConfig(configPath string) (*config.Config, error) {
	path := configPath
	if _, err := os.Stat(configPath); err != nil {
		path = ""
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		defaults, envErr := config.LoadConfig("")
		if envErr != nil {
			return config.GetDefaultConfig(), errors.Join(err, envErr)
		}
		return defaults, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// printReport displays a run summary on the console
func printReport(report *models.RunReport) {
	fmt.Printf("Regions: %d\n", report.Stats.Regions)
	fmt.Printf("Teams extracted: %d of %d\n", report.Stats.Records, report.Stats.Links)
	fmt.Printf("Teams skipped: %d\n", report.Stats.Skipped)
	fmt.Printf("Duration: %s\n", report.Duration)
	fmt.Println("Dry run: nothing was written.")
}
