package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"liquipedia-scraper/logging"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPortalURL is the Liquipedia League of Legends team portal
const DefaultPortalURL = "https://liquipedia.net/leagueoflegends/Portal:Teams"

// Error policies applied when a single team fails to extract
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Fetcher backends
const (
	FetcherColly = "colly"
	FetcherRod   = "rod"
)

var (
	ErrNoPortalURL     = errors.New("no portal url configured")
	ErrNoOutputDir     = errors.New("no output directory configured")
	ErrInvalidWorkers  = errors.New("invalid workers: must be positive")
	ErrInvalidPolicy   = errors.New("invalid on_error policy: must be abort or skip")
	ErrInvalidFetcher  = errors.New("invalid fetcher: must be colly or rod")
	ErrInvalidTimeout  = errors.New("invalid fetch timeout: must be positive")
	ErrInvalidRate     = errors.New("invalid requests per second: must be non-negative")
	ErrInvalidInterval = errors.New("invalid schedule interval: must be non-negative")
)

// Config represents the scraper configuration
type Config struct {
	PortalURL         string        `yaml:"portal_url" envconfig:"PORTAL_URL"`
	OutputDir         string        `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Fetcher           string        `yaml:"fetcher" envconfig:"FETCHER"`
	Workers           int           `yaml:"workers" envconfig:"WORKERS"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	OnError           string        `yaml:"on_error" envconfig:"ON_ERROR"`
	Regions           []string      `yaml:"regions" envconfig:"REGIONS"`
	DownloadLogos     bool          `yaml:"download_logos" envconfig:"DOWNLOAD_LOGOS"`

	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Sheets   SheetsConfig   `yaml:"sheets" envconfig:"SHEETS"`
	Telegram TelegramConfig `yaml:"telegram" envconfig:"TELEGRAM"`
	Schedule ScheduleConfig `yaml:"schedule" envconfig:"SCHEDULE"`
	Log      logging.Config `yaml:"log" envconfig:"LOG"`
}

// DatabaseConfig points at an optional Postgres sink
type DatabaseConfig struct {
	URL string `yaml:"url" envconfig:"URL"`
}

// SheetsConfig points at an optional Google Sheets sink
type SheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url" envconfig:"SPREADSHEET_URL"`
	CredentialsPath string `yaml:"credentials_path" envconfig:"CREDENTIALS_PATH"`
}

// TelegramConfig enables run summaries sent to a chat
type TelegramConfig struct {
	Token  string `yaml:"token" envconfig:"TOKEN"`
	ChatID int64  `yaml:"chat_id" envconfig:"CHAT_ID"`
}

// ScheduleConfig controls periodic full rebuilds. Zero interval means run once.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults,
// then applies LPS_* environment overrides
func LoadConfig(path string) (*Config, error) {
	cfg := GetDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("LPS", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	return &Config{
		PortalURL:         DefaultPortalURL,
		OutputDir:         "output",
		Fetcher:           FetcherColly,
		Workers:           1,
		FetchTimeout:      30 * time.Second,
		RequestsPerSecond: 1,
		OnError:           PolicyAbort,
		DownloadLogos:     true,
		Log: logging.Config{
			Level: "info",
		},
	}
}

// Validate checks the configuration for values the scraper cannot run with
func (c *Config) Validate() error {
	switch {
	case c.PortalURL == "":
		return ErrNoPortalURL
	case c.OutputDir == "":
		return ErrNoOutputDir
	case c.Workers <= 0:
		return ErrInvalidWorkers
	case c.FetchTimeout <= 0:
		return ErrInvalidTimeout
	case c.RequestsPerSecond < 0:
		return ErrInvalidRate
	case c.Schedule.Interval < 0:
		return ErrInvalidInterval
	}

	if c.OnError != PolicyAbort && c.OnError != PolicySkip {
		return ErrInvalidPolicy
	}
	if c.Fetcher != FetcherColly && c.Fetcher != FetcherRod {
		return ErrInvalidFetcher
	}
	return nil
}
