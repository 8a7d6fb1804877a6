package scraper

import (
	"context"
	"fmt"

	"liquipedia-scraper/fetcher"
	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"
	"liquipedia-scraper/parser"

	"github.com/google/uuid"
)

// IDGenerator assigns the unique identifier of a record
type IDGenerator interface {
	NewID() uuid.UUID
}

// IDGeneratorFunc adapts a function to IDGenerator
type IDGeneratorFunc func() uuid.UUID

// NewID implements IDGenerator
func (f IDGeneratorFunc) NewID() uuid.UUID {
	return f()
}

// NewID returns a random (version 4) UUID. Identifiers are fresh on every
// run; nothing ties a team to the ID it got last time.
func NewID() uuid.UUID {
	return uuid.New()
}

// RandomIDs is the default IDGenerator
var RandomIDs IDGenerator = IDGeneratorFunc(NewID)

// Extractor turns one team page into a Record
type Extractor struct {
	fetcher fetcher.Fetcher
	parser  *parser.DetailParser
	ids     IDGenerator
}

// NewExtractor creates a new Extractor instance. A nil ids uses RandomIDs.
func NewExtractor(f fetcher.Fetcher, ids IDGenerator) *Extractor {
	if ids == nil {
		ids = RandomIDs
	}
	return &Extractor{
		fetcher: f,
		parser:  parser.NewDetailParser(),
		ids:     ids,
	}
}

// Extract fetches a team page and its logo File page and assembles the
// record. Either every part is extracted or an error is returned.
func (e *Extractor) Extract(ctx context.Context, entityURL string) (*models.Record, error) {
	page, err := e.fetcher.Fetch(ctx, entityURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team page: %w", err)
	}

	team, err := e.parser.ParseTeamPage(page.HTML, pageURL(page, entityURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse team page: %w", err)
	}
	for _, rowErr := range team.SkippedRows {
		logging.L().Warnf("Skipping roster row of %s: %v", team.DisplayName, rowErr)
	}

	filePage, err := e.fetcher.Fetch(ctx, team.LogoPageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo page of %s: %w", team.DisplayName, err)
	}

	logoURL, err := e.parser.ParseFilePage(filePage.HTML, pageURL(filePage, team.LogoPageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse logo page of %s: %w", team.DisplayName, err)
	}

	return &models.Record{
		Identity: models.Identity{
			DisplayName: team.DisplayName,
			UniqueID:    e.ids.NewID(),
		},
		ProfileFields: team.ProfileFields,
		Roster:        team.Roster,
		LogoReference: logoURL,
		SourceURL:     entityURL,
	}, nil
}

// PooledExtract returns an ExtractFunc that holds one pool session for all
// page fetches of a team
func PooledExtract(pool *fetcher.Pool, ids IDGenerator) ExtractFunc {
	return func(ctx context.Context, entityURL string) (*models.Record, error) {
		var record *models.Record
		err := pool.WithSession(ctx, func(f fetcher.Fetcher) error {
			var err error
			record, err = NewExtractor(f, ids).Extract(ctx, entityURL)
			return err
		})
		return record, err
	}
}
