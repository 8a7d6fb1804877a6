package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Run represents one stored scrape
type Run struct {
	ID           int
	RegionsCount int
	LinksCount   int
	TeamsCount   int
	SkippedCount int
	CreatedAt    time.Time
}

// Team represents a team row of a run
type Team struct {
	ID             int
	RunID          int
	Region         string
	RegionPosition int
	UniqueID       uuid.UUID
	DisplayName    string
	Profile        map[string]any
	LogoURL        string
	SourceURL      string
}

// RosterRow represents one player of a stored team
type RosterRow struct {
	Position string
	PlayerID string
	Name     string
	JoinDate string
}

// WriteDocument stores result as a new run. All rows of the run are written
// in one transaction.
func (db *DB) WriteDocument(ctx context.Context, result *models.AggregateResult) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO `+Schema+`.scrape_runs (regions_count, links_count, teams_count, skipped_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, result.Stats.Regions, result.Stats.Links, result.Len(), result.Stats.Skipped).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	teamIDs := make([][]int, len(result.Regions))
	for r, region := range result.Regions {
		for i, record := range region.Records {
			profile, err := json.Marshal(record.ProfileFields)
			if err != nil {
				return fmt.Errorf("failed to marshal profile of %s: %w", record.Identity.DisplayName, err)
			}

			var teamID int
			err = tx.QueryRowContext(ctx, `
				INSERT INTO `+Schema+`.teams (run_id, region, region_position, unique_id, display_name, profile, logo_url, source_url)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id
			`, runID, region.Name, i, record.Identity.UniqueID, record.Identity.DisplayName, string(profile),
				record.LogoReference, record.SourceURL).Scan(&teamID)
			if err != nil {
				return fmt.Errorf("failed to insert team %s: %w", record.Identity.DisplayName, err)
			}
			teamIDs[r] = append(teamIDs[r], teamID)
		}
	}

	if err := copyRoster(ctx, tx, result, teamIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	logging.L().Infof("Saved run %d with %d teams to database", runID, result.Len())
	return nil
}

// copyRoster bulk loads all roster rows with COPY
func copyRoster(ctx context.Context, tx *sql.Tx, result *models.AggregateResult, teamIDs [][]int) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(Schema, "team_roster", "team_id", "position", "player_id", "name", "join_date"))
	if err != nil {
		return fmt.Errorf("failed to prepare roster copy: %w", err)
	}
	defer stmt.Close()

	for r, region := range result.Regions {
		for i, record := range region.Records {
			for _, row := range rosterRows(record.Roster) {
				if _, err := stmt.ExecContext(ctx, teamIDs[r][i], row.Position, row.PlayerID, row.Name, row.JoinDate); err != nil {
					return fmt.Errorf("failed to copy roster of %s: %w", record.Identity.DisplayName, err)
				}
			}
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to flush roster copy: %w", err)
	}
	return nil
}

// rosterRows flattens a roster sorted by position
func rosterRows(roster map[string]models.RosterEntry) []RosterRow {
	rows := make([]RosterRow, 0, len(roster))
	for position, entry := range roster {
		rows = append(rows, RosterRow{Position: position, PlayerID: entry.ID, Name: entry.Name, JoinDate: entry.JoinDate})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows
}

// GetLatestRun returns the most recent run, or nil when there is none
func (db *DB) GetLatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, regions_count, links_count, teams_count, skipped_count, created_at
		FROM `+Schema+`.scrape_runs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&run.ID, &run.RegionsCount, &run.LinksCount, &run.TeamsCount, &run.SkippedCount, &run.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetTeamsByRunID returns the teams of a run in region and page order
func (db *DB) GetTeamsByRunID(ctx context.Context, runID int) ([]Team, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, run_id, region, region_position, unique_id, display_name, profile, logo_url, source_url
		FROM `+Schema+`.teams
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var team Team
		var profile []byte
		if err := rows.Scan(&team.ID, &team.RunID, &team.Region, &team.RegionPosition, &team.UniqueID,
			&team.DisplayName, &profile, &team.LogoURL, &team.SourceURL); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(profile, &team.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile of team %d: %w", team.ID, err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// GetRoster returns the roster of a stored team sorted by position
func (db *DB) GetRoster(ctx context.Context, teamID int) ([]RosterRow, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT position, player_id, name, join_date
		FROM `+Schema+`.team_roster
		WHERE team_id = $1
		ORDER BY position
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []RosterRow
	for rows.Next() {
		var row RosterRow
		if err := rows.Scan(&row.Position, &row.PlayerID, &row.Name, &row.JoinDate); err != nil {
			return nil, err
		}
		roster = append(roster, row)
	}
	return roster, rows.Err()
}
