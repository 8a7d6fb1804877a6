package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// CredentialsEnv holds service account JSON when no credentials file is configured
const CredentialsEnv = "GOOGLE_SHEETS_CREDENTIALS"

// profileColumns are the infobox fields given their own column, in order
var profileColumns = []string{
	"Location",
	"Region",
	"Coach",
	"Head Coach",
	"Manager",
	"Team Captain",
	"Sponsor(s)",
	"Approx. Total Winnings ($)",
	"Created",
}

// Writer handles writing teams to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	now           func() time.Time
}

// NewWriter creates a new Google Sheets writer
func NewWriter(ctx context.Context, spreadsheetID string, credentialsPath string) (*Writer, error) {
	// Read credentials from file or environment variable
	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv(CredentialsEnv))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: %s environment variable is empty or not set", CredentialsEnv)
		}
		logging.L().Infof("Reading credentials from %s environment variable (%d bytes)", CredentialsEnv, len(credsEnv))
		credsJSON = []byte(credsEnv)
	}

	if err := validateCredentials(credsJSON); err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		now:           time.Now,
	}, nil
}

// validateCredentials checks that creds is a service account key
func validateCredentials(credsJSON []byte) error {
	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}
	return nil
}

// WriteDocument adds a new sheet for this run in front of the older ones
// and writes one row per team
func (w *Writer) WriteDocument(ctx context.Context, result *models.AggregateResult) error {
	sheetName := fmt.Sprintf("Teams_%s", w.now().Format("20060102_150405"))
	name, sheetID, err := w.CreateSheetAndWriteTeams(ctx, sheetName, result)
	if err != nil {
		return err
	}
	logging.L().Infof("Spreadsheet updated: sheet '%s' at %s", name, w.SheetURL(sheetID))
	return nil
}

// CreateSheetAndWriteTeams creates a new sheet at index 0 and writes the
// teams of result to it. Returns the sheet name and sheet ID (gid).
func (w *Writer) CreateSheetAndWriteTeams(ctx context.Context, sheetName string, result *models.AggregateResult) (string, int64, error) {
	// Sanitize sheet name (Google Sheets has restrictions)
	sheetName = sanitizeSheetName(sheetName)
	if len(sheetName) > 100 {
		sheetName = sheetName[:100]
	}

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: sheetName,
						Index: 0,
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}
	logging.L().Infof("Created sheet '%s' with ID %d", sheetName, sheetID)

	valueRange := &sheets.ValueRange{
		Values: buildRows(result),
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, fmt.Sprintf("%s!A1", sheetName), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	logging.L().Infof("Successfully wrote %d teams to sheet '%s'", result.Len(), sheetName)
	return sheetName, sheetID, nil
}

// SheetURL creates a URL that opens a specific sheet in the spreadsheet
func (w *Writer) SheetURL(sheetID int64) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", w.spreadsheetID, sheetID)
}

// buildRows lays out result as a header plus one row per team
func buildRows(result *models.AggregateResult) [][]interface{} {
	header := []interface{}{"Region", "Team", "ID"}
	for _, col := range profileColumns {
		header = append(header, col)
	}
	header = append(header, "Roster", "Logo", "Source")

	values := [][]interface{}{header}
	for _, region := range result.Regions {
		for _, record := range region.Records {
			row := []interface{}{region.Name, record.Identity.DisplayName, record.Identity.UniqueID.String()}
			for _, col := range profileColumns {
				row = append(row, formatField(record.ProfileFields[col]))
			}
			row = append(row, formatRoster(record.Roster), record.LogoReference, record.SourceURL)
			values = append(values, row)
		}
	}
	return values
}

// formatField renders a profile value as a single cell
func formatField(v any) interface{} {
	switch value := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(value, ", ")
	default:
		return value
	}
}

// formatRoster renders the roster as "Position: ID (Name)" lines sorted by position
func formatRoster(roster map[string]models.RosterEntry) string {
	positions := make([]string, 0, len(roster))
	for position := range roster {
		positions = append(positions, position)
	}
	sort.Strings(positions)

	lines := make([]string, 0, len(positions))
	for _, position := range positions {
		entry := roster[position]
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", position, entry.ID, entry.Name))
	}
	return strings.Join(lines, "\n")
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ]
	invalidChars := []string{"/", "\\", "?", "*", "[", "]"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// Handle various URL formats:
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
