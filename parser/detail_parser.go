package parser

import (
	"fmt"
	"strings"

	"liquipedia-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Infobox labels with a non-trivial transform
const (
	WinningsKey       = "Approx. Total Winnings"
	WinningsOutputKey = "Approx. Total Winnings ($)"
	CreatedKey        = "Created"
)

const (
	minRosterCells = 4
	joinDateOffset = 11
	joinDateLength = 10
	createdLength  = 10
	positionPrefix = "Position:"
)

var (
	firstHeadingSel    = cascadia.MustCompile("#firstHeading")
	h1Sel              = cascadia.MustCompile("h1")
	infoboxSel         = cascadia.MustCompile(".fo-nttax-infobox")
	infoboxFallbackSel = cascadia.MustCompile(".infobox")
	infoboxCellSel     = cascadia.MustCompile(".infobox-cell-2")
	rosterTableSel     = cascadia.MustCompile(".table-responsive")
	playerRowSel       = cascadia.MustCompile("tr.Player")
	cellSel            = cascadia.MustCompile("td")
	logoLinkSel        = cascadia.MustCompile(".infobox-image a[href]")
	imageLinkSel       = cascadia.MustCompile("a.image[href]")
	fullMediaSel       = cascadia.MustCompile(".fullMedia a[href]")
	fullImageLinkSel   = cascadia.MustCompile(".fullImageLink a[href]")
)

type fieldKind int

const (
	plainField fieldKind = iota
	peopleField
	winningsField
	createdField
)

// profileVocabulary is the fixed set of infobox labels copied into a record
var profileVocabulary = []struct {
	Key  string
	Kind fieldKind
}{
	{"Location", plainField},
	{"Region", plainField},
	{"Coach", peopleField},
	{"Head Coach", peopleField},
	{"Manager", peopleField},
	{"Team Captain", plainField},
	{"Sponsor(s)", plainField},
	{WinningsKey, winningsField},
	{CreatedKey, createdField},
}

// TeamPage holds everything read from a team page. LogoPageURL points at the
// File page, not at the image itself.
type TeamPage struct {
	DisplayName   string
	ProfileFields map[string]any
	Roster        map[string]models.RosterEntry
	LogoPageURL   string
	SkippedRows   []error
}

// DetailParser extracts team data from team pages and logo File pages
type DetailParser struct{}

// NewDetailParser creates a new DetailParser instance
func NewDetailParser() *DetailParser {
	return &DetailParser{}
}

// ParseTeamPage extracts the heading, profile, roster and logo link of a team page
func (dp *DetailParser) ParseTeamPage(htmlContent, pageURL string) (*TeamPage, error) {
	doc, root, err := parsePage(htmlContent, pageURL)
	if err != nil {
		return nil, err
	}

	name, err := dp.extractDisplayName(doc, pageURL)
	if err != nil {
		return nil, err
	}

	infobox := findFirst(root.Selection, infoboxSel, infoboxFallbackSel).First()
	if infobox.Length() == 0 {
		return nil, &PageStructureError{URL: pageURL, Element: "infobox .fo-nttax-infobox"}
	}

	profile, err := dp.extractProfile(infobox)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", pageURL, err)
	}

	roster, skipped, err := dp.extractRoster(root.Selection, pageURL)
	if err != nil {
		return nil, err
	}

	logoPage, err := dp.extractLogoLink(infobox, pageURL)
	if err != nil {
		return nil, err
	}

	return &TeamPage{
		DisplayName:   name,
		ProfileFields: profile,
		Roster:        roster,
		LogoPageURL:   logoPage,
		SkippedRows:   skipped,
	}, nil
}

// ParseFilePage returns the absolute URL of the full resolution image on a File page
func (dp *DetailParser) ParseFilePage(htmlContent, pageURL string) (string, error) {
	doc, _, err := parsePage(htmlContent, pageURL)
	if err != nil {
		return "", err
	}

	href, ok := hrefOf(findFirst(doc.Selection, fullMediaSel, fullImageLinkSel).First())
	if !ok {
		return "", &PageStructureError{URL: pageURL, Element: "full resolution link .fullMedia"}
	}
	return resolveURL(pageURL, href)
}

// extractDisplayName reads the page's primary heading
func (dp *DetailParser) extractDisplayName(doc *goquery.Document, pageURL string) (string, error) {
	heading := findFirst(doc.Selection, firstHeadingSel, h1Sel).First()
	name := normalizeWhitespace(heading.Text())
	if name == "" {
		return "", &PageStructureError{URL: pageURL, Element: "heading #firstHeading"}
	}
	return name, nil
}

// extractProfile pairs the infobox cells into label/value pairs and applies
// the transform of every recognized label
func (dp *DetailParser) extractProfile(infobox *goquery.Selection) (map[string]any, error) {
	var cells []string
	infobox.FindMatcher(infoboxCellSel).Each(func(i int, s *goquery.Selection) {
		cells = append(cells, s.Text())
	})

	values := make(map[string]string)
	for _, pair := range pairCells(cells) {
		label := stripNBSP(pair.Label)
		if _, exists := values[label]; !exists {
			values[label] = pair.Value
		}
	}

	profile := make(map[string]any)
	for _, field := range profileVocabulary {
		raw, ok := values[field.Key+":"]
		if !ok {
			continue
		}

		switch field.Kind {
		case peopleField:
			profile[field.Key] = splitNames(raw)
		case winningsField:
			amount, err := parseWinnings(raw)
			if err != nil {
				return nil, &FieldParseError{Key: field.Key, Value: raw, Err: err}
			}
			profile[WinningsOutputKey] = amount
		case createdField:
			created, err := trailingRunes(raw, createdLength)
			if err != nil {
				return nil, &FieldParseError{Key: field.Key, Value: raw, Err: err}
			}
			profile[field.Key] = created
		default:
			profile[field.Key] = stripNBSP(raw)
		}
	}

	return profile, nil
}

// extractRoster reads the active roster table. Rows that cannot be read are
// returned as errors next to the roster instead of failing the page.
func (dp *DetailParser) extractRoster(root *goquery.Selection, pageURL string) (map[string]models.RosterEntry, []error, error) {
	table := root.FindMatcher(rosterTableSel).First()
	if table.Length() == 0 {
		return nil, nil, &PageStructureError{URL: pageURL, Element: "roster table .table-responsive"}
	}

	roster := make(map[string]models.RosterEntry)
	var skipped []error

	table.FindMatcher(playerRowSel).Each(func(i int, row *goquery.Selection) {
		cells := row.ChildrenMatcher(cellSel)
		if cells.Length() < minRosterCells {
			skipped = append(skipped, &RowStructureError{URL: pageURL, Row: i + 1, Cells: cells.Length(), Want: minRosterCells})
			return
		}

		position := strings.TrimSpace(strings.TrimPrefix(normalizeWhitespace(cells.Eq(2).Text()), positionPrefix))
		if position == "" {
			skipped = append(skipped, &RowStructureError{URL: pageURL, Row: i + 1, Cells: cells.Length(), Want: minRosterCells, Reason: "empty position"})
			return
		}

		entry := models.RosterEntry{
			ID:       normalizeWhitespace(cells.Eq(0).Text()),
			Name:     normalizeWhitespace(strings.NewReplacer("(", "", ")", "").Replace(cells.Eq(1).Text())),
			JoinDate: runeWindow(normalizeWhitespace(cells.Eq(3).Text()), joinDateOffset, joinDateLength),
		}
		roster[uniqueKey(roster, position)] = entry
	})

	return roster, skipped, nil
}

// uniqueKey returns position, or position with a " (n)" suffix when the
// roster already holds a player there
func uniqueKey(roster map[string]models.RosterEntry, position string) string {
	if _, taken := roster[position]; !taken {
		return position
	}
	for n := 2; ; n++ {
		key := fmt.Sprintf("%s (%d)", position, n)
		if _, taken := roster[key]; !taken {
			return key
		}
	}
}

// extractLogoLink returns the absolute URL of the logo's File page
func (dp *DetailParser) extractLogoLink(infobox *goquery.Selection, pageURL string) (string, error) {
	href, ok := hrefOf(findFirst(infobox, logoLinkSel, imageLinkSel).First())
	if !ok {
		return "", &PageStructureError{URL: pageURL, Element: "logo link .infobox-image"}
	}
	return resolveURL(pageURL, href)
}
