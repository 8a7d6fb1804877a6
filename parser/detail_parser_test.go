package parser

import (
	"errors"
	"strings"
	"testing"

	"liquipedia-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamPageURL = "https://liquipedia.net/leagueoflegends/T1"

const teamPageHTML = `<!DOCTYPE html>
<html><body>
<h1 id="firstHeading" class="firstHeading"><span dir="auto">T1</span></h1>
<div id="mw-content-text" class="mw-body-content">
<div class="fo-nttax-infobox-wrapper">
<div class="fo-nttax-infobox">
	<div class="infobox-image"><a href="/leagueoflegends/File:T1_2019_full_lightmode.png" class="image"><img src="/commons/images/thumb/t1.png"></a></div>
	<div class="infobox-cell-2 infobox-description">Location:</div><div class="infobox-cell-2"><span class="flag"><img alt="South Korea"></span>&nbsp;South Korea</div>
	<div class="infobox-cell-2 infobox-description">Region:</div><div class="infobox-cell-2">&nbsp;Korea</div>
	<div class="infobox-cell-2 infobox-description">Coach:</div><div class="infobox-cell-2"><span class="flag"><img alt="KR"></span>&nbsp;<a href="/leagueoflegends/kkOma">kkOma</a><br><span class="flag"><img alt="KR"></span>&nbsp;<a href="/leagueoflegends/Tom">Tom</a></div>
	<div class="infobox-cell-2 infobox-description">Manager:</div><div class="infobox-cell-2"><span class="flag"><img alt="KR"></span>&nbsp;<a href="/leagueoflegends/Ahn">Ahn Byeong-hun</a></div>
	<div class="infobox-cell-2 infobox-description">Abbreviation:</div><div class="infobox-cell-2">T1</div>
	<div class="infobox-cell-2 infobox-description">Approx. Total Winnings:</div><div class="infobox-cell-2">$1,234,567</div>
	<div class="infobox-cell-2 infobox-description">Created:</div><div class="infobox-cell-2">Team page created on 2015-03-02</div>
	<div class="infobox-cell-2 infobox-description">Links:</div>
</div>
</div>
<h3>Active Squad</h3>
<div class="table-responsive">
<table class="wikitable roster-card">
	<tr><th>ID</th><th>Name</th><th>Position</th><th>Join Date</th></tr>
	<tr class="Player"><td class="ID">&nbsp;<a href="/leagueoflegends/Zeus">Zeus</a></td><td class="Name">(Choi Woo-je)</td><td class="Position"><span class="MobileStuff">Position:&nbsp;</span>Top</td><td class="Date"><span class="MobileStuff">Join Date:&nbsp;</span>2022-11-21 <sup>[1]</sup></td></tr>
	<tr class="Player"><td class="ID">&nbsp;<a href="/leagueoflegends/Oner">Oner</a></td><td class="Name">(Mun Hyeon-jun)</td><td class="Position"><span class="MobileStuff">Position:&nbsp;</span>Jungle</td><td class="Date"><span class="MobileStuff">Join Date:&nbsp;</span>2019-11-20 <sup>[2]</sup></td></tr>
	<tr class="Player"><td class="ID">&nbsp;<a href="/leagueoflegends/Faker">Faker</a></td><td class="Name">(Lee Sang-hyeok)</td><td class="Position"><span class="MobileStuff">Position:&nbsp;</span>Mid</td><td class="Date"><span class="MobileStuff">Join Date:&nbsp;</span>2013-02-13 <sup>[3]</sup></td></tr>
	<tr class="Player"><td class="ID">&nbsp;<a href="/leagueoflegends/Gumayusi">Gumayusi</a></td><td class="Name">(Lee Min-hyeong)</td><td class="Position"><span class="MobileStuff">Position:&nbsp;</span>Bot</td><td class="Date"><span class="MobileStuff">Join Date:&nbsp;</span>2017-11-17 <sup>[4]</sup></td></tr>
	<tr class="Player"><td class="ID">&nbsp;<a href="/leagueoflegends/Keria">Keria</a></td><td class="Name">(Ryu Min-seok)</td><td class="Position"><span class="MobileStuff">Position:&nbsp;</span>Support</td><td class="Date"><span class="MobileStuff">Join Date:&nbsp;</span>2020-11-27 <sup>[5]</sup></td></tr>
</table>
</div>
</div>
</body></html>`

const filePageURL = "https://liquipedia.net/leagueoflegends/File:T1_2019_full_lightmode.png"

const filePageHTML = `<html><body>
<h1 id="firstHeading">File:T1 2019 full lightmode.png</h1>
<div id="mw-content-text">
<div class="fullImageLink" id="file"><a href="/commons/images/a/a2/T1_2019_full_lightmode.png"><img src="/commons/images/thumb/a/a2/T1.png"></a></div>
<div class="fullMedia"><p><a href="/commons/images/a/a2/T1_2019_full_lightmode.png" class="internal">Original file</a></p></div>
</div>
</body></html>`

func TestParseTeamPage(t *testing.T) {
	page, err := NewDetailParser().ParseTeamPage(teamPageHTML, teamPageURL)
	require.NoError(t, err)

	assert.Equal(t, "T1", page.DisplayName)
	assert.Equal(t, "https://liquipedia.net/leagueoflegends/File:T1_2019_full_lightmode.png", page.LogoPageURL)
	assert.Empty(t, page.SkippedRows)

	assert.Equal(t, map[string]any{
		"Location":        "South Korea",
		"Region":          "Korea",
		"Coach":           []string{"kkOma", "Tom"},
		"Manager":         []string{"Ahn Byeong-hun"},
		WinningsOutputKey: 1234567,
		"Created":         "2015-03-02",
	}, page.ProfileFields)

	assert.Equal(t, map[string]models.RosterEntry{
		"Top":     {ID: "Zeus", Name: "Choi Woo-je", JoinDate: "2022-11-21"},
		"Jungle":  {ID: "Oner", Name: "Mun Hyeon-jun", JoinDate: "2019-11-20"},
		"Mid":     {ID: "Faker", Name: "Lee Sang-hyeok", JoinDate: "2013-02-13"},
		"Bot":     {ID: "Gumayusi", Name: "Lee Min-hyeong", JoinDate: "2017-11-17"},
		"Support": {ID: "Keria", Name: "Ryu Min-seok", JoinDate: "2020-11-27"},
	}, page.Roster)
}

func TestParseTeamPage_RosterKeys(t *testing.T) {
	page, err := NewDetailParser().ParseTeamPage(teamPageHTML, teamPageURL)
	require.NoError(t, err)

	require.Len(t, page.Roster, 5)
	for position := range page.Roster {
		if strings.Contains(position, "Position:") {
			t.Errorf("roster key %q still carries the label prefix", position)
		}
	}
}

func TestParseTeamPage_StructureErrors(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		element string
	}{
		{
			name:    "missing content root",
			html:    strings.Replace(teamPageHTML, `id="mw-content-text"`, `id="content"`, 1),
			element: "content root",
		},
		{
			name:    "missing heading",
			html:    strings.Replace(teamPageHTML, `<h1 id="firstHeading" class="firstHeading"><span dir="auto">T1</span></h1>`, "", 1),
			element: "heading",
		},
		{
			name:    "missing infobox",
			html:    strings.ReplaceAll(teamPageHTML, "fo-nttax-infobox", "sidebar"),
			element: "infobox",
		},
		{
			name:    "missing roster table",
			html:    strings.Replace(teamPageHTML, "table-responsive", "table-plain", 1),
			element: "roster table",
		},
		{
			name:    "missing logo link",
			html:    strings.Replace(teamPageHTML, `<a href="/leagueoflegends/File:T1_2019_full_lightmode.png" class="image">`, `<a class="image">`, 1),
			element: "logo link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewDetailParser().ParseTeamPage(tt.html, teamPageURL)
			require.Error(t, err)
			assert.Nil(t, page)

			var structErr *PageStructureError
			require.True(t, errors.As(err, &structErr), "got %T: %v", err, err)
			assert.Equal(t, teamPageURL, structErr.URL)
			assert.Contains(t, structErr.Element, tt.element)
		})
	}
}

func TestParseTeamPage_FieldErrors(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		key  string
	}{
		{"winnings not a number", "$1,234,567", "TBD", WinningsKey},
		{"winnings empty", "<div class=\"infobox-cell-2\">$1,234,567</div>", "<div class=\"infobox-cell-2\">&nbsp;</div>", WinningsKey},
		{"created too short", "Team page created on 2015-03-02", "2015", CreatedKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := strings.Replace(teamPageHTML, tt.from, tt.to, 1)
			_, err := NewDetailParser().ParseTeamPage(html, teamPageURL)
			require.Error(t, err)

			var fieldErr *FieldParseError
			require.True(t, errors.As(err, &fieldErr), "got %T: %v", err, err)
			assert.Equal(t, tt.key, fieldErr.Key)
		})
	}
}

func TestParseTeamPage_FallbackSelectors(t *testing.T) {
	html := strings.ReplaceAll(teamPageHTML, `class="fo-nttax-infobox"`, `class="infobox"`)
	html = strings.Replace(html, `<h1 id="firstHeading" class="firstHeading">`, `<h1 class="page-title">`, 1)
	html = strings.Replace(html, `<div class="infobox-image">`, `<div class="logo">`, 1)

	page, err := NewDetailParser().ParseTeamPage(html, teamPageURL)
	require.NoError(t, err)
	assert.Equal(t, "T1", page.DisplayName)
	assert.Equal(t, "https://liquipedia.net/leagueoflegends/File:T1_2019_full_lightmode.png", page.LogoPageURL)
	assert.Contains(t, page.ProfileFields, "Location")
}

func TestExtractRoster(t *testing.T) {
	tests := []struct {
		name        string
		rows        string
		wantRoster  map[string]models.RosterEntry
		wantSkipped int
	}{
		{
			name: "short row skipped",
			rows: `<tr class="Player"><td>&nbsp;Faker</td><td>(Lee Sang-hyeok)</td><td>Position:&nbsp;Mid</td><td>Join Date:&nbsp;2013-02-13</td></tr>
<tr class="Player"><td>Broken</td><td>(Nobody)</td></tr>`,
			wantRoster:  map[string]models.RosterEntry{"Mid": {ID: "Faker", Name: "Lee Sang-hyeok", JoinDate: "2013-02-13"}},
			wantSkipped: 1,
		},
		{
			name: "empty position skipped",
			rows: `<tr class="Player"><td>Ghost</td><td>(Unknown)</td><td>Position:&nbsp;</td><td>Join Date:&nbsp;2020-01-01</td></tr>`,
			wantRoster:  map[string]models.RosterEntry{},
			wantSkipped: 1,
		},
		{
			name: "duplicate positions keep every player",
			rows: `<tr class="Player"><td>Faker</td><td>(Lee Sang-hyeok)</td><td>Position:&nbsp;Mid</td><td>Join Date:&nbsp;2013-02-13</td></tr>
<tr class="Player"><td>Poby</td><td>(Yoon Seong-won)</td><td>Position:&nbsp;Mid</td><td>Join Date:&nbsp;2023-05-03</td></tr>
<tr class="Player"><td>Clozer</td><td>(Lee Ju-hyeon)</td><td>Position:&nbsp;Mid</td><td>Join Date:&nbsp;2019-12-01</td></tr>`,
			wantRoster: map[string]models.RosterEntry{
				"Mid":     {ID: "Faker", Name: "Lee Sang-hyeok", JoinDate: "2013-02-13"},
				"Mid (2)": {ID: "Poby", Name: "Yoon Seong-won", JoinDate: "2023-05-03"},
				"Mid (3)": {ID: "Clozer", Name: "Lee Ju-hyeon", JoinDate: "2019-12-01"},
			},
		},
		{
			name:       "header rows ignored",
			rows:       `<tr><th>ID</th><th>Name</th><th>Position</th><th>Join Date</th></tr>`,
			wantRoster: map[string]models.RosterEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<div class="table-responsive"><table>` + tt.rows + `</table></div>`
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
			if err != nil {
				t.Fatalf("Failed to parse HTML: %v", err)
			}

			roster, skipped, err := NewDetailParser().extractRoster(doc.Selection, teamPageURL)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoster, roster)
			require.Len(t, skipped, tt.wantSkipped)

			for _, rowErr := range skipped {
				var structErr *RowStructureError
				assert.True(t, errors.As(rowErr, &structErr))
			}
		})
	}
}

func TestParseFilePage(t *testing.T) {
	dp := NewDetailParser()

	got, err := dp.ParseFilePage(filePageHTML, filePageURL)
	require.NoError(t, err)
	assert.Equal(t, "https://liquipedia.net/commons/images/a/a2/T1_2019_full_lightmode.png", got)

	fallback := strings.Replace(filePageHTML, `class="fullMedia"`, `class="media"`, 1)
	got, err = dp.ParseFilePage(fallback, filePageURL)
	require.NoError(t, err)
	assert.Equal(t, "https://liquipedia.net/commons/images/a/a2/T1_2019_full_lightmode.png", got)

	missing := strings.Replace(fallback, `class="fullImageLink"`, `class="preview"`, 1)
	_, err = dp.ParseFilePage(missing, filePageURL)
	var structErr *PageStructureError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, filePageURL, structErr.URL)
}
