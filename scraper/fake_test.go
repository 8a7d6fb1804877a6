package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"liquipedia-scraper/fetcher"
)

const (
	wikiBase  = "https://liquipedia.net/leagueoflegends/"
	portalURL = wikiBase + "Portal:Teams"
)

// fakeFetcher serves canned pages by URL
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	delays map[string]time.Duration
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]string), delays: make(map[string]time.Duration)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	f.mu.Lock()
	html, ok := f.pages[url]
	delay := f.delays[url]
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &fetcher.FetchError{URL: url, Err: ctx.Err()}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &fetcher.FetchError{URL: url, Err: err}
	}
	if !ok {
		return nil, &fetcher.FetchError{URL: url, StatusCode: 404, Err: errors.New("not found")}
	}
	return &fetcher.Page{URL: url, HTML: html}, nil
}

func (f *fakeFetcher) Close() error {
	return nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// addTeam registers a team page and its logo File page
func (f *fakeFetcher) addTeam(name string) string {
	f.pages[wikiBase+name] = teamHTML(name)
	f.pages[wikiBase+"File:"+name+".png"] = filePageHTML(name)
	return wikiBase + name
}

func teamHTML(name string) string {
	return fmt.Sprintf(`<html><body>
<h1 id="firstHeading">%[1]s</h1>
<div id="mw-content-text">
<div class="fo-nttax-infobox">
	<div class="infobox-image"><a href="/leagueoflegends/File:%[1]s.png" class="image"><img src="thumb.png"></a></div>
	<div class="infobox-cell-2">Region:</div><div class="infobox-cell-2">&nbsp;Korea</div>
	<div class="infobox-cell-2">Approx. Total Winnings:</div><div class="infobox-cell-2">$10,000</div>
</div>
<div class="table-responsive"><table>
	<tr class="Player"><td>%[1]s Mid</td><td>(Mid Laner)</td><td>Position:&nbsp;Mid</td><td>Join Date:&nbsp;2020-01-01 [1]</td></tr>
</table></div>
</div>
</body></html>`, name)
}

func filePageHTML(name string) string {
	return fmt.Sprintf(`<html><body><div id="mw-content-text">
<div class="fullMedia"><a href="/commons/images/%s.png" class="internal">Original file</a></div>
</div></body></html>`, name)
}

// portalHTML builds a portal page; each region lists its team names
func portalHTML(regions []string, teams map[string][]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="mw-content-text">`)
	for _, region := range regions {
		fmt.Fprintf(&b, `<div class="panel-box-heading">%s</div><div class="panel-box-body">`, region)
		for _, team := range teams[region] {
			fmt.Fprintf(&b, `<span class="team-template-team-standard"><a href="/leagueoflegends/%s">%s</a></span>`, team, team)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
