package models

import "github.com/google/uuid"

// Region is one labeled panel on the portal page with its team pages in document order
type Region struct {
	Name  string
	Links []string
}

// Identity names a team and carries the identifier assigned during this run.
// UniqueID is not stable across runs.
type Identity struct {
	DisplayName string    `json:"displayName"`
	UniqueID    uuid.UUID `json:"uniqueId"`
}

// RosterEntry is one player row of a team roster
type RosterEntry struct {
	ID       string `json:"ID"`
	Name     string `json:"Name"`
	JoinDate string `json:"JoinDate"`
}

// Record is everything extracted from one team page
type Record struct {
	Identity      Identity               `json:"Identity"`
	ProfileFields map[string]any         `json:"ProfileFields"`
	Roster        map[string]RosterEntry `json:"Roster"`
	LogoReference string                 `json:"LogoReference"`
	SourceURL     string                 `json:"SourceURL"`
}

// LinkCount returns the total number of team links across regions
func LinkCount(regions []Region) int {
	n := 0
	for _, r := range regions {
		n += len(r.Links)
	}
	return n
}
