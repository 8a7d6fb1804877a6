package filter

import (
	"strings"

	"liquipedia-scraper/models"
)

// Filter restricts a run to an allowlist of regions
type Filter struct {
	allowed map[string]bool
}

// NewFilter creates a new Filter instance. An empty allowlist keeps every region.
func NewFilter(regions []string) *Filter {
	allowed := make(map[string]bool)
	for _, r := range regions {
		if key := normalize(r); key != "" {
			allowed[key] = true
		}
	}
	return &Filter{
		allowed: allowed,
	}
}

// ApplyFilters returns the regions on the allowlist, keeping portal order
func (f *Filter) ApplyFilters(regions []models.Region) []models.Region {
	if len(f.allowed) == 0 {
		return regions
	}

	filtered := make([]models.Region, 0, len(f.allowed))
	for _, region := range regions {
		if f.matchesFilters(region) {
			filtered = append(filtered, region)
		}
	}

	return filtered
}

// Missing returns allowlisted names that do not appear in regions
func (f *Filter) Missing(regions []models.Region) []string {
	seen := make(map[string]bool)
	for _, region := range regions {
		seen[normalize(region.Name)] = true
	}

	var missing []string
	for name := range f.allowed {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// matchesFilters checks if a region is on the allowlist, ignoring case
func (f *Filter) matchesFilters(region models.Region) bool {
	return f.allowed[normalize(region.Name)]
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
