package scraping

import (
	"strings"

	"github.com/leadcomb/lead-comb/app/scraper"
)

// Filters narrows a fetched candidate set before persistence. Nil pointer
// fields and empty slices mean the corresponding check is not applied.
type Filters struct {
	MinFollowers    *int     `json:"minFollowers,omitempty"`
	MaxFollowers    *int     `json:"maxFollowers,omitempty"`
	MustBeBusiness  bool     `json:"mustBeBusiness,omitempty"`
	MustBeVerified  bool     `json:"mustBeVerified,omitempty"`
	Locations       []string `json:"locations,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	ExcludeKeywords []string `json:"excludeKeywords,omitempty"`
}

// ApplyFilters returns the candidates passing every configured check. Bounds
// are inclusive; location and keyword matching is a case-insensitive
// substring test with OR semantics across the listed values.
func ApplyFilters(candidates []scraper.Candidate, filters *Filters) []scraper.Candidate {
	if filters == nil {
		return candidates
	}

	out := make([]scraper.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if matches(&c, filters) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c *scraper.Candidate, f *Filters) bool {
	if f.MinFollowers != nil && c.FollowerCount < *f.MinFollowers {
		return false
	}
	if f.MaxFollowers != nil && c.FollowerCount > *f.MaxFollowers {
		return false
	}
	if f.MustBeBusiness && !c.IsBusiness {
		return false
	}
	if f.MustBeVerified && !c.IsVerified {
		return false
	}

	if len(f.Locations) > 0 && !containsAny(c.Location, f.Locations) {
		return false
	}
	if len(f.Keywords) > 0 && !containsAny(c.Bio, f.Keywords) {
		return false
	}
	for _, kw := range f.ExcludeKeywords {
		if kw != "" && strings.Contains(strings.ToLower(c.Bio), strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	haystack = strings.ToLower(haystack)
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
