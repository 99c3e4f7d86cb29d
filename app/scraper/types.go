package scraper

import (
	"context"
	"fmt"
)

// Candidate is one raw contact record produced by a platform source, typed
// at the boundary where it enters the pipeline. Missing numeric fields are
// defaulted; a candidate without a PlatformUserID is unusable.
type Candidate struct {
	PlatformUserID string

	Username    string
	DisplayName string
	ProfileURL  string
	AvatarURL   string
	Bio         string
	Email       string
	Phone       string
	Website     string
	Location    string
	Category    string

	FollowerCount  int
	FollowingCount int
	PostCount      int
	EngagementRate *float64

	IsVerified bool
	IsBusiness bool

	Tags          []string
	ScrapingQuery string
}

// Normalize coerces out-of-range values instead of propagating them: counts
// are clamped to zero and the engagement rate to the 0-100 percent range.
func (c *Candidate) Normalize() {
	if c.FollowerCount < 0 {
		c.FollowerCount = 0
	}
	if c.FollowingCount < 0 {
		c.FollowingCount = 0
	}
	if c.PostCount < 0 {
		c.PostCount = 0
	}
	if c.EngagementRate != nil {
		if *c.EngagementRate < 0 {
			*c.EngagementRate = 0
		} else if *c.EngagementRate > 100 {
			*c.EngagementRate = 100
		}
	}
}

// Options tunes a single fetch.
type Options struct {
	Limit int
}

// Source produces raw candidate contacts for a (platform, scrapingType,
// query) triple. Implementations may fail per call; the caller treats each
// failure as scoped to that query.
type Source interface {
	Fetch(ctx context.Context, platform, scrapingType, query string, opts Options) ([]Candidate, error)
}

// FetchError wraps a failure of one fetch call.
type FetchError struct {
	Platform     string
	ScrapingType string
	Query        string
	Err          error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s fetch for %q failed: %v", e.Platform, e.ScrapingType, e.Query, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
