package api

import (
	"time"

	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/scraping"
)

type scrapeRequest struct {
	Platform     string            `json:"platform" binding:"required"`
	ScrapingType string            `json:"scrapingType" binding:"required"`
	Queries      []string          `json:"queries"`
	Limit        int               `json:"limit"`
	Filters      *scraping.Filters `json:"filters"`
}

type bulkTagRequest struct {
	ContactIDs []string `json:"contactIds" binding:"required"`
	TagName    string   `json:"tagName" binding:"required"`
	Color      string   `json:"color"`
}

type addTagRequest struct {
	TagName string `json:"tagName" binding:"required"`
	Color   string `json:"color"`
}

type campaignRequest struct {
	Name          string            `json:"name" binding:"required"`
	Description   string            `json:"description"`
	Platforms     []string          `json:"platforms" binding:"required"`
	ScrapingType  string            `json:"scrapingType" binding:"required"`
	TargetQueries []string          `json:"targetQueries" binding:"required"`
	Filters       *scraping.Filters `json:"filters"`
	Schedule      string            `json:"schedule"`
}

type exportFilterRequest struct {
	Platforms    []string   `json:"platforms"`
	Tags         []string   `json:"tags"`
	MinFollowers *int       `json:"minFollowers"`
	MaxFollowers *int       `json:"maxFollowers"`
	IsVerified   *bool      `json:"isVerified"`
	IsBusiness   *bool      `json:"isBusiness"`
	Location     string     `json:"location"`
	Category     string     `json:"category"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
}

func (r *exportFilterRequest) toFilter() database.ExportFilter {
	if r == nil {
		return database.ExportFilter{}
	}
	return database.ExportFilter{
		Platforms:    r.Platforms,
		Tags:         r.Tags,
		MinFollowers: r.MinFollowers,
		MaxFollowers: r.MaxFollowers,
		IsVerified:   r.IsVerified,
		IsBusiness:   r.IsBusiness,
		Location:     r.Location,
		Category:     r.Category,
		Start:        r.Start,
		End:          r.End,
	}
}

type exportRequest struct {
	Format           string               `json:"format" binding:"required"`
	Fields           []string             `json:"fields"`
	IncludeAnalytics bool                 `json:"includeAnalytics"`
	Filter           *exportFilterRequest `json:"filter"`
}

type previewRequest struct {
	Fields []string             `json:"fields"`
	Filter *exportFilterRequest `json:"filter"`
}

type complianceUpdateRequest struct {
	MaxRequestsPerHour    *int  `json:"maxRequestsPerHour"`
	MaxRequestsPerDay     *int  `json:"maxRequestsPerDay"`
	RespectRobotsTxt      *bool `json:"respectRobotsTxt"`
	AvoidPrivateProfiles  *bool `json:"avoidPrivateProfiles"`
	AvoidSensitiveContent *bool `json:"avoidSensitiveContent"`
	DataRetentionDays     *int  `json:"dataRetentionDays"`
	RequireConsent        *bool `json:"requireConsent"`
}
