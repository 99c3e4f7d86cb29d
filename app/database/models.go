package database

import (
	"encoding/json"
	"time"
)

// Contact represents a deduplicated scraped contact record. The identity key
// is (UserID, Platform, PlatformUserID); re-scraping the same identity
// updates the existing row.
type Contact struct {
	ID             string
	UserID         string
	Platform       string
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

	ScrapingSource   string
	ScrapingQuery    string
	ValidationStatus string

	ScrapedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validation statuses for contacts.
const (
	ValidationPending = "pending"
	ValidationValid   = "valid"
	ValidationInvalid = "invalid"
	ValidationUnknown = "unknown"
)

// Tag is a named label scoped to a user. (UserID, Name) is unique.
type Tag struct {
	ID            string
	UserID        string
	Name          string
	Color         string
	Description   string
	IsSystem      bool
	ContactsCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TagRelation links one contact to one tag. At most one relation exists per
// (ContactID, TagID) pair.
type TagRelation struct {
	ContactID  string
	TagID      string
	Confidence float64
	Source     string
	CreatedAt  time.Time
}

// ContactTag is a tag joined with its relation attributes, as returned for a
// single contact.
type ContactTag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	Confidence  float64   `json:"confidence"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ComplianceSettings holds per (UserID, Platform) rate and policy
// configuration. Rows are created lazily with platform defaults.
type ComplianceSettings struct {
	ID       string `json:"id"`
	UserID   string `json:"-"`
	Platform string `json:"platform"`

	MaxRequestsPerHour int `json:"maxRequestsPerHour"`
	MaxRequestsPerDay  int `json:"maxRequestsPerDay"`

	RespectRobotsTxt      bool `json:"respectRobotsTxt"`
	AvoidPrivateProfiles  bool `json:"avoidPrivateProfiles"`
	AvoidSensitiveContent bool `json:"avoidSensitiveContent"`
	DataRetentionDays     int  `json:"dataRetentionDays"`
	RequireConsent        bool `json:"requireConsent"`

	TotalRequests int `json:"totalRequests"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScrapingLog is an append-only audit record of one (platform, scrapingType,
// query) attempt.
type ScrapingLog struct {
	ID           string `json:"id"`
	UserID       string `json:"-"`
	Platform     string `json:"platform"`
	ScrapingType string `json:"scrapingType"`
	Query        string `json:"query"`

	ContactsFound int           `json:"contactsFound"`
	ContactsSaved int           `json:"contactsSaved"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
	ResponseTime  time.Duration `json:"responseTimeNs"`

	CreatedAt time.Time `json:"createdAt"`
}

// Scraping log statuses.
const (
	LogStatusSuccess        = "success"
	LogStatusPartialSuccess = "partial_success"
)

// Campaign is a saved scraping configuration that can be run on demand or on
// a schedule.
type Campaign struct {
	ID            string          `json:"id"`
	UserID        string          `json:"-"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Platforms     []string        `json:"platforms"`
	ScrapingType  string          `json:"scrapingType"`
	TargetQueries []string        `json:"targetQueries"`
	Filters       json.RawMessage `json:"filters"`
	Schedule      string          `json:"schedule,omitempty"`
	Status        string          `json:"status"`
	ContactsFound int             `json:"contactsFound"`
	LastRunAt     *time.Time      `json:"lastRunAt,omitempty"`
	NextRunAt     *time.Time      `json:"nextRunAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Campaign statuses.
const (
	CampaignStatusDraft          = "draft"
	CampaignStatusActive         = "active"
	CampaignStatusCompleted      = "completed"
	CampaignStatusPartialSuccess = "partial_success"
)

// Campaign schedules. An empty schedule means manual-only.
const (
	ScheduleHourly = "hourly"
	ScheduleDaily  = "daily"
)

// PlatformStat is a per-platform aggregate over a user's contacts.
type PlatformStat struct {
	Platform      string  `json:"platform"`
	Count         int     `json:"count"`
	AvgFollowers  float64 `json:"avgFollowers"`
	AvgEngagement float64 `json:"avgEngagement"`
}

// ActivityStat is a per-day aggregate over a user's scraping logs.
type ActivityStat struct {
	Date          string `json:"date"`
	Requests      int    `json:"requests"`
	ContactsFound int    `json:"contactsFound"`
}
