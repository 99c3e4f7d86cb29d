package database

import (
	"time"
)

// ContactListOptions controls the contact listing read path.
type ContactListOptions struct {
	Platform  string
	Tags      []string
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ExportFilter selects contacts for the export read path.
type ExportFilter struct {
	Platforms    []string
	Tags         []string
	MinFollowers *int
	MaxFollowers *int
	IsVerified   *bool
	IsBusiness   *bool
	Location     string
	Category     string
	Start        *time.Time
	End          *time.Time
}

// LogListOptions controls the scraping log listing read path.
type LogListOptions struct {
	Platform string
	Status   string
	Page     int
	Limit    int
}

// CampaignListOptions controls the campaign listing read path.
type CampaignListOptions struct {
	Status string
	Page   int
	Limit  int
}

type ContactRepository interface {
	GetByIdentity(userID, platform, platformUserID string) (*Contact, error)
	GetByID(id string) (*Contact, error)
	Insert(contact *Contact) error
	Update(contact *Contact) error
	List(userID string, opts ContactListOptions) ([]Contact, int, error)
	ListForExport(userID string, filter ExportFilter) ([]Contact, error)
	CountByUser(userID string) (int, error)
	PlatformStats(userID string) ([]PlatformStat, error)
}

type TagRepository interface {
	// GetOrCreate atomically inserts the tag if absent and returns the
	// existing or new row. A concurrent creator always ends up with the
	// first creator's row.
	GetOrCreate(userID, name, color, description string) (*Tag, error)
	GetByID(id string) (*Tag, error)
	ListByUser(userID string) ([]Tag, error)
	Delete(id string) error

	HasRelation(contactID, tagID string) (bool, error)
	InsertRelation(rel *TagRelation) error
	// DeleteRelation reports whether a relation row was actually deleted.
	DeleteRelation(contactID, tagID string) (bool, error)
	DeleteRelationsByTag(tagID string) error
	AdjustContactsCount(tagID string, delta int) error
	ListByContact(contactID string) ([]ContactTag, error)
}

type ComplianceRepository interface {
	// Get returns nil (not an error) when no row exists for the pair.
	Get(userID, platform string) (*ComplianceSettings, error)
	Insert(settings *ComplianceSettings) error
	Update(settings *ComplianceSettings) error
	IncrementTotalRequests(userID, platform string, n int) error
}

type ScrapingLogRepository interface {
	Insert(log *ScrapingLog) error
	CountSince(userID, platform string, since time.Time) (int, error)
	List(userID string, opts LogListOptions) ([]ScrapingLog, int, error)
	DailyActivity(userID string, since time.Time) ([]ActivityStat, error)
}

type CampaignRepository interface {
	Insert(campaign *Campaign) error
	Update(campaign *Campaign) error
	GetByID(userID, id string) (*Campaign, error)
	List(userID string, opts CampaignListOptions) ([]Campaign, int, error)
	// ListDue returns scheduled campaigns whose next run time has passed.
	ListDue(now time.Time) ([]Campaign, error)
}
