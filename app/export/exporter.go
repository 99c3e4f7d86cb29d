package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/metrics"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const previewLimit = 10

// Options selects the output format and the contact fields to include. An
// empty Fields list means all known fields.
type Options struct {
	Format           string
	Fields           []string
	IncludeAnalytics bool
}

// File is a rendered export ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Field describes one exportable contact attribute.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type extractor func(*database.Contact) any

var fieldOrder = []string{
	"username", "displayName", "platform", "profileUrl", "bio",
	"email", "phone", "website", "location", "category",
	"followerCount", "followingCount", "postCount", "engagementRate",
	"isVerified", "isBusiness", "scrapingSource", "scrapingQuery",
	"validationStatus", "scrapedAt", "createdAt",
}

var fieldLabels = map[string]string{
	"username":         "Username",
	"displayName":      "Display Name",
	"platform":         "Platform",
	"profileUrl":       "Profile URL",
	"bio":              "Bio",
	"email":            "Email",
	"phone":            "Phone",
	"website":          "Website",
	"location":         "Location",
	"category":         "Category",
	"followerCount":    "Followers",
	"followingCount":   "Following",
	"postCount":        "Posts",
	"engagementRate":   "Engagement Rate",
	"isVerified":       "Verified",
	"isBusiness":       "Business",
	"scrapingSource":   "Scraping Source",
	"scrapingQuery":    "Scraping Query",
	"validationStatus": "Validation Status",
	"scrapedAt":        "Scraped At",
	"createdAt":        "Created At",
}

var extractors = map[string]extractor{
	"username":       func(c *database.Contact) any { return c.Username },
	"displayName":    func(c *database.Contact) any { return c.DisplayName },
	"platform":       func(c *database.Contact) any { return c.Platform },
	"profileUrl":     func(c *database.Contact) any { return c.ProfileURL },
	"bio":            func(c *database.Contact) any { return c.Bio },
	"email":          func(c *database.Contact) any { return c.Email },
	"phone":          func(c *database.Contact) any { return c.Phone },
	"website":        func(c *database.Contact) any { return c.Website },
	"location":       func(c *database.Contact) any { return c.Location },
	"category":       func(c *database.Contact) any { return c.Category },
	"followerCount":  func(c *database.Contact) any { return c.FollowerCount },
	"followingCount": func(c *database.Contact) any { return c.FollowingCount },
	"postCount":      func(c *database.Contact) any { return c.PostCount },
	"engagementRate": func(c *database.Contact) any {
		if c.EngagementRate == nil {
			return nil
		}
		return *c.EngagementRate
	},
	"isVerified":       func(c *database.Contact) any { return c.IsVerified },
	"isBusiness":       func(c *database.Contact) any { return c.IsBusiness },
	"scrapingSource":   func(c *database.Contact) any { return c.ScrapingSource },
	"scrapingQuery":    func(c *database.Contact) any { return c.ScrapingQuery },
	"validationStatus": func(c *database.Contact) any { return c.ValidationStatus },
	"scrapedAt":        func(c *database.Contact) any { return c.ScrapedAt },
	"createdAt":        func(c *database.Contact) any { return c.CreatedAt },
}

// Exporter renders filtered contact sets into downloadable files.
type Exporter struct {
	contactRepo database.ContactRepository
}

func NewExporter(contactRepo database.ContactRepository) *Exporter {
	return &Exporter{contactRepo: contactRepo}
}

// Fields lists every exportable field in output order.
func Fields() []Field {
	out := make([]Field, 0, len(fieldOrder))
	for _, name := range fieldOrder {
		out = append(out, Field{Name: name, Label: fieldLabels[name]})
	}
	return out
}

// Export loads the filtered contacts and renders them in the requested
// format.
func (e *Exporter) Export(userID string, filter database.ExportFilter, opts Options) (*File, error) {
	fields, err := resolveFields(opts.Fields)
	if err != nil {
		return nil, err
	}

	contacts, err := e.contactRepo.ListForExport(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts for export: %w", err)
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	var file *File
	switch opts.Format {
	case FormatCSV:
		file, err = renderCSV(contacts, fields, stamp)
	case FormatJSON:
		file, err = renderJSON(contacts, fields, opts.IncludeAnalytics, stamp)
	case FormatXLSX:
		file, err = renderXLSX(contacts, fields, stamp)
	case FormatPDF:
		file, err = renderPDF(contacts, fields, stamp)
	default:
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	metrics.ExportRuns.WithLabelValues(opts.Format).Inc()
	return file, nil
}

// Preview returns the first rows the export would contain plus the total row
// count, without rendering a file.
func (e *Exporter) Preview(userID string, filter database.ExportFilter, fieldNames []string) ([]map[string]any, int, error) {
	fields, err := resolveFields(fieldNames)
	if err != nil {
		return nil, 0, err
	}

	contacts, err := e.contactRepo.ListForExport(userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load contacts for preview: %w", err)
	}

	n := len(contacts)
	if n > previewLimit {
		n = previewLimit
	}
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, len(fields))
		for _, field := range fields {
			row[field] = extractors[field](&contacts[i])
		}
		rows = append(rows, row)
	}
	return rows, len(contacts), nil
}

func resolveFields(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return fieldOrder, nil
	}
	for _, name := range requested {
		if _, ok := extractors[name]; !ok {
			return nil, fmt.Errorf("unknown export field %q", name)
		}
	}
	return requested, nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", val), "0"), ".")
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
