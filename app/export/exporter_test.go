package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/leadcomb/lead-comb/app/database"
)

type stubContactRepo struct {
	contacts []database.Contact
	filter   database.ExportFilter
}

func (r *stubContactRepo) ListForExport(userID string, filter database.ExportFilter) ([]database.Contact, error) {
	r.filter = filter
	return r.contacts, nil
}

func (r *stubContactRepo) GetByIdentity(userID, platform, platformUserID string) (*database.Contact, error) {
	return nil, nil
}
func (r *stubContactRepo) GetByID(id string) (*database.Contact, error) { return nil, nil }
func (r *stubContactRepo) Insert(contact *database.Contact) error       { return nil }
func (r *stubContactRepo) Update(contact *database.Contact) error       { return nil }
func (r *stubContactRepo) List(userID string, opts database.ContactListOptions) ([]database.Contact, int, error) {
	return nil, 0, nil
}
func (r *stubContactRepo) CountByUser(userID string) (int, error) { return 0, nil }
func (r *stubContactRepo) PlatformStats(userID string) ([]database.PlatformStat, error) {
	return nil, nil
}

func rate(v float64) *float64 { return &v }

func sampleContacts() []database.Contact {
	return []database.Contact{
		{
			Username:       "alice",
			Platform:       "instagram",
			FollowerCount:  25000,
			PostCount:      300,
			EngagementRate: rate(4.5),
			IsVerified:     true,
			ScrapedAt:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			Username:       "bob",
			Platform:       "tiktok",
			FollowerCount:  800,
			EngagementRate: rate(8.1),
			IsBusiness:     true,
		},
		{
			Username: "carol",
			Platform: "instagram",
		},
	}
}

func TestExportCSV(t *testing.T) {
	exporter := NewExporter(&stubContactRepo{contacts: sampleContacts()})

	file, err := exporter.Export("u1", database.ExportFilter{}, Options{
		Format: FormatCSV,
		Fields: []string{"username", "platform", "followerCount", "isVerified"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.ContentType != "text/csv" || !strings.HasSuffix(file.Name, ".csv") {
		t.Errorf("unexpected file metadata: %s %s", file.Name, file.ContentType)
	}

	rows, err := csv.NewReader(strings.NewReader(string(file.Data))).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv output: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Username" || rows[0][3] != "Verified" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "alice" || rows[1][2] != "25000" || rows[1][3] != "true" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
}

func TestExportJSONWithAnalytics(t *testing.T) {
	exporter := NewExporter(&stubContactRepo{contacts: sampleContacts()})

	file, err := exporter.Export("u1", database.ExportFilter{}, Options{
		Format:           FormatJSON,
		IncludeAnalytics: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Total     int              `json:"total"`
		Contacts  []map[string]any `json:"contacts"`
		Analytics *Analytics       `json:"analytics"`
	}
	if err := json.Unmarshal(file.Data, &payload); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if payload.Total != 3 || len(payload.Contacts) != 3 {
		t.Errorf("expected 3 contacts, got total=%d len=%d", payload.Total, len(payload.Contacts))
	}
	if payload.Analytics == nil {
		t.Fatal("expected analytics block")
	}
	if payload.Analytics.PlatformDistribution["instagram"] != 2 {
		t.Errorf("unexpected platform distribution: %v", payload.Analytics.PlatformDistribution)
	}
}

func TestExportRejectsUnknownFieldAndFormat(t *testing.T) {
	exporter := NewExporter(&stubContactRepo{contacts: sampleContacts()})

	if _, err := exporter.Export("u1", database.ExportFilter{}, Options{Format: FormatCSV, Fields: []string{"nope"}}); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := exporter.Export("u1", database.ExportFilter{}, Options{Format: "yaml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPreviewCapsAtTenRows(t *testing.T) {
	contacts := make([]database.Contact, 25)
	for i := range contacts {
		contacts[i] = database.Contact{Username: "user", Platform: "twitter"}
	}
	exporter := NewExporter(&stubContactRepo{contacts: contacts})

	rows, total, err := exporter.Preview("u1", database.ExportFilter{}, []string{"username"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 10 {
		t.Errorf("expected 10 preview rows, got %d", len(rows))
	}
	if total != 25 {
		t.Errorf("expected total 25, got %d", total)
	}
}

func TestSummarize(t *testing.T) {
	a := Summarize(sampleContacts())

	if a.Total != 3 || a.VerifiedCount != 1 || a.BusinessCount != 1 {
		t.Errorf("unexpected counts: %+v", a)
	}
	if a.Engagement.Min != 4.5 || a.Engagement.Max != 8.1 {
		t.Errorf("unexpected engagement bounds: %+v", a.Engagement)
	}
	if a.Engagement.Median != 6.3 {
		t.Errorf("expected median 6.3, got %v", a.Engagement.Median)
	}
	// alice 47.5, bob 81.08, carol 0.
	if a.AvgEngagementScore != 42.86 {
		t.Errorf("expected avg engagement score 42.86, got %v", a.AvgEngagementScore)
	}
}

func TestEngagementScore(t *testing.T) {
	hot := &database.Contact{FollowerCount: 500000, EngagementRate: rate(50)}
	if got := EngagementScore(hot); got != 100 {
		t.Errorf("expected capped score 100, got %v", got)
	}
	if got := EngagementScore(&database.Contact{}); got != 0 {
		t.Errorf("expected zero score for empty contact, got %v", got)
	}
}

func TestInfluenceScore(t *testing.T) {
	mega := &database.Contact{
		FollowerCount:  1000000,
		PostCount:      5000,
		EngagementRate: rate(50),
		IsVerified:     true,
		IsBusiness:     true,
	}
	if got := InfluenceScore(mega); got != 100 {
		t.Errorf("expected capped score 100, got %v", got)
	}

	modest := &database.Contact{FollowerCount: 2500, EngagementRate: rate(2)}
	// 1 point from followers plus 6 from engagement.
	if got := InfluenceScore(modest); got != 7 {
		t.Errorf("expected score 7, got %v", got)
	}

	if got := InfluenceScore(&database.Contact{}); got != 0 {
		t.Errorf("expected zero score for empty contact, got %v", got)
	}
}
