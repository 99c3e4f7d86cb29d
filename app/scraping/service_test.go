package scraping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leadcomb/lead-comb/app/compliance"
	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/scraper"
	"github.com/leadcomb/lead-comb/app/tagging"
)

type fakeSource struct {
	perQuery map[string][]scraper.Candidate
	failing  map[string]error
}

func (s *fakeSource) Fetch(ctx context.Context, platform, scrapingType, query string, opts scraper.Options) ([]scraper.Candidate, error) {
	if err, ok := s.failing[query]; ok {
		return nil, err
	}
	return s.perQuery[query], nil
}

type fakeComplianceRepo struct {
	settings map[string]*database.ComplianceSettings
}

func complianceKey(userID, platform string) string { return userID + "/" + platform }

func (r *fakeComplianceRepo) Get(userID, platform string) (*database.ComplianceSettings, error) {
	return r.settings[complianceKey(userID, platform)], nil
}

func (r *fakeComplianceRepo) Insert(settings *database.ComplianceSettings) error {
	settings.ID = "cs-" + settings.Platform
	r.settings[complianceKey(settings.UserID, settings.Platform)] = settings
	return nil
}

func (r *fakeComplianceRepo) Update(settings *database.ComplianceSettings) error {
	r.settings[complianceKey(settings.UserID, settings.Platform)] = settings
	return nil
}

func (r *fakeComplianceRepo) IncrementTotalRequests(userID, platform string, n int) error {
	if s, ok := r.settings[complianceKey(userID, platform)]; ok {
		s.TotalRequests += n
	}
	return nil
}

type fakeLogRepo struct {
	rows        []*database.ScrapingLog
	recentCount int
}

func (r *fakeLogRepo) Insert(log *database.ScrapingLog) error {
	r.rows = append(r.rows, log)
	return nil
}

func (r *fakeLogRepo) CountSince(userID, platform string, since time.Time) (int, error) {
	return r.recentCount, nil
}

func (r *fakeLogRepo) List(userID string, opts database.LogListOptions) ([]database.ScrapingLog, int, error) {
	return nil, 0, nil
}

func (r *fakeLogRepo) DailyActivity(userID string, since time.Time) ([]database.ActivityStat, error) {
	return nil, nil
}

type fakeContactStore struct {
	byIdentity map[string]*database.Contact
	nextID     int
	failInsert bool
}

func identityKey(userID, platform, platformUserID string) string {
	return userID + "/" + platform + "/" + platformUserID
}

func (r *fakeContactStore) GetByIdentity(userID, platform, platformUserID string) (*database.Contact, error) {
	if c, ok := r.byIdentity[identityKey(userID, platform, platformUserID)]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeContactStore) GetByID(id string) (*database.Contact, error) {
	for _, c := range r.byIdentity {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakeContactStore) Insert(contact *database.Contact) error {
	if r.failInsert {
		return errors.New("disk full")
	}
	r.nextID++
	contact.ID = fmt.Sprintf("contact-%d", r.nextID)
	clone := *contact
	r.byIdentity[identityKey(contact.UserID, contact.Platform, contact.PlatformUserID)] = &clone
	return nil
}

func (r *fakeContactStore) Update(contact *database.Contact) error {
	clone := *contact
	r.byIdentity[identityKey(contact.UserID, contact.Platform, contact.PlatformUserID)] = &clone
	return nil
}

func (r *fakeContactStore) List(userID string, opts database.ContactListOptions) ([]database.Contact, int, error) {
	return nil, 0, nil
}

func (r *fakeContactStore) ListForExport(userID string, filter database.ExportFilter) ([]database.Contact, error) {
	return nil, nil
}

func (r *fakeContactStore) CountByUser(userID string) (int, error) { return len(r.byIdentity), nil }

func (r *fakeContactStore) PlatformStats(userID string) ([]database.PlatformStat, error) {
	return nil, nil
}

type fakeTagStore struct {
	tags      map[string]*database.Tag
	relations map[string]bool
	nextID    int
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{tags: make(map[string]*database.Tag), relations: make(map[string]bool)}
}

func (r *fakeTagStore) GetOrCreate(userID, name, color, description string) (*database.Tag, error) {
	for _, tag := range r.tags {
		if tag.UserID == userID && tag.Name == name {
			return tag, nil
		}
	}
	r.nextID++
	tag := &database.Tag{ID: fmt.Sprintf("tag-%d", r.nextID), UserID: userID, Name: name, Color: color}
	r.tags[tag.ID] = tag
	return tag, nil
}

func (r *fakeTagStore) GetByID(id string) (*database.Tag, error) {
	if tag, ok := r.tags[id]; ok {
		return tag, nil
	}
	return nil, database.ErrNotFound
}

func (r *fakeTagStore) ListByUser(userID string) ([]database.Tag, error) { return nil, nil }
func (r *fakeTagStore) Delete(id string) error                          { return nil }

func (r *fakeTagStore) HasRelation(contactID, tagID string) (bool, error) {
	return r.relations[contactID+"/"+tagID], nil
}

func (r *fakeTagStore) InsertRelation(rel *database.TagRelation) error {
	r.relations[rel.ContactID+"/"+rel.TagID] = true
	return nil
}

func (r *fakeTagStore) DeleteRelation(contactID, tagID string) (bool, error) { return false, nil }
func (r *fakeTagStore) DeleteRelationsByTag(tagID string) error              { return nil }
func (r *fakeTagStore) AdjustContactsCount(tagID string, delta int) error    { return nil }
func (r *fakeTagStore) ListByContact(contactID string) ([]database.ContactTag, error) {
	return nil, nil
}

type fixture struct {
	orchestrator *Orchestrator
	source       *fakeSource
	logRepo      *fakeLogRepo
	contactRepo  *fakeContactStore
	compliance   *fakeComplianceRepo
}

func newFixture() *fixture {
	source := &fakeSource{
		perQuery: make(map[string][]scraper.Candidate),
		failing:  make(map[string]error),
	}
	complianceRepo := &fakeComplianceRepo{settings: make(map[string]*database.ComplianceSettings)}
	logRepo := &fakeLogRepo{}
	contactRepo := &fakeContactStore{byIdentity: make(map[string]*database.Contact)}
	gate := compliance.NewGate(complianceRepo, logRepo)
	tagger := tagging.NewService(newFakeTagStore(), contactRepo)

	return &fixture{
		orchestrator: NewOrchestrator(source, gate, contactRepo, logRepo, tagger, 0),
		source:       source,
		logRepo:      logRepo,
		contactRepo:  contactRepo,
		compliance:   complianceRepo,
	}
}

func candidatesFor(query string, n int) []scraper.Candidate {
	out := make([]scraper.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, scraper.Candidate{
			PlatformUserID: fmt.Sprintf("%s-%d", query, i),
			Username:       fmt.Sprintf("user_%s_%d", query, i),
			Bio:            "Travel content",
			FollowerCount:  1500,
			ScrapingQuery:  query,
		})
	}
	return out
}

func TestScrapeContactsPartialSuccess(t *testing.T) {
	f := newFixture()
	f.source.perQuery["sunsets"] = candidatesFor("sunsets", 3)
	f.source.failing["broken"] = errors.New("upstream timeout")

	result, err := f.orchestrator.ScrapeContacts(context.Background(), Request{
		UserID:       "u1",
		Platform:     "instagram",
		ScrapingType: "hashtag",
		Queries:      []string{"sunsets", "broken"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFound != 3 || result.TotalSaved != 3 {
		t.Errorf("expected 3 found and saved, got %d/%d", result.TotalFound, result.TotalSaved)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], `Failed to scrape query "broken"`) {
		t.Errorf("expected one query failure, got %v", result.Errors)
	}

	if len(f.logRepo.rows) != 2 {
		t.Fatalf("expected 2 log rows, got %d", len(f.logRepo.rows))
	}
	okRow, failRow := f.logRepo.rows[0], f.logRepo.rows[1]
	if okRow.Status != database.LogStatusSuccess || okRow.ContactsFound != 3 || okRow.ContactsSaved != 3 {
		t.Errorf("unexpected success row: %+v", okRow)
	}
	if failRow.Status != database.LogStatusPartialSuccess || failRow.ErrorMessage == "" {
		t.Errorf("unexpected failure row: %+v", failRow)
	}
}

func TestScrapeContactsUpsertsByIdentity(t *testing.T) {
	f := newFixture()
	f.source.perQuery["beach"] = candidatesFor("beach", 2)

	req := Request{UserID: "u1", Platform: "instagram", ScrapingType: "hashtag", Queries: []string{"beach"}}
	if _, err := f.orchestrator.ScrapeContacts(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.orchestrator.ScrapeContacts(context.Background(), req); err != nil {
		t.Fatalf("unexpected error on re-scrape: %v", err)
	}

	if len(f.contactRepo.byIdentity) != 2 {
		t.Errorf("expected 2 contacts after re-scrape, got %d", len(f.contactRepo.byIdentity))
	}
	for _, contact := range f.contactRepo.byIdentity {
		if contact.ValidationStatus != database.ValidationValid {
			t.Errorf("expected validation status %q, got %q", database.ValidationValid, contact.ValidationStatus)
		}
	}
}

func TestScrapeContactsDefaultsQueryLabel(t *testing.T) {
	f := newFixture()
	f.source.perQuery["unlabeled"] = []scraper.Candidate{{PlatformUserID: "x1", Username: "x"}}

	result, err := f.orchestrator.ScrapeContacts(context.Background(), Request{
		UserID: "u1", Platform: "instagram", ScrapingType: "hashtag", Queries: []string{"unlabeled"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Contacts[0].ScrapingQuery != DefaultQuery {
		t.Errorf("expected default query label %q, got %q", DefaultQuery, result.Contacts[0].ScrapingQuery)
	}
}

func TestScrapeContactsValidation(t *testing.T) {
	f := newFixture()

	var validationErr *ValidationError

	_, err := f.orchestrator.ScrapeContacts(context.Background(), Request{
		UserID: "u1", Platform: "instagram", ScrapingType: "hashtag",
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for empty queries, got %v", err)
	}

	_, err = f.orchestrator.ScrapeContacts(context.Background(), Request{
		UserID: "u1", Platform: "instagram", ScrapingType: "hashtag",
		Queries: []string{strings.Repeat("x", 101)},
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for oversized query, got %v", err)
	}
}

func TestScrapeContactsRejectsDisallowedType(t *testing.T) {
	f := newFixture()

	var complianceErr *ComplianceError
	_, err := f.orchestrator.ScrapeContacts(context.Background(), Request{
		UserID: "u1", Platform: "instagram", ScrapingType: "trending", Queries: []string{"x"},
	})
	if !errors.As(err, &complianceErr) {
		t.Fatalf("expected compliance error for disallowed type, got %v", err)
	}
}

func TestScrapeContactsRateLimitBoundary(t *testing.T) {
	f := newFixture()
	f.source.perQuery["x"] = candidatesFor("x", 1)
	req := Request{UserID: "u1", Platform: "instagram", ScrapingType: "hashtag", Queries: []string{"x"}}

	// Instagram default cap is 60 per hour.
	f.logRepo.recentCount = 59
	if _, err := f.orchestrator.ScrapeContacts(context.Background(), req); err != nil {
		t.Fatalf("expected request under the cap to pass, got %v", err)
	}

	f.logRepo.recentCount = 60
	var rateErr *compliance.RateLimitError
	_, err := f.orchestrator.ScrapeContacts(context.Background(), req)
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected rate limit error at the cap, got %v", err)
	}
	if rateErr.Limit != 60 || rateErr.Platform != "instagram" {
		t.Errorf("unexpected rate limit error fields: %+v", rateErr)
	}
}

func TestScrapeContactsSoftSaveFailures(t *testing.T) {
	f := newFixture()
	f.source.perQuery["x"] = candidatesFor("x", 2)
	f.contactRepo.failInsert = true

	result, err := f.orchestrator.ScrapeContacts(context.Background(), Request{
		UserID: "u1", Platform: "instagram", ScrapingType: "hashtag", Queries: []string{"x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalSaved != 0 || result.TotalFound != 2 {
		t.Errorf("expected 0 saved of 2 found, got %d/%d", result.TotalSaved, result.TotalFound)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 soft save failures, got %v", result.Errors)
	}
}
