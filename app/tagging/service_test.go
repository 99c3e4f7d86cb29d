package tagging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leadcomb/lead-comb/app/database"
)

type fakeTagRepo struct {
	tags      map[string]*database.Tag
	relations map[string]*database.TagRelation
	nextID    int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		tags:      make(map[string]*database.Tag),
		relations: make(map[string]*database.TagRelation),
	}
}

func relKey(contactID, tagID string) string { return contactID + "/" + tagID }

func (r *fakeTagRepo) GetOrCreate(userID, name, color, description string) (*database.Tag, error) {
	for _, tag := range r.tags {
		if tag.UserID == userID && tag.Name == name {
			return tag, nil
		}
	}
	r.nextID++
	tag := &database.Tag{
		ID:          fmt.Sprintf("tag-%d", r.nextID),
		UserID:      userID,
		Name:        name,
		Color:       color,
		Description: description,
	}
	r.tags[tag.ID] = tag
	return tag, nil
}

func (r *fakeTagRepo) GetByID(id string) (*database.Tag, error) {
	tag, ok := r.tags[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return tag, nil
}

func (r *fakeTagRepo) ListByUser(userID string) ([]database.Tag, error) {
	var out []database.Tag
	for _, tag := range r.tags {
		if tag.UserID == userID {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (r *fakeTagRepo) Delete(id string) error {
	delete(r.tags, id)
	return nil
}

func (r *fakeTagRepo) HasRelation(contactID, tagID string) (bool, error) {
	_, ok := r.relations[relKey(contactID, tagID)]
	return ok, nil
}

func (r *fakeTagRepo) InsertRelation(rel *database.TagRelation) error {
	r.relations[relKey(rel.ContactID, rel.TagID)] = rel
	return nil
}

func (r *fakeTagRepo) DeleteRelation(contactID, tagID string) (bool, error) {
	key := relKey(contactID, tagID)
	if _, ok := r.relations[key]; !ok {
		return false, nil
	}
	delete(r.relations, key)
	return true, nil
}

func (r *fakeTagRepo) DeleteRelationsByTag(tagID string) error {
	for key, rel := range r.relations {
		if rel.TagID == tagID {
			delete(r.relations, key)
		}
	}
	return nil
}

func (r *fakeTagRepo) AdjustContactsCount(tagID string, delta int) error {
	tag, ok := r.tags[tagID]
	if !ok {
		return database.ErrNotFound
	}
	tag.ContactsCount += delta
	return nil
}

func (r *fakeTagRepo) ListByContact(contactID string) ([]database.ContactTag, error) {
	var out []database.ContactTag
	for _, rel := range r.relations {
		if rel.ContactID != contactID {
			continue
		}
		tag := r.tags[rel.TagID]
		out = append(out, database.ContactTag{
			ID:         tag.ID,
			Name:       tag.Name,
			Color:      tag.Color,
			Confidence: rel.Confidence,
			Source:     rel.Source,
		})
	}
	return out, nil
}

type fakeContactRepo struct {
	contacts map[string]*database.Contact
}

func (r *fakeContactRepo) GetByID(id string) (*database.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return contact, nil
}

func (r *fakeContactRepo) GetByIdentity(userID, platform, platformUserID string) (*database.Contact, error) {
	return nil, nil
}
func (r *fakeContactRepo) Insert(contact *database.Contact) error { return nil }
func (r *fakeContactRepo) Update(contact *database.Contact) error { return nil }
func (r *fakeContactRepo) List(userID string, opts database.ContactListOptions) ([]database.Contact, int, error) {
	return nil, 0, nil
}
func (r *fakeContactRepo) ListForExport(userID string, filter database.ExportFilter) ([]database.Contact, error) {
	return nil, nil
}
func (r *fakeContactRepo) CountByUser(userID string) (int, error) { return 0, nil }
func (r *fakeContactRepo) PlatformStats(userID string) ([]database.PlatformStat, error) {
	return nil, nil
}

func newServiceFixture() (*Service, *fakeTagRepo, *fakeContactRepo) {
	tagRepo := newFakeTagRepo()
	contactRepo := &fakeContactRepo{contacts: map[string]*database.Contact{
		"c1": {ID: "c1", UserID: "u1", Platform: "instagram"},
		"c2": {ID: "c2", UserID: "u1", Platform: "instagram"},
		"c3": {ID: "c3", UserID: "u2", Platform: "tiktok"},
	}}
	return NewService(tagRepo, contactRepo), tagRepo, contactRepo
}

func TestAddTagToContactIdempotent(t *testing.T) {
	service, tagRepo, _ := newServiceFixture()

	first, err := service.AddTagToContact("u1", "c1", "VIP Leads", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != "vip-leads" {
		t.Errorf("expected normalized name vip-leads, got %q", first.Name)
	}

	second, err := service.AddTagToContact("u1", "c1", "vip-leads", "")
	if err != nil {
		t.Fatalf("unexpected error on re-add: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same tag row, got %q and %q", first.ID, second.ID)
	}
	if count := tagRepo.tags[first.ID].ContactsCount; count != 1 {
		t.Errorf("expected contacts count 1 after duplicate add, got %d", count)
	}
}

func TestManualTagsCarryDefaultConfidence(t *testing.T) {
	service, tagRepo, _ := newServiceFixture()

	tag, err := service.AddTagToContact("u1", "c1", "vip", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rel := tagRepo.relations[relKey("c1", tag.ID)]
	if rel == nil {
		t.Fatal("expected relation row")
	}
	if rel.Confidence != 0.8 {
		t.Errorf("expected manual confidence 0.8, got %v", rel.Confidence)
	}
	if rel.Source != SourceManual {
		t.Errorf("expected manual source, got %q", rel.Source)
	}

	service.BulkTagContacts("u1", []string{"c2"}, "vip", "")
	bulk := tagRepo.relations[relKey("c2", tag.ID)]
	if bulk == nil || bulk.Confidence != 0.8 {
		t.Errorf("expected bulk-applied confidence 0.8, got %+v", bulk)
	}
}

func TestAddTagToContactWrongUser(t *testing.T) {
	service, _, _ := newServiceFixture()

	if _, err := service.AddTagToContact("u1", "c3", "reach", ""); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's contact, got %v", err)
	}
}

func TestAddTagToContactEmptyName(t *testing.T) {
	service, _, _ := newServiceFixture()

	if _, err := service.AddTagToContact("u1", "c1", "!!!", ""); !errors.Is(err, ErrEmptyTagName) {
		t.Errorf("expected ErrEmptyTagName, got %v", err)
	}
}

func TestRemoveTagFromContactGuardedDecrement(t *testing.T) {
	service, tagRepo, _ := newServiceFixture()

	tag, err := service.AddTagToContact("u1", "c1", "warm", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.RemoveTagFromContact("c1", tag.ID); err != nil {
		t.Fatalf("unexpected error on remove: %v", err)
	}
	if err := service.RemoveTagFromContact("c1", tag.ID); err != nil {
		t.Fatalf("unexpected error on repeat remove: %v", err)
	}
	if count := tagRepo.tags[tag.ID].ContactsCount; count != 0 {
		t.Errorf("expected contacts count 0 after repeated removal, got %d", count)
	}
}

func TestBulkTagContactsSoftFailures(t *testing.T) {
	service, tagRepo, _ := newServiceFixture()

	tagged, failures := service.BulkTagContacts("u1", []string{"c1", "missing", "c2", "c3"}, "outreach", "")

	if tagged != 2 {
		t.Errorf("expected 2 tagged contacts, got %d", tagged)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d: %v", len(failures), failures)
	}

	var tag *database.Tag
	for _, candidate := range tagRepo.tags {
		if candidate.Name == "outreach" {
			tag = candidate
		}
	}
	if tag == nil {
		t.Fatal("expected outreach tag to exist")
	}
	if tag.ContactsCount != 2 {
		t.Errorf("expected contacts count 2, got %d", tag.ContactsCount)
	}
}

func TestAutoTagContact(t *testing.T) {
	service, tagRepo, contactRepo := newServiceFixture()
	contact := contactRepo.contacts["c1"]
	contact.Bio = "Travel photographer, love #sunsets"
	contact.FollowerCount = 25000
	contact.IsVerified = true

	applied, err := service.AutoTagContact(contact, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tags, _ := tagRepo.ListByContact("c1")
	if len(tags) != applied {
		t.Errorf("expected %d relations, got %d", applied, len(tags))
	}

	want := map[string]bool{
		"travel": false, "sunsets": false, "instagram": false,
		"macro-influencer": false, "verified-account": false,
	}
	for _, tag := range tags {
		if _, ok := want[tag.Name]; ok {
			want[tag.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("expected derived tag %q", name)
		}
	}

	// Re-running must not attach or count anything twice.
	applied2, err := service.AutoTagContact(contact, nil)
	if err != nil {
		t.Fatalf("unexpected error on re-run: %v", err)
	}
	if applied2 != 0 {
		t.Errorf("expected 0 newly applied tags on re-run, got %d", applied2)
	}
}

func TestDeleteTagCascades(t *testing.T) {
	service, tagRepo, _ := newServiceFixture()

	tag, err := service.AddTagToContact("u1", "c1", "stale", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.AddTagToContact("u1", "c2", "stale", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.DeleteTag("u1", tag.ID); err != nil {
		t.Fatalf("unexpected error on delete: %v", err)
	}
	if len(tagRepo.relations) != 0 {
		t.Errorf("expected all relations removed, %d left", len(tagRepo.relations))
	}
	if _, err := tagRepo.GetByID(tag.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected tag row removed, got %v", err)
	}

	if err := service.DeleteTag("u2", "tag-999"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown tag, got %v", err)
	}
}
