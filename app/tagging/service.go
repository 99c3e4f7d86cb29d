package tagging

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leadcomb/lead-comb/app/database"
)

var ErrEmptyTagName = errors.New("tag name is empty after normalization")

// Manually applied tags carry a fixed default confidence.
const manualConfidence = 0.8

// Service applies derived and manual tags to contacts, keeping the per-tag
// contact counters in step with the relation rows.
type Service struct {
	tagRepo     database.TagRepository
	contactRepo database.ContactRepository
}

func NewService(tagRepo database.TagRepository, contactRepo database.ContactRepository) *Service {
	return &Service{tagRepo: tagRepo, contactRepo: contactRepo}
}

// AutoTagContact derives tags for a saved contact and attaches any that are
// not already present. It returns the number of newly attached tags.
func (s *Service) AutoTagContact(contact *database.Contact, profileTags []string) (int, error) {
	applied := 0
	for _, candidate := range Extract(contact, profileTags) {
		tag, err := s.tagRepo.GetOrCreate(contact.UserID, candidate.Name, candidate.Color, candidate.Description)
		if err != nil {
			return applied, fmt.Errorf("failed to resolve tag %q: %w", candidate.Name, err)
		}

		added, err := s.attach(contact.ID, tag.ID, candidate.Confidence, candidate.Source)
		if err != nil {
			return applied, err
		}
		if added {
			applied++
		}
	}
	return applied, nil
}

// AddTagToContact manually attaches a tag by name, creating the tag when it
// does not exist yet. Re-adding an attached tag is a no-op and does not bump
// the counter.
func (s *Service) AddTagToContact(userID, contactID, tagName, color string) (*database.Tag, error) {
	name := Slug(tagName)
	if name == "" {
		return nil, ErrEmptyTagName
	}

	contact, err := s.contactRepo.GetByID(contactID)
	if err != nil {
		return nil, err
	}
	if contact.UserID != userID {
		return nil, database.ErrNotFound
	}

	if color == "" {
		color = colorFor(name)
	}
	tag, err := s.tagRepo.GetOrCreate(userID, name, color, "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag %q: %w", name, err)
	}

	if _, err := s.attach(contactID, tag.ID, manualConfidence, SourceManual); err != nil {
		return nil, err
	}
	return tag, nil
}

// RemoveTagFromContact detaches a tag. The counter is decremented only when a
// relation row was actually deleted, so repeated removals stay at zero effect.
func (s *Service) RemoveTagFromContact(contactID, tagID string) error {
	deleted, err := s.tagRepo.DeleteRelation(contactID, tagID)
	if err != nil {
		return fmt.Errorf("failed to remove tag relation: %w", err)
	}
	if !deleted {
		return nil
	}
	if err := s.tagRepo.AdjustContactsCount(tagID, -1); err != nil {
		return fmt.Errorf("failed to adjust tag counter: %w", err)
	}
	return nil
}

// BulkTagContacts attaches one tag to many contacts. Per-contact failures are
// collected rather than aborting the batch.
func (s *Service) BulkTagContacts(userID string, contactIDs []string, tagName, color string) (int, []string) {
	name := Slug(tagName)
	if name == "" {
		return 0, []string{ErrEmptyTagName.Error()}
	}
	if color == "" {
		color = colorFor(name)
	}

	tag, err := s.tagRepo.GetOrCreate(userID, name, color, "")
	if err != nil {
		return 0, []string{fmt.Sprintf("failed to resolve tag %q: %v", name, err)}
	}

	tagged := 0
	var failures []string
	for _, contactID := range contactIDs {
		contact, err := s.contactRepo.GetByID(contactID)
		if err != nil || contact.UserID != userID {
			failures = append(failures, fmt.Sprintf("contact %s not found", contactID))
			continue
		}
		added, err := s.attach(contactID, tag.ID, manualConfidence, SourceManual)
		if err != nil {
			failures = append(failures, fmt.Sprintf("contact %s: %v", contactID, err))
			continue
		}
		if added {
			tagged++
		}
	}

	slog.Debug("Bulk tagged contacts", "user", userID, "tag", name,
		"tagged", tagged, "failures", len(failures))
	return tagged, failures
}

// DeleteTag removes a tag and all its relations.
func (s *Service) DeleteTag(userID, tagID string) error {
	tag, err := s.tagRepo.GetByID(tagID)
	if err != nil {
		return err
	}
	if tag.UserID != userID {
		return database.ErrNotFound
	}

	if err := s.tagRepo.DeleteRelationsByTag(tagID); err != nil {
		return fmt.Errorf("failed to delete tag relations: %w", err)
	}
	if err := s.tagRepo.Delete(tagID); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func (s *Service) GetUserTags(userID string) ([]database.Tag, error) {
	return s.tagRepo.ListByUser(userID)
}

func (s *Service) GetContactTags(contactID string) ([]database.ContactTag, error) {
	return s.tagRepo.ListByContact(contactID)
}

// attach inserts the relation and bumps the counter unless it already exists.
func (s *Service) attach(contactID, tagID string, confidence float64, source string) (bool, error) {
	exists, err := s.tagRepo.HasRelation(contactID, tagID)
	if err != nil {
		return false, fmt.Errorf("failed to check tag relation: %w", err)
	}
	if exists {
		return false, nil
	}

	rel := &database.TagRelation{
		ContactID:  contactID,
		TagID:      tagID,
		Confidence: confidence,
		Source:     source,
	}
	if err := s.tagRepo.InsertRelation(rel); err != nil {
		return false, fmt.Errorf("failed to attach tag: %w", err)
	}
	if err := s.tagRepo.AdjustContactsCount(tagID, 1); err != nil {
		return false, fmt.Errorf("failed to adjust tag counter: %w", err)
	}
	return true, nil
}
