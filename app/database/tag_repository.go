package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TagRepository handles database operations for tags and their contact
// relations.
type SQLTagRepository struct {
	db *DB
}

var _ TagRepository = (*SQLTagRepository)(nil)

func NewTagRepository(db *DB) *SQLTagRepository {
	return &SQLTagRepository{db: db}
}

// GetOrCreate inserts the tag if it does not exist and returns the row either
// way. The upsert keeps the original color and description when the row
// already exists, so a concurrent second creator observes the first
// creator's tag.
func (r *SQLTagRepository) GetOrCreate(userID, name, color, description string) (*Tag, error) {
	now := time.Now().UTC().Unix()

	var tag Tag
	var createdAt, updatedAt int64
	err := r.db.QueryRow(`
		INSERT INTO contact_tags (id, user_id, name, color, description, is_system, contacts_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)
		ON CONFLICT (user_id, name) DO UPDATE SET updated_at = updated_at
		RETURNING id, user_id, name, color, description, is_system, contacts_count, created_at, updated_at
	`, uuid.NewString(), userID, name, color, description, now, now).Scan(
		&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.Description,
		&tag.IsSystem, &tag.ContactsCount, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create tag: %w", err)
	}

	tag.CreatedAt = time.Unix(createdAt, 0).UTC()
	tag.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &tag, nil
}

func (r *SQLTagRepository) GetByID(id string) (*Tag, error) {
	var tag Tag
	var createdAt, updatedAt int64
	err := r.db.QueryRow(`
		SELECT id, user_id, name, color, description, is_system, contacts_count, created_at, updated_at
		FROM contact_tags
		WHERE id = ?
	`, id).Scan(
		&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.Description,
		&tag.IsSystem, &tag.ContactsCount, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	tag.CreatedAt = time.Unix(createdAt, 0).UTC()
	tag.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &tag, nil
}

func (r *SQLTagRepository) ListByUser(userID string) ([]Tag, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, color, description, is_system, contacts_count, created_at, updated_at
		FROM contact_tags
		WHERE user_id = ?
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		var createdAt, updatedAt int64
		if err := rows.Scan(
			&tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.Description,
			&tag.IsSystem, &tag.ContactsCount, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tag.CreatedAt = time.Unix(createdAt, 0).UTC()
		tag.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

func (r *SQLTagRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM contact_tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLTagRepository) HasRelation(contactID, tagID string) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM contact_tag_relations WHERE contact_id = ? AND tag_id = ? LIMIT 1
	`, contactID, tagID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag relation: %w", err)
	}
	return true, nil
}

func (r *SQLTagRepository) InsertRelation(rel *TagRelation) error {
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO contact_tag_relations (contact_id, tag_id, confidence, source, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (contact_id, tag_id) DO NOTHING
	`, rel.ContactID, rel.TagID, rel.Confidence, rel.Source, rel.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert tag relation: %w", err)
	}
	return nil
}

func (r *SQLTagRepository) DeleteRelation(contactID, tagID string) (bool, error) {
	res, err := r.db.Exec(`
		DELETE FROM contact_tag_relations WHERE contact_id = ? AND tag_id = ?
	`, contactID, tagID)
	if err != nil {
		return false, fmt.Errorf("failed to delete tag relation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLTagRepository) DeleteRelationsByTag(tagID string) error {
	_, err := r.db.Exec("DELETE FROM contact_tag_relations WHERE tag_id = ?", tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag relations: %w", err)
	}
	return nil
}

func (r *SQLTagRepository) AdjustContactsCount(tagID string, delta int) error {
	_, err := r.db.Exec(`
		UPDATE contact_tags
		SET contacts_count = contacts_count + ?, updated_at = ?
		WHERE id = ?
	`, delta, time.Now().UTC().Unix(), tagID)
	if err != nil {
		return fmt.Errorf("failed to adjust tag contact count: %w", err)
	}
	return nil
}

func (r *SQLTagRepository) ListByContact(contactID string) ([]ContactTag, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.name, t.color, t.description, rel.confidence, rel.source, rel.created_at
		FROM contact_tag_relations rel
		JOIN contact_tags t ON t.id = rel.tag_id
		WHERE rel.contact_id = ?
		ORDER BY rel.created_at
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact tags: %w", err)
	}
	defer rows.Close()

	var tags []ContactTag
	for rows.Next() {
		var tag ContactTag
		var createdAt int64
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Description, &tag.Confidence, &tag.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact tag row: %w", err)
		}
		tag.CreatedAt = time.Unix(createdAt, 0).UTC()
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact tag rows: %w", err)
	}

	return tags, nil
}
