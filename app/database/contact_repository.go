package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContactRepository handles database operations for scraped contacts.
type SQLContactRepository struct {
	db *DB
}

var _ ContactRepository = (*SQLContactRepository)(nil)

func NewContactRepository(db *DB) *SQLContactRepository {
	return &SQLContactRepository{db: db}
}

const contactColumns = `id, user_id, platform, platform_user_id, username, display_name,
	profile_url, avatar_url, bio, email, phone, website, location, category,
	follower_count, following_count, post_count, engagement_rate,
	is_verified, is_business, scraping_source, scraping_query,
	validation_status, scraped_at, created_at, updated_at`

func scanContact(row interface{ Scan(...any) error }) (*Contact, error) {
	var c Contact
	var engagement sql.NullFloat64
	var scrapedAt, createdAt, updatedAt int64

	err := row.Scan(
		&c.ID, &c.UserID, &c.Platform, &c.PlatformUserID, &c.Username, &c.DisplayName,
		&c.ProfileURL, &c.AvatarURL, &c.Bio, &c.Email, &c.Phone, &c.Website, &c.Location, &c.Category,
		&c.FollowerCount, &c.FollowingCount, &c.PostCount, &engagement,
		&c.IsVerified, &c.IsBusiness, &c.ScrapingSource, &c.ScrapingQuery,
		&c.ValidationStatus, &scrapedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if engagement.Valid {
		c.EngagementRate = &engagement.Float64
	}
	c.ScrapedAt = time.Unix(scrapedAt, 0).UTC()
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &c, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// GetByIdentity retrieves a contact by its dedup identity key.
func (r *SQLContactRepository) GetByIdentity(userID, platform, platformUserID string) (*Contact, error) {
	row := r.db.QueryRow(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = ? AND platform = ? AND platform_user_id = ?
	`, userID, platform, platformUserID)

	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact by identity: %w", err)
	}
	return contact, nil
}

func (r *SQLContactRepository) GetByID(id string) (*Contact, error) {
	row := r.db.QueryRow(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = ?
	`, id)

	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// Insert stores a new contact. The caller is responsible for having checked
// the identity key; a duplicate insert fails on the unique constraint.
func (r *SQLContactRepository) Insert(contact *Contact) error {
	now := time.Now().UTC()
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	if contact.ScrapedAt.IsZero() {
		contact.ScrapedAt = now
	}
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO contacts (
			id, user_id, platform, platform_user_id, username, display_name,
			profile_url, avatar_url, bio, email, phone, website, location, category,
			follower_count, following_count, post_count, engagement_rate,
			is_verified, is_business, scraping_source, scraping_query,
			validation_status, scraped_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		contact.ID, contact.UserID, contact.Platform, contact.PlatformUserID, contact.Username, contact.DisplayName,
		contact.ProfileURL, contact.AvatarURL, contact.Bio, contact.Email, contact.Phone, contact.Website, contact.Location, contact.Category,
		contact.FollowerCount, contact.FollowingCount, contact.PostCount, nullFloat(contact.EngagementRate),
		contact.IsVerified, contact.IsBusiness, contact.ScrapingSource, contact.ScrapingQuery,
		contact.ValidationStatus, contact.ScrapedAt.Unix(), contact.CreatedAt.Unix(), contact.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing contact row.
func (r *SQLContactRepository) Update(contact *Contact) error {
	contact.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(`
		UPDATE contacts
		SET username = ?, display_name = ?, profile_url = ?, avatar_url = ?,
		    bio = ?, email = ?, phone = ?, website = ?, location = ?, category = ?,
		    follower_count = ?, following_count = ?, post_count = ?, engagement_rate = ?,
		    is_verified = ?, is_business = ?, scraping_source = ?, scraping_query = ?,
		    validation_status = ?, scraped_at = ?, updated_at = ?
		WHERE id = ?
	`,
		contact.Username, contact.DisplayName, contact.ProfileURL, contact.AvatarURL,
		contact.Bio, contact.Email, contact.Phone, contact.Website, contact.Location, contact.Category,
		contact.FollowerCount, contact.FollowingCount, contact.PostCount, nullFloat(contact.EngagementRate),
		contact.IsVerified, contact.IsBusiness, contact.ScrapingSource, contact.ScrapingQuery,
		contact.ValidationStatus, contact.ScrapedAt.Unix(), contact.UpdatedAt.Unix(),
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

var contactSortColumns = map[string]string{
	"createdAt":      "created_at",
	"followerCount":  "follower_count",
	"engagementRate": "engagement_rate",
	"username":       "username",
}

// List returns a page of contacts plus the total match count.
func (r *SQLContactRepository) List(userID string, opts ContactListOptions) ([]Contact, int, error) {
	where := []string{"c.user_id = ?"}
	args := []any{userID}

	if opts.Platform != "" {
		where = append(where, "c.platform = ?")
		args = append(args, opts.Platform)
	}
	if opts.Search != "" {
		where = append(where, "(c.username LIKE ? OR c.display_name LIKE ? OR c.bio LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if len(opts.Tags) > 0 {
		placeholders := strings.Repeat("?,", len(opts.Tags))
		where = append(where, fmt.Sprintf(`c.id IN (
			SELECT rel.contact_id FROM contact_tag_relations rel
			JOIN contact_tags t ON t.id = rel.tag_id
			WHERE t.name IN (%s))`, placeholders[:len(placeholders)-1]))
		for _, tag := range opts.Tags {
			args = append(args, tag)
		}
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM contacts c WHERE "+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	sortColumn, ok := contactSortColumns[opts.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		direction = "ASC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT %s FROM contacts c
		WHERE %s
		ORDER BY c.%s %s
		LIMIT ? OFFSET ?
	`, contactColumns, whereClause, sortColumn, direction)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return contacts, total, nil
}

// ListForExport returns all contacts matching the export filter, unpaged.
func (r *SQLContactRepository) ListForExport(userID string, filter ExportFilter) ([]Contact, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if len(filter.Platforms) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Platforms))
		where = append(where, fmt.Sprintf("platform IN (%s)", placeholders[:len(placeholders)-1]))
		for _, p := range filter.Platforms {
			args = append(args, p)
		}
	}
	if filter.MinFollowers != nil {
		where = append(where, "follower_count >= ?")
		args = append(args, *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		where = append(where, "follower_count <= ?")
		args = append(args, *filter.MaxFollowers)
	}
	if filter.IsVerified != nil {
		where = append(where, "is_verified = ?")
		args = append(args, *filter.IsVerified)
	}
	if filter.IsBusiness != nil {
		where = append(where, "is_business = ?")
		args = append(args, *filter.IsBusiness)
	}
	if filter.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+filter.Location+"%")
	}
	if filter.Category != "" {
		where = append(where, "category LIKE ?")
		args = append(args, "%"+filter.Category+"%")
	}
	if len(filter.Tags) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Tags))
		where = append(where, fmt.Sprintf(`id IN (
			SELECT rel.contact_id FROM contact_tag_relations rel
			JOIN contact_tags t ON t.id = rel.tag_id
			WHERE t.name IN (%s))`, placeholders[:len(placeholders)-1]))
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
	}
	if filter.Start != nil {
		where = append(where, "scraped_at >= ?")
		args = append(args, filter.Start.Unix())
	}
	if filter.End != nil {
		where = append(where, "scraped_at <= ?")
		args = append(args, filter.End.Unix())
	}

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts for export: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return contacts, nil
}

func (r *SQLContactRepository) CountByUser(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM contacts WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// PlatformStats returns per-platform aggregates for a user's contacts.
func (r *SQLContactRepository) PlatformStats(userID string) ([]PlatformStat, error) {
	rows, err := r.db.Query(`
		SELECT platform, COUNT(*),
		       COALESCE(AVG(follower_count), 0),
		       COALESCE(AVG(engagement_rate), 0)
		FROM contacts
		WHERE user_id = ?
		GROUP BY platform
		ORDER BY COUNT(*) DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}
	defer rows.Close()

	var stats []PlatformStat
	for rows.Next() {
		var s PlatformStat
		if err := rows.Scan(&s.Platform, &s.Count, &s.AvgFollowers, &s.AvgEngagement); err != nil {
			return nil, fmt.Errorf("failed to scan platform stat row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platform stat rows: %w", err)
	}

	return stats, nil
}
