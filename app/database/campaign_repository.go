package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CampaignRepository handles database operations for scraping campaigns.
// Platform and query lists are stored as JSON text columns.
type SQLCampaignRepository struct {
	db *DB
}

var _ CampaignRepository = (*SQLCampaignRepository)(nil)

func NewCampaignRepository(db *DB) *SQLCampaignRepository {
	return &SQLCampaignRepository{db: db}
}

const campaignColumns = `id, user_id, name, description, platforms, scraping_type,
	target_queries, filters, schedule, status, contacts_found,
	last_run_at, next_run_at, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*Campaign, error) {
	var c Campaign
	var platforms, queries, filters string
	var lastRunAt, nextRunAt sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &platforms, &c.ScrapingType,
		&queries, &filters, &c.Schedule, &c.Status, &c.ContactsFound,
		&lastRunAt, &nextRunAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(platforms), &c.Platforms); err != nil {
		return nil, fmt.Errorf("failed to decode campaign platforms: %w", err)
	}
	if err := json.Unmarshal([]byte(queries), &c.TargetQueries); err != nil {
		return nil, fmt.Errorf("failed to decode campaign queries: %w", err)
	}
	c.Filters = json.RawMessage(filters)

	if lastRunAt.Valid {
		t := time.Unix(lastRunAt.Int64, 0).UTC()
		c.LastRunAt = &t
	}
	if nextRunAt.Valid {
		t := time.Unix(nextRunAt.Int64, 0).UTC()
		c.NextRunAt = &t
	}
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &c, nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *SQLCampaignRepository) Insert(campaign *Campaign) error {
	now := time.Now().UTC()
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.Status == "" {
		campaign.Status = CampaignStatusDraft
	}
	if len(campaign.Filters) == 0 {
		campaign.Filters = json.RawMessage("{}")
	}
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	platforms, err := encodeList(campaign.Platforms)
	if err != nil {
		return fmt.Errorf("failed to encode campaign platforms: %w", err)
	}
	queries, err := encodeList(campaign.TargetQueries)
	if err != nil {
		return fmt.Errorf("failed to encode campaign queries: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO campaigns (
			id, user_id, name, description, platforms, scraping_type,
			target_queries, filters, schedule, status, contacts_found,
			last_run_at, next_run_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		campaign.ID, campaign.UserID, campaign.Name, campaign.Description, platforms, campaign.ScrapingType,
		queries, string(campaign.Filters), campaign.Schedule, campaign.Status, campaign.ContactsFound,
		nullTime(campaign.LastRunAt), nullTime(campaign.NextRunAt),
		campaign.CreatedAt.Unix(), campaign.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

func (r *SQLCampaignRepository) Update(campaign *Campaign) error {
	campaign.UpdatedAt = time.Now().UTC()

	platforms, err := encodeList(campaign.Platforms)
	if err != nil {
		return fmt.Errorf("failed to encode campaign platforms: %w", err)
	}
	queries, err := encodeList(campaign.TargetQueries)
	if err != nil {
		return fmt.Errorf("failed to encode campaign queries: %w", err)
	}

	res, err := r.db.Exec(`
		UPDATE campaigns
		SET name = ?, description = ?, platforms = ?, scraping_type = ?,
		    target_queries = ?, filters = ?, schedule = ?, status = ?,
		    contacts_found = ?, last_run_at = ?, next_run_at = ?, updated_at = ?
		WHERE id = ?
	`,
		campaign.Name, campaign.Description, platforms, campaign.ScrapingType,
		queries, string(campaign.Filters), campaign.Schedule, campaign.Status,
		campaign.ContactsFound, nullTime(campaign.LastRunAt), nullTime(campaign.NextRunAt),
		campaign.UpdatedAt.Unix(), campaign.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLCampaignRepository) GetByID(userID, id string) (*Campaign, error) {
	row := r.db.QueryRow(`
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = ? AND user_id = ?
	`, id, userID)

	campaign, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

func (r *SQLCampaignRepository) List(userID string, opts CampaignListOptions) ([]Campaign, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM campaigns WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(`
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE `+whereClause+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		campaigns = append(campaigns, *campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	return campaigns, total, nil
}

func (r *SQLCampaignRepository) ListDue(now time.Time) ([]Campaign, error) {
	rows, err := r.db.Query(`
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE schedule != '' AND next_run_at IS NOT NULL AND next_run_at <= ?
		ORDER BY next_run_at
		LIMIT 50
	`, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list due campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		campaigns = append(campaigns, *campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	return campaigns, nil
}
