package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScrapingLogRepository handles database operations for scraping audit logs.
type SQLScrapingLogRepository struct {
	db *DB
}

var _ ScrapingLogRepository = (*SQLScrapingLogRepository)(nil)

func NewScrapingLogRepository(db *DB) *SQLScrapingLogRepository {
	return &SQLScrapingLogRepository{db: db}
}

func (r *SQLScrapingLogRepository) Insert(log *ScrapingLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO scraping_logs (
			id, user_id, platform, scraping_type, query,
			contacts_found, contacts_saved, status, error_message, response_time_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID, log.UserID, log.Platform, log.ScrapingType, log.Query,
		log.ContactsFound, log.ContactsSaved, log.Status, log.ErrorMessage,
		log.ResponseTime.Milliseconds(), log.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scraping log: %w", err)
	}
	return nil
}

// CountSince counts log rows for a user and platform created at or after the
// given time. Used by the rate-limit gate.
func (r *SQLScrapingLogRepository) CountSince(userID, platform string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM scraping_logs
		WHERE user_id = ? AND platform = ? AND created_at >= ?
	`, userID, platform, since.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scraping logs: %w", err)
	}
	return count, nil
}

func (r *SQLScrapingLogRepository) List(userID string, opts LogListOptions) ([]ScrapingLog, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, opts.Platform)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM scraping_logs WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count scraping logs: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(`
		SELECT id, user_id, platform, scraping_type, query,
		       contacts_found, contacts_saved, status, error_message, response_time_ms, created_at
		FROM scraping_logs
		WHERE `+whereClause+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scraping logs: %w", err)
	}
	defer rows.Close()

	var logs []ScrapingLog
	for rows.Next() {
		var log ScrapingLog
		var responseTimeMs, createdAt int64
		if err := rows.Scan(
			&log.ID, &log.UserID, &log.Platform, &log.ScrapingType, &log.Query,
			&log.ContactsFound, &log.ContactsSaved, &log.Status, &log.ErrorMessage,
			&responseTimeMs, &createdAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan scraping log row: %w", err)
		}
		log.ResponseTime = time.Duration(responseTimeMs) * time.Millisecond
		log.CreatedAt = time.Unix(createdAt, 0).UTC()
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating scraping log rows: %w", err)
	}

	return logs, total, nil
}

// DailyActivity returns per-day request and contact counts since the given
// time, newest day first.
func (r *SQLScrapingLogRepository) DailyActivity(userID string, since time.Time) ([]ActivityStat, error) {
	rows, err := r.db.Query(`
		SELECT date(created_at, 'unixepoch'), COUNT(*), COALESCE(SUM(contacts_found), 0)
		FROM scraping_logs
		WHERE user_id = ? AND created_at >= ?
		GROUP BY date(created_at, 'unixepoch')
		ORDER BY date(created_at, 'unixepoch') DESC
	`, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get daily activity: %w", err)
	}
	defer rows.Close()

	var stats []ActivityStat
	for rows.Next() {
		var s ActivityStat
		if err := rows.Scan(&s.Date, &s.Requests, &s.ContactsFound); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return stats, nil
}
