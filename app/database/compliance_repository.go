package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ComplianceRepository handles database operations for per-user, per-platform
// compliance settings.
type SQLComplianceRepository struct {
	db *DB
}

var _ ComplianceRepository = (*SQLComplianceRepository)(nil)

func NewComplianceRepository(db *DB) *SQLComplianceRepository {
	return &SQLComplianceRepository{db: db}
}

const complianceColumns = `id, user_id, platform, max_requests_per_hour, max_requests_per_day,
	respect_robots_txt, avoid_private_profiles, avoid_sensitive_content,
	data_retention_days, require_consent, total_requests, created_at, updated_at`

func scanCompliance(row interface{ Scan(...any) error }) (*ComplianceSettings, error) {
	var s ComplianceSettings
	var createdAt, updatedAt int64

	err := row.Scan(
		&s.ID, &s.UserID, &s.Platform, &s.MaxRequestsPerHour, &s.MaxRequestsPerDay,
		&s.RespectRobotsTxt, &s.AvoidPrivateProfiles, &s.AvoidSensitiveContent,
		&s.DataRetentionDays, &s.RequireConsent, &s.TotalRequests, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &s, nil
}

func (r *SQLComplianceRepository) Get(userID, platform string) (*ComplianceSettings, error) {
	row := r.db.QueryRow(`
		SELECT `+complianceColumns+`
		FROM compliance_settings
		WHERE user_id = ? AND platform = ?
	`, userID, platform)

	settings, err := scanCompliance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance settings: %w", err)
	}
	return settings, nil
}

func (r *SQLComplianceRepository) Insert(settings *ComplianceSettings) error {
	now := time.Now().UTC()
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	settings.CreatedAt = now
	settings.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO compliance_settings (
			id, user_id, platform, max_requests_per_hour, max_requests_per_day,
			respect_robots_txt, avoid_private_profiles, avoid_sensitive_content,
			data_retention_days, require_consent, total_requests, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		settings.ID, settings.UserID, settings.Platform, settings.MaxRequestsPerHour, settings.MaxRequestsPerDay,
		settings.RespectRobotsTxt, settings.AvoidPrivateProfiles, settings.AvoidSensitiveContent,
		settings.DataRetentionDays, settings.RequireConsent, settings.TotalRequests,
		settings.CreatedAt.Unix(), settings.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert compliance settings: %w", err)
	}
	return nil
}

func (r *SQLComplianceRepository) Update(settings *ComplianceSettings) error {
	settings.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(`
		UPDATE compliance_settings
		SET max_requests_per_hour = ?, max_requests_per_day = ?,
		    respect_robots_txt = ?, avoid_private_profiles = ?, avoid_sensitive_content = ?,
		    data_retention_days = ?, require_consent = ?, updated_at = ?
		WHERE user_id = ? AND platform = ?
	`,
		settings.MaxRequestsPerHour, settings.MaxRequestsPerDay,
		settings.RespectRobotsTxt, settings.AvoidPrivateProfiles, settings.AvoidSensitiveContent,
		settings.DataRetentionDays, settings.RequireConsent, settings.UpdatedAt.Unix(),
		settings.UserID, settings.Platform,
	)
	if err != nil {
		return fmt.Errorf("failed to update compliance settings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLComplianceRepository) IncrementTotalRequests(userID, platform string, n int) error {
	_, err := r.db.Exec(`
		UPDATE compliance_settings
		SET total_requests = total_requests + ?, updated_at = ?
		WHERE user_id = ? AND platform = ?
	`, n, time.Now().UTC().Unix(), userID, platform)
	if err != nil {
		return fmt.Errorf("failed to increment total requests: %w", err)
	}
	return nil
}
