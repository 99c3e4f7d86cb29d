package compliance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leadcomb/lead-comb/app/database"
)

// RateLimitError is returned when a user has exhausted the hourly request
// budget for a platform.
type RateLimitError struct {
	Platform string
	Limit    int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per hour on %s", e.Limit, e.Platform)
}

// CheckResult is the outcome of a compliance check.
type CheckResult struct {
	Compliant bool
	Reason    string
}

// Gate answers per-user, per-platform "is this request allowed" queries and
// records activity after the fact. The rate-limit check is read-then-decide
// over historical log rows: two concurrent requests can both pass before
// either is logged. That window is accepted.
type Gate struct {
	settingsRepo database.ComplianceRepository
	logRepo      database.ScrapingLogRepository
}

func NewGate(settingsRepo database.ComplianceRepository, logRepo database.ScrapingLogRepository) *Gate {
	return &Gate{settingsRepo: settingsRepo, logRepo: logRepo}
}

// GetSettings returns the settings row for (userID, platform), creating and
// persisting platform defaults when none exists yet.
func (g *Gate) GetSettings(userID, platform string) (*database.ComplianceSettings, error) {
	settings, err := g.settingsRepo.Get(userID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to load compliance settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	p := policyFor(platform)
	settings = &database.ComplianceSettings{
		UserID:                userID,
		Platform:              platform,
		MaxRequestsPerHour:    p.MaxRequestsPerHour,
		MaxRequestsPerDay:     p.MaxRequestsPerDay,
		RespectRobotsTxt:      true,
		AvoidPrivateProfiles:  true,
		AvoidSensitiveContent: true,
		DataRetentionDays:     365,
		RequireConsent:        p.RequireConsent,
	}
	if err := g.settingsRepo.Insert(settings); err != nil {
		return nil, fmt.Errorf("failed to create default compliance settings: %w", err)
	}

	slog.Info("Created default compliance settings", "user", userID, "platform", platform,
		"hourly_cap", settings.MaxRequestsPerHour, "daily_cap", settings.MaxRequestsPerDay)

	return settings, nil
}

// UpdateSettings persists caller-supplied changes to an existing row.
func (g *Gate) UpdateSettings(settings *database.ComplianceSettings) error {
	if err := g.settingsRepo.Update(settings); err != nil {
		return fmt.Errorf("failed to update compliance settings: %w", err)
	}
	return nil
}

// IsCompliant is a pure decision: it does not mutate state. It rejects
// scraping types outside the platform's allowed set.
func (g *Gate) IsCompliant(userID, platform, scrapingType string, queries []string) CheckResult {
	settings, err := g.settingsRepo.Get(userID, platform)
	if err != nil || settings == nil {
		// Defensive: GetSettings auto-creates rows, so this should not occur.
		return CheckResult{Compliant: false, Reason: "no compliance settings found for platform " + platform}
	}

	if !IsTypeAllowed(platform, scrapingType) {
		return CheckResult{
			Compliant: false,
			Reason:    fmt.Sprintf("scraping type %q is not allowed on %s", scrapingType, platform),
		}
	}

	return CheckResult{Compliant: true}
}

// CheckRateLimit counts log rows within the last rolling hour against the
// configured hourly cap. It returns *RateLimitError when the cap is met or
// exceeded.
func (g *Gate) CheckRateLimit(userID, platform string) error {
	settings, err := g.GetSettings(userID, platform)
	if err != nil {
		return err
	}

	count, err := g.logRepo.CountSince(userID, platform, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		return fmt.Errorf("failed to count recent requests: %w", err)
	}

	if count >= settings.MaxRequestsPerHour {
		return &RateLimitError{Platform: platform, Limit: settings.MaxRequestsPerHour}
	}
	return nil
}

// RecordActivity bumps the informational request counter. Failures are logged
// and swallowed; recording must never fail a scrape.
func (g *Gate) RecordActivity(userID, platform, scrapingType string, contactCount int) {
	if err := g.settingsRepo.IncrementTotalRequests(userID, platform, 1); err != nil {
		slog.Warn("Failed to record scraping activity", "user", userID, "platform", platform,
			"scraping_type", scrapingType, "error", err)
		return
	}
	slog.Debug("Recorded scraping activity", "user", userID, "platform", platform,
		"scraping_type", scrapingType, "contacts", contactCount)
}
