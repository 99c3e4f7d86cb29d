package scraping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/leadcomb/lead-comb/app/compliance"
	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/metrics"
	"github.com/leadcomb/lead-comb/app/scraper"
	"github.com/leadcomb/lead-comb/app/tagging"
)

const maxQueryLength = 100

// DefaultQuery labels contacts whose candidate carried no originating query.
const DefaultQuery = "bulk_import"

// Request describes one scrape batch: one platform, one scraping type, one or
// more queries, all on behalf of a single user.
type Request struct {
	UserID       string
	Platform     string
	ScrapingType string
	Queries      []string
	Limit        int
	Filters      *Filters
}

// Result summarizes a completed batch. Errors holds per-query and per-contact
// soft failures; the batch as a whole still succeeded.
type Result struct {
	Contacts      []database.Contact
	TotalFound    int
	TotalSaved    int
	Errors        []string
	ExecutionTime time.Duration
}

// Orchestrator runs the scrape pipeline: compliance checks, fetching,
// filtering, persistence, auto-tagging, and audit logging.
type Orchestrator struct {
	source      scraper.Source
	gate        *compliance.Gate
	contactRepo database.ContactRepository
	logRepo     database.ScrapingLogRepository
	tagger      *tagging.Service
	limiter     *rate.Limiter
}

// NewOrchestrator wires the pipeline. queryInterval paces successive queries
// within one batch; zero disables pacing.
func NewOrchestrator(source scraper.Source, gate *compliance.Gate, contactRepo database.ContactRepository,
	logRepo database.ScrapingLogRepository, tagger *tagging.Service, queryInterval time.Duration) *Orchestrator {

	limit := rate.Inf
	if queryInterval > 0 {
		limit = rate.Every(queryInterval)
	}
	return &Orchestrator{
		source:      source,
		gate:        gate,
		contactRepo: contactRepo,
		logRepo:     logRepo,
		tagger:      tagger,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

type queryOutcome struct {
	query        string
	found        int
	responseTime time.Duration
	err          error
}

// ScrapeContacts runs one batch. Fatal errors (validation, compliance, rate
// limit, settings) abort before any fetch; per-query and per-contact failures
// are collected in Result.Errors and the rest of the batch proceeds.
func (o *Orchestrator) ScrapeContacts(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if _, err := o.gate.GetSettings(req.UserID, req.Platform); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	if err := validateQueries(req.Queries); err != nil {
		return nil, err
	}

	if check := o.gate.IsCompliant(req.UserID, req.Platform, req.ScrapingType, req.Queries); !check.Compliant {
		return nil, &ComplianceError{Reason: check.Reason}
	}

	if err := o.gate.CheckRateLimit(req.UserID, req.Platform); err != nil {
		var rateErr *compliance.RateLimitError
		if errors.As(err, &rateErr) {
			metrics.RateLimitRejections.WithLabelValues(req.Platform).Inc()
		}
		return nil, err
	}

	var (
		candidates []scraper.Candidate
		outcomes   []queryOutcome
		batchErrs  []string
	)
	for i, query := range req.Queries {
		if i > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		fetchStart := time.Now()
		fetched, err := o.source.Fetch(ctx, req.Platform, req.ScrapingType, query, scraper.Options{Limit: req.Limit})
		elapsed := time.Since(fetchStart)

		if err != nil {
			msg := fmt.Sprintf("Failed to scrape query %q: %v", query, err)
			batchErrs = append(batchErrs, msg)
			outcomes = append(outcomes, queryOutcome{query: query, responseTime: elapsed, err: err})
			metrics.ScrapeErrors.WithLabelValues(req.Platform).Inc()
			slog.Warn("Scrape query failed", "platform", req.Platform, "query", query, "error", err)
			continue
		}

		filtered := ApplyFilters(fetched, req.Filters)
		candidates = append(candidates, filtered...)
		outcomes = append(outcomes, queryOutcome{query: query, found: len(filtered), responseTime: elapsed})
	}

	saved, savedCandidates, saveErrs := o.saveContacts(req, candidates)
	batchErrs = append(batchErrs, saveErrs...)

	o.autoTag(saved, savedCandidates)
	o.writeLogs(req, outcomes, saved)
	o.gate.RecordActivity(req.UserID, req.Platform, req.ScrapingType, len(saved))

	status := database.LogStatusSuccess
	if len(batchErrs) > 0 {
		status = database.LogStatusPartialSuccess
	}
	metrics.ScrapeRuns.WithLabelValues(req.Platform, status).Inc()
	metrics.ContactsSaved.WithLabelValues(req.Platform).Add(float64(len(saved)))
	metrics.ScrapeDuration.WithLabelValues(req.Platform).Observe(time.Since(start).Seconds())

	result := &Result{
		Contacts:      saved,
		TotalFound:    len(candidates),
		TotalSaved:    len(saved),
		Errors:        batchErrs,
		ExecutionTime: time.Since(start),
	}

	slog.Info("Scrape batch finished", "platform", req.Platform, "scraping_type", req.ScrapingType,
		"queries", len(req.Queries), "found", result.TotalFound, "saved", result.TotalSaved,
		"errors", len(result.Errors), "duration", result.ExecutionTime)

	return result, nil
}

func validateQueries(queries []string) error {
	if len(queries) == 0 {
		return &ValidationError{Message: "at least one query is required"}
	}
	for _, query := range queries {
		if strings.TrimSpace(query) == "" {
			return &ValidationError{Message: "queries must not be empty"}
		}
		if len(query) > maxQueryLength {
			return &ValidationError{Message: fmt.Sprintf("query exceeds %d characters", maxQueryLength)}
		}
	}
	return nil
}

// saveContacts upserts candidates by (user, platform, platform user id).
// Individual failures are reported but do not abort the batch.
func (o *Orchestrator) saveContacts(req Request, candidates []scraper.Candidate) ([]database.Contact, []scraper.Candidate, []string) {
	var (
		saved    []database.Contact
		sources  []scraper.Candidate
		failures []string
	)
	for _, candidate := range candidates {
		if candidate.PlatformUserID == "" {
			failures = append(failures, fmt.Sprintf("Failed to save contact %q: missing platform user id", candidate.Username))
			continue
		}

		contact, err := o.upsert(req, &candidate)
		if err != nil {
			failures = append(failures, fmt.Sprintf("Failed to save contact %q: %v", candidate.Username, err))
			slog.Warn("Contact save failed", "platform", req.Platform, "username", candidate.Username, "error", err)
			continue
		}
		saved = append(saved, *contact)
		sources = append(sources, candidate)
	}
	return saved, sources, failures
}

func (o *Orchestrator) upsert(req Request, candidate *scraper.Candidate) (*database.Contact, error) {
	existing, err := o.contactRepo.GetByIdentity(req.UserID, req.Platform, candidate.PlatformUserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	contact := existing
	if contact == nil {
		contact = &database.Contact{
			UserID:         req.UserID,
			Platform:       req.Platform,
			PlatformUserID: candidate.PlatformUserID,
		}
	}

	contact.Username = candidate.Username
	contact.DisplayName = candidate.DisplayName
	contact.ProfileURL = candidate.ProfileURL
	contact.AvatarURL = candidate.AvatarURL
	contact.Bio = candidate.Bio
	contact.Email = candidate.Email
	contact.Phone = candidate.Phone
	contact.Website = candidate.Website
	contact.Location = candidate.Location
	contact.Category = candidate.Category
	contact.FollowerCount = candidate.FollowerCount
	contact.FollowingCount = candidate.FollowingCount
	contact.PostCount = candidate.PostCount
	contact.EngagementRate = candidate.EngagementRate
	contact.IsVerified = candidate.IsVerified
	contact.IsBusiness = candidate.IsBusiness
	contact.ScrapingSource = req.ScrapingType
	contact.ValidationStatus = database.ValidationValid
	contact.ScrapedAt = now

	contact.ScrapingQuery = candidate.ScrapingQuery
	if contact.ScrapingQuery == "" {
		contact.ScrapingQuery = DefaultQuery
	}

	if existing == nil {
		err = o.contactRepo.Insert(contact)
	} else {
		err = o.contactRepo.Update(contact)
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// autoTag derives tags for each saved contact. Failures are logged and
// swallowed; tagging must never fail a scrape.
func (o *Orchestrator) autoTag(contacts []database.Contact, candidates []scraper.Candidate) {
	for i := range contacts {
		if _, err := o.tagger.AutoTagContact(&contacts[i], candidates[i].Tags); err != nil {
			slog.Warn("Auto-tagging failed", "contact", contacts[i].ID, "error", err)
		}
	}
}

// writeLogs records one audit row per query, with saved counts attributed by
// originating query. Log write failures are non-fatal.
func (o *Orchestrator) writeLogs(req Request, outcomes []queryOutcome, saved []database.Contact) {
	savedByQuery := make(map[string]int, len(outcomes))
	for _, contact := range saved {
		savedByQuery[contact.ScrapingQuery]++
	}

	for _, outcome := range outcomes {
		row := &database.ScrapingLog{
			UserID:        req.UserID,
			Platform:      req.Platform,
			ScrapingType:  req.ScrapingType,
			Query:         outcome.query,
			ContactsFound: outcome.found,
			ContactsSaved: savedByQuery[outcome.query],
			Status:        database.LogStatusSuccess,
			ResponseTime:  outcome.responseTime,
		}
		if outcome.err != nil {
			row.Status = database.LogStatusPartialSuccess
			row.ErrorMessage = fmt.Sprintf("Failed to scrape query %q: %v", outcome.query, outcome.err)
		}
		if err := o.logRepo.Insert(row); err != nil {
			slog.Warn("Failed to write scraping log", "platform", req.Platform, "query", outcome.query, "error", err)
		}
	}
}
