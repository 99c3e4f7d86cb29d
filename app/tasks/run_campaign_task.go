package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/metrics"
	"github.com/leadcomb/lead-comb/app/scraping"
)

// RunCampaignTask executes one campaign: a scrape batch per configured
// platform, followed by a status and schedule update on the campaign row.
type RunCampaignTask struct {
	Task
	campaign     database.Campaign
	campaignRepo database.CampaignRepository
	orchestrator *scraping.Orchestrator
}

func NewRunCampaignTask(campaign database.Campaign, campaignRepo database.CampaignRepository,
	orchestrator *scraping.Orchestrator) *RunCampaignTask {
	return &RunCampaignTask{
		Task:         NewTask(TaskTypeRunCampaign, campaign.ID),
		campaign:     campaign,
		campaignRepo: campaignRepo,
		orchestrator: orchestrator,
	}
}

func (t *RunCampaignTask) Execute(ctx context.Context) error {
	campaign := t.campaign

	var filters *scraping.Filters
	if len(campaign.Filters) > 0 {
		filters = &scraping.Filters{}
		if err := json.Unmarshal(campaign.Filters, filters); err != nil {
			return fmt.Errorf("campaign %s has invalid filters: %w", campaign.ID, err)
		}
	}

	totalSaved := 0
	platformErrs := 0
	for _, platform := range campaign.Platforms {
		result, err := t.orchestrator.ScrapeContacts(ctx, scraping.Request{
			UserID:       campaign.UserID,
			Platform:     platform,
			ScrapingType: campaign.ScrapingType,
			Queries:      campaign.TargetQueries,
			Filters:      filters,
		})
		if err != nil {
			platformErrs++
			slog.Warn("Campaign platform run failed", "campaign", campaign.ID,
				"platform", platform, "error", err)
			continue
		}
		totalSaved += result.TotalSaved
		if len(result.Errors) > 0 {
			platformErrs++
		}
	}

	now := time.Now().UTC()
	campaign.LastRunAt = &now
	campaign.ContactsFound += totalSaved

	switch {
	case platformErrs == 0:
		campaign.Status = database.CampaignStatusCompleted
	default:
		campaign.Status = database.CampaignStatusPartialSuccess
	}

	campaign.NextRunAt = nextRun(campaign.Schedule, now)
	if campaign.NextRunAt != nil {
		// Scheduled campaigns stay active between runs.
		campaign.Status = database.CampaignStatusActive
	}

	if err := t.campaignRepo.Update(&campaign); err != nil {
		return fmt.Errorf("failed to update campaign %s: %w", campaign.ID, err)
	}

	metrics.CampaignRuns.WithLabelValues(campaign.Status).Inc()
	slog.Info("Campaign run finished", "campaign", campaign.ID, "name", campaign.Name,
		"platforms", len(campaign.Platforms), "saved", totalSaved,
		"platform_errors", platformErrs, "duration", t.GetDuration())

	if platformErrs == len(campaign.Platforms) && len(campaign.Platforms) > 0 && totalSaved == 0 {
		return fmt.Errorf("campaign %s produced no contacts on any platform", campaign.ID)
	}
	return nil
}

func nextRun(schedule string, from time.Time) *time.Time {
	var next time.Time
	switch schedule {
	case database.ScheduleHourly:
		next = from.Add(time.Hour)
	case database.ScheduleDaily:
		next = from.Add(24 * time.Hour)
	default:
		return nil
	}
	return &next
}
