package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScrapeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadcomb_scrape_runs_total",
		Help: "Scrape batches processed, by platform and status.",
	}, []string{"platform", "status"})

	ScrapeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadcomb_scrape_errors_total",
		Help: "Per-query scrape failures, by platform.",
	}, []string{"platform"})

	ContactsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadcomb_contacts_saved_total",
		Help: "Contacts inserted or updated, by platform.",
	}, []string{"platform"})

	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadcomb_rate_limit_rejections_total",
		Help: "Scrape batches rejected by the hourly rate cap, by platform.",
	}, []string{"platform"})

	ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadcomb_scrape_duration_seconds",
		Help:    "Wall time of one scrape batch.",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform"})

	ExportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadcomb_export_runs_total",
		Help: "Export requests served, by format.",
	}, []string{"format"})

	CampaignRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadcomb_campaign_runs_total",
		Help: "Campaign executions, by status.",
	}, []string{"status"})
)
