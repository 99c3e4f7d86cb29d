package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadcomb/lead-comb/app/compliance"
	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/export"
	"github.com/leadcomb/lead-comb/app/scraping"
	"github.com/leadcomb/lead-comb/app/tagging"
	"github.com/leadcomb/lead-comb/app/tasks"
)

type Handler struct {
	contactRepo  database.ContactRepository
	logRepo      database.ScrapingLogRepository
	campaignRepo database.CampaignRepository
	gate         *compliance.Gate
	tagger       *tagging.Service
	orchestrator *scraping.Orchestrator
	exporter     *export.Exporter
	scheduler    tasks.TaskSchedulerInterface
}

func NewHandler(contactRepo database.ContactRepository, logRepo database.ScrapingLogRepository,
	campaignRepo database.CampaignRepository, gate *compliance.Gate, tagger *tagging.Service,
	orchestrator *scraping.Orchestrator, exporter *export.Exporter,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		contactRepo:  contactRepo,
		logRepo:      logRepo,
		campaignRepo: campaignRepo,
		gate:         gate,
		tagger:       tagger,
		orchestrator: orchestrator,
		exporter:     exporter,
		scheduler:    scheduler,
	}
}

// userID resolves the acting user. A reverse proxy in front of the service
// sets the header per authenticated account.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "default"
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if contactCount, err := h.contactRepo.CountByUser(userID(c)); err == nil {
		health["contacts"] = contactCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	result, err := h.orchestrator.ScrapeContacts(c.Request.Context(), scraping.Request{
		UserID:       userID(c),
		Platform:     req.Platform,
		ScrapingType: req.ScrapingType,
		Queries:      req.Queries,
		Limit:        req.Limit,
		Filters:      req.Filters,
	})
	if err != nil {
		h.writeScrapeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts":        contactViews(result.Contacts),
		"totalFound":      result.TotalFound,
		"totalSaved":      result.TotalSaved,
		"errors":          result.Errors,
		"executionTimeMs": result.ExecutionTime.Milliseconds(),
	})
}

func (h *Handler) writeScrapeError(c *gin.Context, err error) {
	var (
		validationErr *scraping.ValidationError
		complianceErr *scraping.ComplianceError
		rateErr       *compliance.RateLimitError
		configErr     *scraping.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "message": validationErr.Message})
	case errors.As(err, &complianceErr):
		c.JSON(http.StatusForbidden, gin.H{"error": "Compliance check failed", "message": complianceErr.Reason})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded", "message": rateErr.Error()})
	case errors.As(err, &configErr):
		slog.Error("Scrape configuration error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Configuration error"})
	default:
		slog.Error("Scrape failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scrape failed"})
	}
}

func (h *Handler) APIListContacts(c *gin.Context) {
	opts := database.ContactListOptions{
		Platform:  c.Query("platform"),
		Search:    c.Query("search"),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 50),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if tags := c.Query("tags"); tags != "" {
		opts.Tags = strings.Split(tags, ",")
	}

	contacts, total, err := h.contactRepo.List(userID(c), opts)
	if err != nil {
		slog.Error("Database error", "operation", "list_contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts": contactViews(contacts),
		"total":    total,
		"page":     opts.Page,
		"limit":    opts.Limit,
	})
}

func (h *Handler) APIGetContactTags(c *gin.Context) {
	contact, err := h.contactRepo.GetByID(c.Param("id"))
	if err != nil || contact.UserID != userID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	contactTags, err := h.tagger.GetContactTags(contact.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_contact_tags", "contact", contact.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": contactTags, "total": len(contactTags)})
}

func (h *Handler) APIAddContactTag(c *gin.Context) {
	var req addTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	tag, err := h.tagger.AddTagToContact(userID(c), c.Param("id"), req.TagName, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		case errors.Is(err, tagging.ErrEmptyTagName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag name"})
		default:
			slog.Error("Failed to add tag", "contact", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add tag"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tagView(*tag)})
}

func (h *Handler) APIRemoveContactTag(c *gin.Context) {
	contact, err := h.contactRepo.GetByID(c.Param("id"))
	if err != nil || contact.UserID != userID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	if err := h.tagger.RemoveTagFromContact(contact.ID, c.Param("tagId")); err != nil {
		slog.Error("Failed to remove tag", "contact", contact.ID, "tag", c.Param("tagId"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove tag"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) APIBulkTag(c *gin.Context) {
	var req bulkTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	tagged, failures := h.tagger.BulkTagContacts(userID(c), req.ContactIDs, req.TagName, req.Color)

	c.JSON(http.StatusOK, gin.H{"tagged": tagged, "errors": failures})
}

func (h *Handler) APIListTags(c *gin.Context) {
	userTags, err := h.tagger.GetUserTags(userID(c))
	if err != nil {
		slog.Error("Database error", "operation", "list_tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := make([]map[string]interface{}, 0, len(userTags))
	for _, tag := range userTags {
		views = append(views, tagView(tag))
	}

	c.JSON(http.StatusOK, gin.H{"tags": views, "total": len(views)})
}

func (h *Handler) APIDeleteTag(c *gin.Context) {
	if err := h.tagger.DeleteTag(userID(c), c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		slog.Error("Failed to delete tag", "tag", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) APIListLogs(c *gin.Context) {
	opts := database.LogListOptions{
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
		Page:     intQuery(c, "page", 1),
		Limit:    intQuery(c, "limit", 50),
	}

	logs, total, err := h.logRepo.List(userID(c), opts)
	if err != nil {
		slog.Error("Database error", "operation", "list_logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": total,
		"page":  opts.Page,
		"limit": opts.Limit,
	})
}

func (h *Handler) APIGetStats(c *gin.Context) {
	user := userID(c)

	total, err := h.contactRepo.CountByUser(user)
	if err != nil {
		slog.Error("Database error", "operation", "count_contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := gin.H{"totalContacts": total}

	if platformStats, err := h.contactRepo.PlatformStats(user); err == nil {
		stats["platforms"] = platformStats
	}
	if activity, err := h.logRepo.DailyActivity(user, time.Now().UTC().AddDate(0, 0, -7)); err == nil {
		stats["dailyActivity"] = activity
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APICreateCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if req.Schedule != "" && req.Schedule != database.ScheduleHourly && req.Schedule != database.ScheduleDaily {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule", "message": "schedule must be hourly, daily, or empty"})
		return
	}

	filters := json.RawMessage("{}")
	if req.Filters != nil {
		encoded, err := json.Marshal(req.Filters)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters"})
			return
		}
		filters = encoded
	}

	campaign := &database.Campaign{
		UserID:        userID(c),
		Name:          req.Name,
		Description:   req.Description,
		Platforms:     req.Platforms,
		ScrapingType:  req.ScrapingType,
		TargetQueries: req.TargetQueries,
		Filters:       filters,
		Schedule:      req.Schedule,
	}
	if req.Schedule != "" {
		next := time.Now().UTC()
		campaign.NextRunAt = &next
		campaign.Status = database.CampaignStatusActive
	}

	if err := h.campaignRepo.Insert(campaign); err != nil {
		slog.Error("Failed to create campaign", "name", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"campaign": campaign})
}

func (h *Handler) APIListCampaigns(c *gin.Context) {
	opts := database.CampaignListOptions{
		Status: c.Query("status"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 50),
	}

	campaigns, total, err := h.campaignRepo.List(userID(c), opts)
	if err != nil {
		slog.Error("Database error", "operation", "list_campaigns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      opts.Page,
		"limit":     opts.Limit,
	})
}

func (h *Handler) APIRunCampaign(c *gin.Context) {
	campaign, err := h.campaignRepo.GetByID(userID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		slog.Error("Database error", "operation", "get_campaign", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	task := tasks.NewRunCampaignTask(*campaign, h.campaignRepo, h.orchestrator)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue campaign run", "campaign", campaign.ID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "campaignId": campaign.ID})
}

func (h *Handler) APIExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	file, err := h.exporter.Export(userID(c), req.Filter.toFilter(), export.Options{
		Format:           req.Format,
		Fields:           req.Fields,
		IncludeAnalytics: req.IncludeAnalytics,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Export failed", "message": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Name)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) APIExportPreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	rows, total, err := h.exporter.Preview(userID(c), req.Filter.toFilter(), req.Fields)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Preview failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": total})
}

func (h *Handler) APIExportFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": export.Fields()})
}

func (h *Handler) APIGetCompliance(c *gin.Context) {
	platform := c.Param("platform")
	if !compliance.KnownPlatform(platform) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown platform"})
		return
	}

	settings, err := h.gate.GetSettings(userID(c), platform)
	if err != nil {
		slog.Error("Failed to load compliance settings", "platform", platform, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load compliance settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings":     settings,
		"allowedTypes": compliance.AllowedTypes(platform),
	})
}

func (h *Handler) APIUpdateCompliance(c *gin.Context) {
	platform := c.Param("platform")
	if !compliance.KnownPlatform(platform) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown platform"})
		return
	}

	var req complianceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	settings, err := h.gate.GetSettings(userID(c), platform)
	if err != nil {
		slog.Error("Failed to load compliance settings", "platform", platform, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load compliance settings"})
		return
	}

	if req.MaxRequestsPerHour != nil {
		settings.MaxRequestsPerHour = *req.MaxRequestsPerHour
	}
	if req.MaxRequestsPerDay != nil {
		settings.MaxRequestsPerDay = *req.MaxRequestsPerDay
	}
	if req.RespectRobotsTxt != nil {
		settings.RespectRobotsTxt = *req.RespectRobotsTxt
	}
	if req.AvoidPrivateProfiles != nil {
		settings.AvoidPrivateProfiles = *req.AvoidPrivateProfiles
	}
	if req.AvoidSensitiveContent != nil {
		settings.AvoidSensitiveContent = *req.AvoidSensitiveContent
	}
	if req.DataRetentionDays != nil {
		settings.DataRetentionDays = *req.DataRetentionDays
	}
	if req.RequireConsent != nil {
		settings.RequireConsent = *req.RequireConsent
	}

	if err := h.gate.UpdateSettings(settings); err != nil {
		slog.Error("Failed to update compliance settings", "platform", platform, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update compliance settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func contactViews(contacts []database.Contact) []map[string]interface{} {
	views := make([]map[string]interface{}, 0, len(contacts))
	for i := range contacts {
		views = append(views, contactView(&contacts[i]))
	}
	return views
}

func contactView(contact *database.Contact) map[string]interface{} {
	view := map[string]interface{}{
		"id":               contact.ID,
		"platform":         contact.Platform,
		"platformUserId":   contact.PlatformUserID,
		"username":         contact.Username,
		"displayName":      contact.DisplayName,
		"profileUrl":       contact.ProfileURL,
		"bio":              contact.Bio,
		"location":         contact.Location,
		"category":         contact.Category,
		"followerCount":    contact.FollowerCount,
		"followingCount":   contact.FollowingCount,
		"postCount":        contact.PostCount,
		"isVerified":       contact.IsVerified,
		"isBusiness":       contact.IsBusiness,
		"scrapingQuery":    contact.ScrapingQuery,
		"validationStatus": contact.ValidationStatus,
		"scrapedAt":        contact.ScrapedAt,
	}
	if contact.EngagementRate != nil {
		view["engagementRate"] = *contact.EngagementRate
	}
	if contact.Email != "" {
		view["email"] = contact.Email
	}
	if contact.Website != "" {
		view["website"] = contact.Website
	}
	return view
}

func tagView(tag database.Tag) map[string]interface{} {
	return map[string]interface{}{
		"id":            tag.ID,
		"name":          tag.Name,
		"color":         tag.Color,
		"description":   tag.Description,
		"isSystem":      tag.IsSystem,
		"contactsCount": tag.ContactsCount,
		"createdAt":     tag.CreatedAt,
	}
}
