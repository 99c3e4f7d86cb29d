package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey, baseUrl string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey, baseUrl)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey, baseUrl string) {
	// Health and metrics endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.POST("/scrape", handler.APIScrape)

			api.GET("/contacts", handler.APIListContacts)
			api.GET("/contacts/:id/tags", handler.APIGetContactTags)
			api.POST("/contacts/:id/tags", handler.APIAddContactTag)
			api.DELETE("/contacts/:id/tags/:tagId", handler.APIRemoveContactTag)
			api.POST("/contacts/tag", handler.APIBulkTag)

			api.GET("/tags", handler.APIListTags)
			api.DELETE("/tags/:id", handler.APIDeleteTag)

			api.GET("/logs", handler.APIListLogs)
			api.GET("/stats", handler.APIGetStats)

			api.GET("/campaigns", handler.APIListCampaigns)
			api.POST("/campaigns", handler.APICreateCampaign)
			api.POST("/campaigns/:id/run", handler.APIRunCampaign)

			api.POST("/export", handler.APIExport)
			api.POST("/export/preview", handler.APIExportPreview)
			api.GET("/export/fields", handler.APIExportFields)

			api.GET("/compliance/:platform", handler.APIGetCompliance)
			api.PUT("/compliance/:platform", handler.APIUpdateCompliance)
		}
		log.Printf("API endpoints enabled with authentication")
	} else {
		log.Printf("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		prefix := strings.TrimSuffix(baseUrl, "/")
		endpoints := map[string]string{
			"health":  prefix + "/health",
			"metrics": prefix + "/metrics",
		}

		// Add API endpoints if authentication is enabled
		if apiAccessKey != "" {
			endpoints["scrape"] = prefix + "/api/scrape (POST, requires X-API-Key header)"
			endpoints["contacts"] = prefix + "/api/contacts (requires X-API-Key header)"
			endpoints["tags"] = prefix + "/api/tags (requires X-API-Key header)"
			endpoints["campaigns"] = prefix + "/api/campaigns (requires X-API-Key header)"
			endpoints["export"] = prefix + "/api/export (POST, requires X-API-Key header)"
			endpoints["compliance"] = prefix + "/api/compliance/<platform> (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "Lead Comb",
			"version":     "1.0.0",
			"description": "Social media contact scraping with compliance gating, auto-tagging, and export",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// Check if API key is provided and matches
		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		// Continue to next middleware/handler
		c.Next()
	}
}
