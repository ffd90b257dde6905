// internal/server/server.go

// Package server exposes the validation pipeline and its results over a
// JSON HTTP API backing the dashboard UI.
package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"provider-validation/internal/common/logger"
	"provider-validation/internal/dedupe"
	"provider-validation/internal/ingest"
	"provider-validation/internal/models"
	"provider-validation/internal/pipeline"
	"provider-validation/internal/store"

	"github.com/gin-gonic/gin"
)

const defaultValidationBatch = 200

// Server holds the API state: the loaded roster and the latest batch run.
type Server struct {
	orchestrator *pipeline.Orchestrator
	cache        *store.ReportCache
	logger       logger.Logger

	mu        sync.RWMutex
	providers []models.Provider
	batch     *models.BatchResult
	dedupe    *dedupe.Report
}

// New creates the API server. cache may be nil; dashboard snapshots are
// then kept in memory only.
func New(orchestrator *pipeline.Orchestrator, cache *store.ReportCache, log logger.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		cache:        cache,
		logger:       log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// LoadProviders replaces the in-memory roster.
func (s *Server) LoadProviders(providers []models.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = providers
}

// Router builds the gin handler with all API routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/validate", s.handleValidate)
		api.POST("/upload", s.handleUpload)
		api.GET("/dashboard", s.handleDashboard)
		api.GET("/providers", s.handleProviders)
		api.GET("/provider/:id", s.handleProviderDetail)
		api.GET("/email/:id", s.handleProviderEmail)
		api.GET("/review-queue", s.handleReviewQueue)
		api.GET("/stats", s.handleStats)
		api.GET("/dedupe", s.handleDedupe)
		api.GET("/trends", s.handleTrends)
		api.GET("/export/csv", s.handleExportCSV)
		api.GET("/export/json", s.handleExportJSON)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type validateRequest struct {
	NumProviders int `json:"num_providers"`
}

// handleValidate runs the loaded roster through the pipeline.
func (s *Server) handleValidate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if req.NumProviders <= 0 {
		req.NumProviders = defaultValidationBatch
	}

	s.mu.RLock()
	providers := s.providers
	s.mu.RUnlock()

	if len(providers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "No provider data loaded. Upload providers first.",
		})
		return
	}

	batch, err := s.orchestrator.ValidateBatch(c.Request.Context(), providers, req.NumProviders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	dedupeReport := s.orchestrator.DetectDuplicates(providers)

	s.mu.Lock()
	s.batch = batch
	s.dedupe = dedupeReport
	s.mu.Unlock()

	if s.cache != nil {
		ctx := c.Request.Context()
		dashboard := s.orchestrator.GenerateDashboard(batch.Results)
		if err := s.cache.SaveDashboard(ctx, &dashboard); err != nil {
			s.logger.Warn("failed to cache dashboard", map[string]interface{}{"error": err.Error()})
		}
		if err := s.cache.SaveBatch(ctx, batch); err != nil {
			s.logger.Warn("failed to cache batch", map[string]interface{}{"error": err.Error()})
		}
		if err := s.cache.SaveDedupeReport(ctx, dedupeReport); err != nil {
			s.logger.Warn("failed to cache dedupe report", map[string]interface{}{"error": err.Error()})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Validated " + strconv.Itoa(len(batch.Results)) + " providers successfully",
	})
}

// handleUpload accepts a CSV or JSON provider file and replaces the
// roster.
func (s *Server) handleUpload(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	var providers []models.Provider
	contentType := c.GetHeader("Content-Type")
	switch {
	case strings.Contains(contentType, "text/csv"):
		providers, err = ingest.ParseCSV(string(body))
	default:
		providers, err = ingest.ParseJSON(body)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if len(providers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "No usable provider rows found in upload",
		})
		return
	}

	s.LoadProviders(providers)
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"providers_loaded": len(providers),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		// Fall back to the cached snapshot from a previous run.
		if s.cache != nil {
			if dashboard, err := s.cache.LoadDashboard(c.Request.Context()); err == nil {
				c.JSON(http.StatusOK, dashboard)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "No validation results available"})
		return
	}

	dashboard := s.orchestrator.GenerateDashboard(batch.Results)
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) handleProviders(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusOK, []models.ProviderResult{})
		return
	}
	c.JSON(http.StatusOK, batch.Results)
}

func (s *Server) handleProviderDetail(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results available"})
		return
	}

	id := c.Param("id")
	for i := range batch.Results {
		if batch.Results[i].Provider.ProviderID == id {
			c.JSON(http.StatusOK, batch.Results[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
}

func (s *Server) handleProviderEmail(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results available"})
		return
	}

	email, err := s.orchestrator.EmailForProvider(batch.Results, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}

func (s *Server) handleReviewQueue(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusOK, []models.ProviderReport{})
		return
	}

	dashboard := s.orchestrator.GenerateDashboard(batch.Results)
	c.JSON(http.StatusOK, dashboard.ReviewQueue)
}

func (s *Server) handleStats(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results available"})
		return
	}
	c.JSON(http.StatusOK, batch.ProcessingStats)
}

func (s *Server) handleDedupe(c *gin.Context) {
	s.mu.RLock()
	report := s.dedupe
	s.mu.RUnlock()

	if report == nil {
		if s.cache != nil {
			if cached, err := s.cache.LoadDedupeReport(c.Request.Context()); err == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "No duplicate scan available"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleTrends(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No validation results available"})
		return
	}

	report, err := s.orchestrator.AnalyzeTrends(c.Request.Context(), batch.Results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results available"})
		return
	}

	out, err := ingest.ExportCSV(batch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="validation_results.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(out))
}

func (s *Server) handleExportJSON(c *gin.Context) {
	s.mu.RLock()
	batch := s.batch
	s.mu.RUnlock()

	if batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No results available"})
		return
	}

	out, err := ingest.ExportJSON(batch, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="validation_results.json"`)
	c.Data(http.StatusOK, "application/json", out)
}
