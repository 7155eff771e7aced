// Package api implements the thin gin HTTP layer over the Pipeline
// Orchestrator: upload intake, batch vector indexing, and health
// reporting. Matching/ranking (AI search) is a declared Non-goal and is
// stubbed here, not implemented.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ats-ingest/resumeforge/pkg/models"
	"github.com/ats-ingest/resumeforge/pkg/pipeline"
	"github.com/ats-ingest/resumeforge/pkg/textextract"
)

const (
	uploadMaxBytes        = 20 << 20 // 20 MiB
	healthCheckTimeout    = 5 * time.Second
	defaultIndexBatchSize = 50
)

// Processor is the subset of pipeline.Orchestrator the upload handler
// needs.
type Processor interface {
	Process(ctx context.Context, filename, rawText string, modules map[string]bool) (*models.Resume, error)
}

// IndexRunner is the subset of pipeline.IndexBatcher the indexing routes
// need.
type IndexRunner interface {
	Run(ctx context.Context, limit int, resumeIDs []int64, force bool) (pipeline.IndexReport, error)
}

// PromptHealthChecker reports whether every required prompt row exists.
type PromptHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DatabaseHealthChecker reports database connectivity and pool stats.
type DatabaseHealthChecker interface {
	Health(ctx context.Context) (any, error)
}

// Server wires the orchestrator, index batcher, prompt store, and
// database handle into gin route handlers.
type Server struct {
	orchestrator Processor
	indexer      IndexRunner
	prompts      PromptHealthChecker
	database     DatabaseHealthChecker
	extractor    *textextract.Adapter
	logger       *slog.Logger
}

// NewServer constructs a Server.
func NewServer(orchestrator Processor, indexer IndexRunner, prompts PromptHealthChecker, database DatabaseHealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		orchestrator: orchestrator,
		indexer:      indexer,
		prompts:      prompts,
		database:     database,
		extractor:    textextract.New(),
		logger:       logger,
	}
}

// RegisterRoutes attaches every route this server handles to router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.POST("/upload-resume", s.UploadResume)
	router.POST("/index-pinecone", s.IndexPinecone)
	router.POST("/reindex-resumes", s.ReindexResumes)
	router.POST("/ai-search", s.AISearch)
	router.GET("/health", s.Health)
}

// UploadResume handles POST /upload-resume: multipart file plus optional
// extract_modules selection. The candidate_name, job_role and source form
// fields are not read.
func (s *Server) UploadResume(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, uploadMaxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	if len(data) > uploadMaxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file exceeds the size limit"})
		return
	}

	rawText, err := s.extractor.Extract(fileHeader.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modules := pipeline.ParseExtractModules(c.PostForm("extract_modules"))

	resume, err := s.orchestrator.Process(c.Request.Context(), fileHeader.Filename, rawText, modules)
	if err != nil {
		if pipeline.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, pipeline.ErrShuttingDown) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("failed to process uploaded resume", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process resume"})
		return
	}

	c.JSON(http.StatusOK, resume)
}

// IndexPinecone handles POST /index-pinecone: indexes pending resumes
// not yet in the vector store.
func (s *Server) IndexPinecone(c *gin.Context) {
	s.runIndexBatch(c, false)
}

// ReindexResumes handles POST /reindex-resumes: forces re-indexing even
// for resumes already marked indexed.
func (s *Server) ReindexResumes(c *gin.Context) {
	s.runIndexBatch(c, true)
}

func (s *Server) runIndexBatch(c *gin.Context, force bool) {
	limit := defaultIndexBatchSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	var resumeIDs []int64
	if raw := c.Query("resume_ids"); raw != "" {
		for _, tok := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "resume_ids must be a comma-separated list of integers"})
				return
			}
			resumeIDs = append(resumeIDs, id)
		}
	}

	report, err := s.indexer.Run(c.Request.Context(), limit, resumeIDs, force)
	if err != nil {
		s.logger.Error("index batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run indexing batch"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// AISearch handles POST /ai-search. Matching/ranking quality is a
// declared Non-goal; this route exists only so the contract is
// discoverable, and always returns 501.
func (s *Server) AISearch(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "ai-search is not implemented"})
}

// Health handles GET /health: reports database connectivity and the
// presence of the required (IT, other) and (non IT, other) prompts.
func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	dbHealth, dbErr := s.database.Health(ctx)
	promptErr := s.prompts.HealthCheck(ctx)

	status := http.StatusOK
	body := gin.H{"status": "healthy", "database": dbHealth, "prompts": "ready"}

	if dbErr != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database_error"] = dbErr.Error()
	}
	if promptErr != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["prompts"] = "missing required prompts"
		body["prompts_error"] = promptErr.Error()
	}

	c.JSON(status, body)
}
