package api

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/camelguard/camelguard/internal/models"
	"github.com/camelguard/camelguard/internal/orchestrator"
	"github.com/camelguard/camelguard/internal/repository"
)

// validID matches a UUID or a slug: non-empty, max 64 chars, safe chars only.
var validID = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,62}[a-zA-Z0-9]$`)

// validateID returns true if id is a valid UUID or slug.
func validateID(id string) bool {
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	return validID.MatchString(id)
}

// Handlers holds all API handlers with their dependencies.
type Handlers struct {
	System *orchestrator.System
	Execs  repository.ExecutionRepository
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(system *orchestrator.System, execs repository.ExecutionRepository) *Handlers {
	return &Handlers{System: system, Execs: execs}
}

// -----------------------------------------------------------------------------
// Execute
// -----------------------------------------------------------------------------

// ExecuteRequest is the body of POST /api/v1/execute.
type ExecuteRequest struct {
	Query string `json:"query" binding:"required"`
}

// Execute runs a user query through the planner/interpreter pipeline and
// returns the result, or the reason the run was refused.
func (h *Handlers) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.System.Execute(c.Request.Context(), req.Query)
	if err != nil {
		log.Warn().Err(err).Str("query", req.Query).Msg("execution refused")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// -----------------------------------------------------------------------------
// Execution introspection
// -----------------------------------------------------------------------------

// ListExecutions returns a page of past executions, optionally filtered by status.
func (h *Handlers) ListExecutions(c *gin.Context) {
	ctx := c.Request.Context()

	filters := repository.ExecutionFilters{Limit: 50}
	if s := c.Query("status"); s != "" {
		status := models.ExecutionStatus(s)
		filters.Status = &status
	}

	execs, err := h.Execs.ListExecutions(ctx, filters)
	if err != nil {
		log.Error().Err(err).Msg("failed to list executions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list executions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": execs, "count": len(execs)})
}

// GetExecution returns a single execution by ID.
func (h *Handlers) GetExecution(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	execID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid execution ID format"})
		return
	}

	exec, err := h.Execs.GetExecution(ctx, execID)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get execution")
		c.JSON(http.StatusNotFound, gin.H{"error": "execution not found"})
		return
	}

	c.JSON(http.StatusOK, exec)
}

// GetExecutionAudit returns the audit trail recorded for one execution.
func (h *Handlers) GetExecutionAudit(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	execID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid execution ID format"})
		return
	}

	events, err := h.Execs.ListAuditEvents(ctx, execID)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to list audit events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// ListToolConflicts returns every detected tool-shadowing attempt.
func (h *Handlers) ListToolConflicts(c *gin.Context) {
	ctx := c.Request.Context()

	conflicts, err := h.Execs.ListToolConflicts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tool conflicts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tool conflicts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts, "count": len(conflicts)})
}
