// Package repository defines data access interfaces for camelguard.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/camelguard/camelguard/internal/models"
)

// ExecutionRepository persists planner/interpreter runs and the audit
// trail and tool-conflict log attached to them — the postgres half of the
// diagnostics sink audit.Sink fans out to.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, e *models.Execution) error
	GetExecution(ctx context.Context, id uuid.UUID) (*models.Execution, error)
	ListExecutions(ctx context.Context, filters ExecutionFilters) ([]models.Execution, error)

	RecordAuditEvent(ctx context.Context, ev *models.AuditEvent) error
	ListAuditEvents(ctx context.Context, executionID uuid.UUID) ([]models.AuditEvent, error)

	RecordToolConflict(ctx context.Context, c *models.ToolConflict) error
	ListToolConflicts(ctx context.Context) ([]models.ToolConflict, error)
}

// ExecutionFilters narrows ListExecutions results.
type ExecutionFilters struct {
	Status *models.ExecutionStatus
	Offset int
	Limit  int
}
