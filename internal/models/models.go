// Package models defines the persistence-facing value types the postgres
// repositories read and write: one execution record per planner/interpreter
// run, one audit event record per diagnostics event, and one conflict
// record per detected tool-shadowing attempt.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus mirrors interpreter.State at the persistence layer,
// using stable string values independent of the in-process state machine's
// representation.
type ExecutionStatus string

const (
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionDenied    ExecutionStatus = "denied"
	ExecutionError     ExecutionStatus = "error"
)

// Execution is one full planner -> interpreter run: the query that went
// in, the restricted-language program the planner produced, and how it
// ended. Grounded in camel/core.py:CaMeLSystem.execute's return shape,
// adapted into a row the postgres.ExecutionRepository can persist.
type Execution struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Query       string          `json:"query" db:"query"`
	Program     string          `json:"program" db:"program"`
	Result      string          `json:"result" db:"result"`
	Status      ExecutionStatus `json:"status" db:"status"`
	ErrorReason string          `json:"error_reason,omitempty" db:"error_reason"`
	StartedAt   time.Time       `json:"started_at" db:"started_at"`
	CompletedAt time.Time       `json:"completed_at" db:"completed_at"`
	DurationMs  int64           `json:"duration_ms" db:"duration_ms"`
}

// AuditEvent is the persisted form of audit.Event: one diagnostics record
// tied back to the execution it was raised during.
type AuditEvent struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	ExecutionID uuid.UUID      `json:"execution_id" db:"execution_id"`
	Severity    string         `json:"severity" db:"severity"`
	Op          string         `json:"op" db:"op"`
	Reason      string         `json:"reason" db:"reason"`
	Subject     string         `json:"subject" db:"subject"`
	Fields      map[string]any `json:"fields,omitempty" db:"fields"`
	Timestamp   time.Time      `json:"timestamp" db:"timestamp"`
}

// ToolConflict is the persisted form of registry.Conflict: one detected
// attempt to register a tool name from a source other than the one that
// first claimed it.
type ToolConflict struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Tool              string    `json:"tool" db:"tool"`
	OriginalSource    string    `json:"original_source" db:"original_source"`
	ConflictingSource string    `json:"conflicting_source" db:"conflicting_source"`
	DetectedAt        time.Time `json:"detected_at" db:"detected_at"`
}
