package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/camelguard/camelguard/internal/audit"
	"github.com/camelguard/camelguard/internal/models"
	"github.com/camelguard/camelguard/internal/repository"
)

// ExecutionRepository implements repository.ExecutionRepository (and
// audit.Repository, so it can be handed straight to audit.NewSink) over a
// PostgreSQL connection pool, mirroring the row-per-call style the
// teacher's repository layer uses throughout.
type ExecutionRepository struct {
	db *DB
}

func NewExecutionRepository(db *DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

func (r *ExecutionRepository) CreateExecution(ctx context.Context, e *models.Execution) error {
	const query = `
		INSERT INTO executions (id, query, program, result, status, error_reason, started_at, completed_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Pool.Exec(ctx, query,
		e.ID, e.Query, e.Program, e.Result, e.Status, e.ErrorReason,
		e.StartedAt, e.CompletedAt, e.DurationMs)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

func (r *ExecutionRepository) GetExecution(ctx context.Context, id uuid.UUID) (*models.Execution, error) {
	const query = `
		SELECT id, query, program, result, status, error_reason, started_at, completed_at, duration_ms
		FROM executions WHERE id = $1`

	var e models.Execution
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Query, &e.Program, &e.Result, &e.Status, &e.ErrorReason,
		&e.StartedAt, &e.CompletedAt, &e.DurationMs)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("execution %s not found", id)
		}
		return nil, fmt.Errorf("querying execution: %w", err)
	}
	return &e, nil
}

func (r *ExecutionRepository) ListExecutions(ctx context.Context, filters repository.ExecutionFilters) ([]models.Execution, error) {
	query := `
		SELECT id, query, program, result, status, error_reason, started_at, completed_at, duration_ms
		FROM executions`
	args := []any{}
	if filters.Status != nil {
		query += " WHERE status = $1"
		args = append(args, *filters.Status)
	}
	query += " ORDER BY started_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filters.Limit, filters.Offset)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	var out []models.Execution
	for rows.Next() {
		var e models.Execution
		if err := rows.Scan(&e.ID, &e.Query, &e.Program, &e.Result, &e.Status,
			&e.ErrorReason, &e.StartedAt, &e.CompletedAt, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning execution row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExecutionRepository) RecordAuditEvent(ctx context.Context, ev *models.AuditEvent) error {
	fields, err := json.Marshal(ev.Fields)
	if err != nil {
		return fmt.Errorf("marshaling audit event fields: %w", err)
	}

	const query = `
		INSERT INTO audit_events (id, execution_id, severity, op, reason, subject, fields, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.Pool.Exec(ctx, query,
		ev.ID, ev.ExecutionID, ev.Severity, ev.Op, ev.Reason, ev.Subject, fields, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

func (r *ExecutionRepository) ListAuditEvents(ctx context.Context, executionID uuid.UUID) ([]models.AuditEvent, error) {
	const query = `
		SELECT id, execution_id, severity, op, reason, subject, fields, timestamp
		FROM audit_events WHERE execution_id = $1 ORDER BY timestamp`

	rows, err := r.db.Pool.Query(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	var out []models.AuditEvent
	for rows.Next() {
		var ev models.AuditEvent
		var fields []byte
		if err := rows.Scan(&ev.ID, &ev.ExecutionID, &ev.Severity, &ev.Op,
			&ev.Reason, &ev.Subject, &fields, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit event row: %w", err)
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &ev.Fields); err != nil {
				return nil, fmt.Errorf("unmarshaling audit event fields: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *ExecutionRepository) RecordToolConflict(ctx context.Context, c *models.ToolConflict) error {
	const query = `
		INSERT INTO tool_conflicts (id, tool, original_source, conflicting_source, detected_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, query, c.ID, c.Tool, c.OriginalSource, c.ConflictingSource, c.DetectedAt)
	if err != nil {
		return fmt.Errorf("inserting tool conflict: %w", err)
	}
	return nil
}

func (r *ExecutionRepository) ListToolConflicts(ctx context.Context) ([]models.ToolConflict, error) {
	const query = `
		SELECT id, tool, original_source, conflicting_source, detected_at
		FROM tool_conflicts ORDER BY detected_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tool conflicts: %w", err)
	}
	defer rows.Close()

	var out []models.ToolConflict
	for rows.Next() {
		var c models.ToolConflict
		if err := rows.Scan(&c.ID, &c.Tool, &c.OriginalSource, &c.ConflictingSource, &c.DetectedAt); err != nil {
			return nil, fmt.Errorf("scanning tool conflict row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordEvent implements audit.Repository by translating an audit.Event
// into a models.AuditEvent. audit.Sink supplies no execution ID, so
// callers that need one tied to an execution should insert via
// RecordAuditEvent directly instead of routing through the Sink.
func (r *ExecutionRepository) RecordEvent(ctx context.Context, ev audit.Event) error {
	return r.RecordAuditEvent(ctx, &models.AuditEvent{
		ID:        uuid.New(),
		Severity:  string(ev.Severity),
		Op:        ev.Op,
		Reason:    ev.Reason,
		Subject:   ev.Subject,
		Fields:    ev.Fields,
		Timestamp: time.Now(),
	})
}
