// Package audit provides the structured diagnostics sink every policy
// denial, shadow detection, and exfiltration trigger is reported through,
// following the teacher repository's zerolog logging idiom.
package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// Severity classifies an audit event for downstream filtering/alerting.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is one diagnostics record: an operation was attempted, and
// something the runtime cares about happened (a denial, a shadow
// conflict, a flagged export).
type Event struct {
	Severity Severity
	Op       string
	Reason   string
	Subject  string // the recipient/path/tool name the event concerns, if any
	Fields   map[string]any
}

// Repository persists audit events for later query, independent of the
// log line zerolog already emits. Implemented by internal/repository/postgres.
type Repository interface {
	RecordEvent(ctx context.Context, ev Event) error
}

// Sink fans an Event out to a zerolog.Logger and, if present, a
// Repository. The logger write always happens; the repository write is
// best-effort and its failure is itself logged rather than propagated —
// an audit backend outage must never block the execution it is observing.
type Sink struct {
	log  zerolog.Logger
	repo Repository
}

func NewSink(log zerolog.Logger, repo Repository) *Sink {
	return &Sink{log: log, repo: repo}
}

func (s *Sink) Record(ctx context.Context, ev Event) {
	logEvent := s.log.With().
		Str("op", ev.Op).
		Str("reason", ev.Reason).
		Str("subject", ev.Subject).
		Logger()

	var entry *zerolog.Event
	switch ev.Severity {
	case SeverityWarning:
		entry = logEvent.Warn()
	case SeverityCritical:
		entry = logEvent.Error()
	default:
		entry = logEvent.Info()
	}
	for k, v := range ev.Fields {
		entry = entry.Interface(k, v)
	}
	entry.Msg("camel audit event")

	if s.repo == nil {
		return
	}
	if err := s.repo.RecordEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist audit event")
	}
}
