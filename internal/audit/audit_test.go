package audit

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	events []Event
	err    error
}

func (r *fakeRepo) RecordEvent(ctx context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestSink_RecordLogsAndPersists(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	repo := &fakeRepo{}
	sink := NewSink(logger, repo)

	sink.Record(context.Background(), Event{
		Severity: SeverityWarning,
		Op:       "send_email",
		Reason:   "recipient domain blocked",
		Subject:  "attacker@evil.com",
	})

	assert.Contains(t, buf.String(), "send_email")
	require.Len(t, repo.events, 1)
	assert.Equal(t, "recipient domain blocked", repo.events[0].Reason)
}

func TestSink_RepositoryFailureDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	repo := &fakeRepo{err: assertErr("db down")}
	sink := NewSink(logger, repo)

	assert.NotPanics(t, func() {
		sink.Record(context.Background(), Event{Op: "x", Reason: "y"})
	})
}

func TestSink_NilRepositoryIsFine(t *testing.T) {
	sink := NewSink(zerolog.Nop(), nil)
	assert.NotPanics(t, func() {
		sink.Record(context.Background(), Event{Op: "x"})
	})
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
