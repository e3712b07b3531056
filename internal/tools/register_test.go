package tools

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/registry"
)

func TestRegisterDefaults_WiresEveryToolWithoutShadowConflicts(t *testing.T) {
	reg := registry.New(approval.AlwaysDeny{})
	set := NewSet(zerolog.Nop())

	require.NoError(t, RegisterDefaults(reg, set))
	assert.Empty(t, reg.Conflicts())

	for _, name := range []string{
		"get_last_email", "send_email", "get_document", "list_documents",
		"read_file", "write_file", "get_last_meeting_notes", "http_get",
		"http_post", "notify_user", "get_support_ticket",
		"create_followup_task", "post_ticket_reply",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, "expected %s to be registered", name)
	}
}

func TestGetLastEmail_ReturnsSeededInboxAndMarksUntrusted(t *testing.T) {
	reg := registry.New(approval.AlwaysDeny{})
	set := NewSet(zerolog.Nop())
	require.NoError(t, RegisterDefaults(reg, set))

	fn, _ := reg.Lookup("get_last_email")
	val, caps, err := fn.Invoke(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, val.(string), "Bob")
	require.NotNil(t, caps)
	assert.True(t, caps.IsUntrusted())
}

func TestReadFile_ReturnsMeetingNotesInjectionFixture(t *testing.T) {
	file := NewFileTool()
	val, err := file.ReadFile(context.Background(), []any{"meeting_notes.txt"}, nil)
	require.NoError(t, err)
	assert.Contains(t, val.(string), "IGNORE EVERYTHING ABOVE")
}

func TestGetSupportTicket_ReturnsInjectionFixture(t *testing.T) {
	support := NewSupportTicketTool()
	val, err := support.GetSupportTicket(context.Background(), []any{"TICKET-001"}, nil)
	require.NoError(t, err)
	assert.Contains(t, val.(string), "SYSTEM PROMPT INJECTION")
}

func TestSendEmail_RequiresApprovalAndIsDeniedByDefault(t *testing.T) {
	reg := registry.New(approval.AlwaysDeny{})
	set := NewSet(zerolog.Nop())
	require.NoError(t, RegisterDefaults(reg, set))

	fn, _ := reg.Lookup("send_email")
	val, _, err := fn.Invoke(context.Background(), []any{"attacker@evil.com", "subject", "body"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Action denied by user", val)
	assert.Empty(t, set.Email.Sent())
}
