package tools

import (
	"context"
	"fmt"
	"sync"
)

// Email mirrors camel/tools.py:Email.
type Email struct {
	Sender    string
	Recipient string
	Subject   string
	Body      string
	Timestamp string
}

// EmailTool holds an in-memory inbox/sent log, the same shape
// camel/tools.py:EmailTool uses for its demo data.
type EmailTool struct {
	mu     sync.Mutex
	inbox  []Email
	sent   []Email
}

func NewEmailTool() *EmailTool {
	return &EmailTool{}
}

// AddTestEmail seeds the inbox, mirroring EmailTool.add_test_email.
func (t *EmailTool) AddTestEmail(sender, subject, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox = append(t.inbox, Email{
		Sender:    sender,
		Recipient: "user@company.com",
		Subject:   subject,
		Body:      body,
		Timestamp: "2025-01-01T10:00:00",
	})
}

// GetLastEmail returns the most recently received email, rendered the way
// the planner would read a single string back. Its content is always
// untrusted — the caller's registry.Binding declares that.
func (t *EmailTool) GetLastEmail(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inbox) == 0 {
		return "No emails found", nil
	}
	last := t.inbox[len(t.inbox)-1]
	return fmt.Sprintf("From: %s\nSubject: %s\nBody: %s", last.Sender, last.Subject, last.Body), nil
}

// SendEmail records an outgoing email. Gated behind approval by the
// registry.Binding; camel/tools.py simulates an actual send here, which
// this port preserves as an in-memory record for tests/demos.
func (t *EmailTool) SendEmail(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	recipient := stringArg(args, kwargs, 0, "recipient", "")
	subject := stringArg(args, kwargs, 1, "subject", "")
	body := stringArg(args, kwargs, 2, "body", "")

	t.mu.Lock()
	t.sent = append(t.sent, Email{
		Sender:    "user@company.com",
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Timestamp: "2025-01-01T12:00:00",
	})
	t.mu.Unlock()
	return true, nil
}

// Sent returns every email SendEmail has recorded, for tests and audit.
func (t *EmailTool) Sent() []Email {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Email(nil), t.sent...)
}
