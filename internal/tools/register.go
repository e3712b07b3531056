package tools

import (
	"github.com/rs/zerolog"

	"github.com/camelguard/camelguard/internal/capability"
	"github.com/camelguard/camelguard/internal/registry"
)

// Set bundles every example tool, mirroring camel/tools.py:CaMeLToolRegistry's
// constructor — it builds one of each underlying tool and seeds the same
// demo data, so callers (cmd/camelguard's demo subcommand in particular)
// can reach into it for assertions the way the reference's demo scripts do.
type Set struct {
	Email   *EmailTool
	File    *FileTool
	Network *NetworkTool
	User    *UserInteractionTool
	Support *SupportTicketTool
}

// NewSet builds the tool set and seeds it with the same fixtures
// camel/tools.py:CaMeLToolRegistry._setup_test_data does, so the prompt-
// injection demo scenarios have something to bite on.
func NewSet(log zerolog.Logger) *Set {
	s := &Set{
		Email:   NewEmailTool(),
		File:    NewFileTool(),
		Network: NewNetworkTool(nil, 0),
		User:    NewUserInteractionTool(log),
		Support: NewSupportTicketTool(),
	}
	s.Email.AddTestEmail("bob@company.com", "Document Request",
		"Hi, could you send me the Q4 financial report we discussed in our meeting? Thanks! - Bob")
	s.File.AddTestDocument("Q4_Financial_Report.pdf",
		"Q4 Financial Report\n\nRevenue: $10M\nProfit: $2M\nExpenses: $8M", "")
	s.File.AddTestDocument("presentation_slides.pptx",
		"Project Presentation\n\nSlide 1: Overview\nSlide 2: Progress\nSlide 3: Next Steps", "")
	return s
}

// RegisterDefaults binds every example tool into reg under source "builtin",
// with the same capability/approval shape camel/tools.py:CaMeLToolRegistry.get_tools
// declares.
func RegisterDefaults(reg *registry.Registry, s *Set) error {
	untrusted := func(source string) []capability.Capability {
		return []capability.Capability{capability.New(capability.Untrusted, source)}
	}
	read := func(source string) []capability.Capability {
		return []capability.Capability{capability.New(capability.Read, source)}
	}

	bindings := []registry.Binding{
		{
			Name:   "get_last_email",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Get the content of the last received email",
				Returns:     "string (untrusted)",
			},
			OutputCaps: untrusted("email"),
			Fn:         s.Email.GetLastEmail,
		},
		{
			Name:   "send_email",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Send an email to a recipient",
				Params:      map[string]string{"recipient": "string", "subject": "string", "body": "string"},
				Returns:     "bool",
			},
			RequiresApproval: true,
			Fn:               s.Email.SendEmail,
		},
		{
			Name:   "get_document",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Get a document by name",
				Params:      map[string]string{"name": "string"},
				Returns:     "string",
			},
			OutputCaps: read("filesystem"),
			Fn:         s.File.GetDocument,
		},
		{
			Name:   "list_documents",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "List all available documents",
				Returns:     "list of string",
			},
			OutputCaps: read("filesystem"),
			Fn:         s.File.ListDocuments,
		},
		{
			Name:   "read_file",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Read a file from the filesystem",
				Params:      map[string]string{"path": "string"},
				Returns:     "string (untrusted)",
			},
			OutputCaps: untrusted("filesystem"),
			Fn:         s.File.ReadFile,
		},
		{
			Name:   "write_file",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Write content to a file",
				Params:      map[string]string{"path": "string", "content": "string"},
				Returns:     "bool",
			},
			RequiresApproval: true,
			Fn:               s.File.WriteFile,
		},
		{
			Name:   "get_last_meeting_notes",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Get the content of the last meeting notes",
				Returns:     "string (untrusted)",
			},
			OutputCaps: untrusted("meeting_notes"),
			Fn:         s.File.GetLastMeetingNotes,
		},
		{
			Name:   "http_get",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Make an HTTP GET request",
				Params:      map[string]string{"url": "string"},
				Returns:     "string",
			},
			RequiresApproval: true,
			Fn:               s.Network.HTTPGet,
		},
		{
			Name:   "http_post",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Make an HTTP POST request",
				Params:      map[string]string{"url": "string", "data": "object"},
				Returns:     "string",
			},
			RequiresApproval: true,
			Fn:               s.Network.HTTPPost,
		},
		{
			Name:   "notify_user",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Send a notification to the user",
				Params:      map[string]string{"message": "string"},
				Returns:     "None",
			},
			Fn: s.User.NotifyUser,
		},
		{
			Name:   "get_support_ticket",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Get a support ticket by ID (returns untrusted data)",
				Params:      map[string]string{"ticket_id": "string"},
				Returns:     "string (untrusted)",
			},
			OutputCaps: untrusted("support_ticket"),
			Fn:         s.Support.GetSupportTicket,
		},
		{
			Name:   "create_followup_task",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Create a follow-up task (potential exfiltration vector)",
				Params:      map[string]string{"summary": "string", "assignee": "string (optional)"},
				Returns:     "string",
			},
			RequiresApproval: true,
			Fn:               s.Support.CreateFollowupTask,
		},
		{
			Name:   "post_ticket_reply",
			Source: "builtin",
			Schema: registry.Schema{
				Description: "Post a reply to a support ticket (external communication)",
				Params:      map[string]string{"ticket_id": "string", "reply": "string"},
				Returns:     "string",
			},
			RequiresApproval: true,
			Fn:               s.Support.PostTicketReply,
		},
	}

	for _, b := range bindings {
		if err := reg.Register(b); err != nil {
			return err
		}
	}
	return nil
}
