package tools

import (
	"context"

	"github.com/rs/zerolog"
)

// UserInteractionTool exposes notify_user as a plain tool binding.
// require_user_approval is wired as an orchestrator special function
// rather than a tool binding, since it needs direct access to the
// approval.Oracle the interpreter was constructed with — see
// internal/orchestrator/special.go.
type UserInteractionTool struct {
	log zerolog.Logger
}

func NewUserInteractionTool(log zerolog.Logger) *UserInteractionTool {
	return &UserInteractionTool{log: log}
}

func (t *UserInteractionTool) NotifyUser(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	message := stringArg(args, kwargs, 0, "message", "")
	t.log.Info().Str("message", message).Msg("notify_user")
	return nil, nil
}
