// Package approval implements the external approval oracle a tool
// registry consults before invoking a tool binding that is marked as
// requiring human sign-off.
package approval

import "context"

// Oracle decides whether a pending tool action may proceed. message
// describes the action in human terms; action is the tool/operation name.
type Oracle interface {
	Approve(ctx context.Context, message, action string) (bool, error)
}

// AlwaysDeny is a conservative default oracle for non-interactive
// contexts (tests, headless batch runs) where no human is available to
// approve anything.
type AlwaysDeny struct{}

func (AlwaysDeny) Approve(ctx context.Context, message, action string) (bool, error) {
	return false, nil
}

// AlwaysApprove is useful for tests exercising the happy path of an
// approval-gated tool without a human present.
type AlwaysApprove struct{}

func (AlwaysApprove) Approve(ctx context.Context, message, action string) (bool, error) {
	return true, nil
}
