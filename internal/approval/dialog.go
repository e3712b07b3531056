package approval

import (
	"context"
	"fmt"

	"github.com/gen2brain/dlgs"
)

// DialogOracle pops a native OS confirmation dialog, for an interactive
// demo run where the operator is sitting at the machine rather than
// watching a terminal. The gen2brain/dlgs dependency is declared but
// unused in the example pack's agent-identity-protocol proxy; this is
// where it earns its place, backing the one approval path that wants a
// real desktop prompt instead of a CLI one.
type DialogOracle struct {
	Title string
}

func NewDialogOracle(title string) *DialogOracle {
	if title == "" {
		title = "CaMeL approval required"
	}
	return &DialogOracle{Title: title}
}

func (o *DialogOracle) Approve(ctx context.Context, message, action string) (bool, error) {
	text := fmt.Sprintf("%s\n\naction: %s", message, action)
	approved, err := dlgs.Question(o.Title, text, true)
	if err != nil {
		return false, err
	}
	return approved, nil
}
