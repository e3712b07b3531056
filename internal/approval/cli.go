package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// CLIOracle asks for approval on stdin/stdout, the same y/n prompt shape
// as the reference implementation's UserInteractionTool.require_user_approval.
type CLIOracle struct {
	in  *bufio.Reader
	out io.Writer
}

func NewCLIOracle(in io.Reader, out io.Writer) *CLIOracle {
	return &CLIOracle{in: bufio.NewReader(in), out: out}
}

func (o *CLIOracle) Approve(ctx context.Context, message, action string) (bool, error) {
	fmt.Fprintf(o.out, "\n[approval required] %s\naction: %s\napprove? (y/n): ", message, action)
	line, err := o.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
