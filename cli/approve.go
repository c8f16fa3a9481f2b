// Terminal confirmation boundary.
//
// Information Hiding:
// - Prompt rendering and answer parsing hidden
// - Auto-approval policy applied here, not in the conversation loop

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fennwick/loreweaver/agent"
	"github.com/fennwick/loreweaver/tools"
)

// TerminalApprover prompts for each confirming action, rendering the
// action description with its risk level and diff.
type TerminalApprover struct {
	in             *bufio.Reader
	out            io.Writer
	autoApproveLow bool
}

// NewTerminalApprover creates an approver reading answers from in and
// prompting on out. With autoApproveLow, low-risk actions pass without
// a prompt.
func NewTerminalApprover(in io.Reader, out io.Writer, autoApproveLow bool) *TerminalApprover {
	return &TerminalApprover{
		in:             bufio.NewReader(in),
		out:            out,
		autoApproveLow: autoApproveLow,
	}
}

// Approve renders the action and asks for a y/N answer. Anything but an
// explicit yes declines: the safe default is to not act.
func (t *TerminalApprover) Approve(ctx context.Context, action tools.ActionDescription) (agent.Decision, error) {
	if t.autoApproveLow && !action.Risk().AtLeast(tools.RiskMedium) {
		return agent.DecisionApproved, nil
	}

	fmt.Fprintf(t.out, "\n%s\n", action.Render())
	fmt.Fprint(t.out, "Proceed? [y/N] ")

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		// EOF with no answer: decline.
		return agent.DecisionRejected, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return agent.DecisionApproved, nil
	default:
		return agent.DecisionRejected, nil
	}
}

// ApproveAll approves every action without prompting. For scripted runs
// that pass an explicit yes flag.
var ApproveAll = agent.ApproverFunc(func(ctx context.Context, action tools.ActionDescription) (agent.Decision, error) {
	return agent.DecisionApproved, nil
})

var _ agent.Approver = (*TerminalApprover)(nil)
