// Confirmation boundary between the orchestrator and the host.
//
// Information Hiding:
// - How the host obtains approval (terminal prompt, auto-policy) hidden
//   behind the Approver interface
// - The orchestrator sees only the three-outcome Decision

package agent

import (
	"context"

	"github.com/fennwick/loreweaver/tools"
)

// Decision is the outcome of the confirmation gate for one tool call.
type Decision int

const (
	// DecisionNotRequired means the tool does not confirm and ran directly.
	DecisionNotRequired Decision = iota

	// DecisionApproved means the host approved the described action.
	DecisionApproved

	// DecisionRejected means the host declined the described action. The
	// tool is not executed and the model is told the user declined.
	DecisionRejected
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionNotRequired:
		return "not_required"
	case DecisionApproved:
		return "approved"
	case DecisionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Approver is the host-side confirmation boundary. Approve receives a
// fully self-describing action before any side effect has happened and
// blocks until the host answers. The context carries cancellation for
// hosts that prompt interactively.
type Approver interface {
	Approve(ctx context.Context, action tools.ActionDescription) (Decision, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, action tools.ActionDescription) (Decision, error)

// Approve calls the wrapped function.
func (f ApproverFunc) Approve(ctx context.Context, action tools.ActionDescription) (Decision, error) {
	return f(ctx, action)
}

// RejectAll declines every action. It is the fallback when no approver is
// configured: with no boundary to ask, a confirming tool must not run.
var RejectAll = ApproverFunc(func(ctx context.Context, action tools.ActionDescription) (Decision, error) {
	return DecisionRejected, nil
})
