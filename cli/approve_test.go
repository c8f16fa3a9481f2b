package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fennwick/loreweaver/agent"
	"github.com/fennwick/loreweaver/tools"
)

func lowRiskAction() tools.ActionDescription {
	return tools.ActionDescription{
		Title: "Read lore/chapter1.md",
		Changes: tools.FileReadChange{
			FilePath:  "lore/chapter1.md",
			FileSize:  512,
			RiskLevel: tools.RiskLow,
		},
	}
}

func highRiskAction() tools.ActionDescription {
	return tools.ActionDescription{
		Title: "Overwrite document lore/chapter1.md",
		Changes: tools.FileWriteChange{
			FilePath:      "lore/chapter1.md",
			ContentLength: 64,
			RiskLevel:     tools.RiskHigh,
		},
	}
}

func TestTerminalApproverAutoApprovesLowRisk(t *testing.T) {
	var out bytes.Buffer
	approver := NewTerminalApprover(strings.NewReader(""), &out, true)

	decision, err := approver.Approve(context.Background(), lowRiskAction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != agent.DecisionApproved {
		t.Errorf("low-risk action should auto-approve, got %v", decision)
	}
	if out.Len() != 0 {
		t.Errorf("auto-approval must not prompt, printed %q", out.String())
	}
}

func TestTerminalApproverPromptsAboveLowRisk(t *testing.T) {
	var out bytes.Buffer
	approver := NewTerminalApprover(strings.NewReader("y\n"), &out, true)

	decision, err := approver.Approve(context.Background(), highRiskAction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != agent.DecisionApproved {
		t.Errorf("expected approval on 'y', got %v", decision)
	}

	prompt := out.String()
	if !strings.Contains(prompt, "[HIGH]") {
		t.Errorf("prompt should show the risk level, got %q", prompt)
	}
	if !strings.Contains(prompt, "Overwrite document lore/chapter1.md") {
		t.Errorf("prompt should show the action title, got %q", prompt)
	}
	if !strings.Contains(prompt, "[y/N]") {
		t.Errorf("prompt should ask y/N, got %q", prompt)
	}
}

func TestTerminalApproverPromptsLowRiskWhenAutoApproveOff(t *testing.T) {
	var out bytes.Buffer
	approver := NewTerminalApprover(strings.NewReader("yes\n"), &out, false)

	decision, _ := approver.Approve(context.Background(), lowRiskAction())
	if decision != agent.DecisionApproved {
		t.Errorf("expected approval on 'yes', got %v", decision)
	}
	if out.Len() == 0 {
		t.Error("with auto-approve off, low-risk actions must prompt")
	}
}

func TestTerminalApproverDefaultsToDecline(t *testing.T) {
	for _, answer := range []string{"\n", "n\n", "no\n", "maybe\n"} {
		var out bytes.Buffer
		approver := NewTerminalApprover(strings.NewReader(answer), &out, true)

		decision, err := approver.Approve(context.Background(), highRiskAction())
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", answer, err)
		}
		if decision != agent.DecisionRejected {
			t.Errorf("answer %q should decline, got %v", answer, decision)
		}
	}
}

func TestTerminalApproverEOFDeclines(t *testing.T) {
	var out bytes.Buffer
	approver := NewTerminalApprover(strings.NewReader(""), &out, true)

	decision, err := approver.Approve(context.Background(), highRiskAction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != agent.DecisionRejected {
		t.Errorf("EOF should decline, got %v", decision)
	}
}

func TestApproveAllNeverPrompts(t *testing.T) {
	decision, err := ApproveAll.Approve(context.Background(), highRiskAction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != agent.DecisionApproved {
		t.Errorf("expected approval, got %v", decision)
	}
}
