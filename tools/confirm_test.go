package tools

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRiskLevelOrdering(t *testing.T) {
	if !RiskHigh.AtLeast(RiskMedium) || !RiskMedium.AtLeast(RiskLow) {
		t.Error("risk levels must be totally ordered")
	}
	if RiskLow.AtLeast(RiskMedium) {
		t.Error("low is below medium")
	}
	if !RiskLow.AtLeast(RiskLow) {
		t.Error("AtLeast is inclusive")
	}
}

func TestRiskLevelString(t *testing.T) {
	cases := map[RiskLevel]string{
		RiskLow:    "low",
		RiskMedium: "medium",
		RiskHigh:   "high",
	}
	for level, want := range cases {
		if level.String() != want {
			t.Errorf("expected %q, got %q", want, level.String())
		}
	}
}

func TestActionDescriptionRender(t *testing.T) {
	desc := ActionDescription{
		Title:       "Overwrite document lore/chapter1.md",
		Description: "Replace the full contents.",
		Changes: FileWriteChange{
			FilePath:      "lore/chapter1.md",
			ContentLength: 42,
			RiskLevel:     RiskHigh,
		},
	}

	rendered := desc.Render()
	if !strings.HasPrefix(rendered, "[HIGH] Overwrite document lore/chapter1.md") {
		t.Errorf("render should lead with risk and title:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Write 42 bytes to lore/chapter1.md") {
		t.Errorf("render should include the change summary:\n%s", rendered)
	}
}

func TestActionDescriptionRenderNoChanges(t *testing.T) {
	desc := ActionDescription{Title: "Run tool"}
	if desc.Risk() != RiskLow {
		t.Error("description without changes defaults to low risk")
	}
	if !strings.HasPrefix(desc.Render(), "[LOW] Run tool") {
		t.Errorf("unexpected render: %q", desc.Render())
	}
}

func TestActionDescriptionMarshalTagsKind(t *testing.T) {
	desc := ActionDescription{
		Title:   "Edit document npc.md",
		Changes: FileEditChange{FilePath: "npc.md", RiskLevel: RiskMedium},
	}

	raw, err := json.Marshal(desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(decoded["kind"]) != `"file_edit"` {
		t.Errorf("expected kind tag 'file_edit', got %s", decoded["kind"])
	}
}

func TestFileEditChangeSummary(t *testing.T) {
	change := FileEditChange{
		FilePath: "npc.md",
		Edits: []LineEdit{{
			Op:         EditReplace,
			StartLine:  3,
			EndLine:    3,
			OldContent: "missing",
			NewContent: "rescued",
		}},
		TotalLinesAffected: 1,
		TotalLinesInFile:   10,
		RiskLevel:          RiskMedium,
	}

	summary := change.Summary()
	if !strings.Contains(summary, "npc.md") {
		t.Error("summary should name the file")
	}
	if !strings.Contains(summary, "- missing") || !strings.Contains(summary, "+ rescued") {
		t.Errorf("summary should show old and new content:\n%s", summary)
	}
	if !strings.Contains(summary, "lines 3-3") {
		t.Errorf("summary should show line numbers:\n%s", summary)
	}
}

func TestGenericChangeSummary(t *testing.T) {
	change := GenericChange{
		Items:     []string{"Delete note 42", "From journal 'waterdeep'"},
		RiskLevel: RiskMedium,
	}

	summary := change.Summary()
	if !strings.Contains(summary, "- Delete note 42") {
		t.Errorf("summary should list items:\n%s", summary)
	}
}
