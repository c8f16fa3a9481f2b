// Confirmation and risk model for state-changing tools.
//
// Information Hiding:
// - Change details carry everything needed to render a preview; the
//   confirmation boundary never re-reads files or queries tools
// - Risk policy (what to auto-approve) lives with the host, not here

package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel classifies the severity of a pending state change.
// Levels are totally ordered so hosts can gate on thresholds.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// AtLeast reports whether the level is at or above the threshold.
func (r RiskLevel) AtLeast(threshold RiskLevel) bool {
	return r >= threshold
}

// MarshalJSON serializes the risk level as its string form.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// EditOp is the kind of a single line edit.
type EditOp string

const (
	EditReplace EditOp = "replace"
	EditInsert  EditOp = "insert"
	EditDelete  EditOp = "delete"
)

// LineEdit describes one contiguous edit within a file.
// Line numbers are 1-indexed and inclusive. Context lines are captured
// at describe time so a diff can be rendered without re-reading the file.
type LineEdit struct {
	Op            EditOp `json:"op"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
	OldContent    string `json:"old_content,omitempty"`
	NewContent    string `json:"new_content,omitempty"`
	ContextBefore string `json:"context_before,omitempty"`
	ContextAfter  string `json:"context_after,omitempty"`
}

// DiffPreview is a pre-rendered unified-style diff for display.
type DiffPreview struct {
	Unified   string `json:"unified"`
	Truncated bool   `json:"truncated,omitempty"`
}

// ChangeDetail describes the concrete state change a tool is about to make.
// Implementations are self-describing: Summary must render without any
// follow-up query because the confirmation boundary may live in another
// process or window.
type ChangeDetail interface {
	// Kind returns a stable tag identifying the change shape.
	Kind() string

	// Risk returns the severity the tool assigned to this change.
	Risk() RiskLevel

	// Summary renders a human-readable description of the change.
	Summary() string
}

// FileEditChange describes in-place edits to an existing file.
type FileEditChange struct {
	FilePath           string     `json:"file_path"`
	Edits              []LineEdit `json:"edits"`
	TotalLinesAffected int        `json:"total_lines_affected"`
	TotalLinesInFile   int        `json:"total_lines_in_file"`
	RiskLevel          RiskLevel  `json:"risk"`
}

// Kind returns the change tag.
func (c FileEditChange) Kind() string { return "file_edit" }

// Risk returns the assigned severity.
func (c FileEditChange) Risk() RiskLevel { return c.RiskLevel }

// Summary renders the edit as a line-numbered diff.
func (c FileEditChange) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Edit %s (%d of %d lines affected)\n",
		c.FilePath, c.TotalLinesAffected, c.TotalLinesInFile)
	for _, e := range c.Edits {
		fmt.Fprintf(&b, "@@ lines %d-%d (%s)\n", e.StartLine, e.EndLine, e.Op)
		if e.ContextBefore != "" {
			fmt.Fprintf(&b, "  %s\n", e.ContextBefore)
		}
		if e.OldContent != "" {
			writePrefixedLines(&b, "- ", e.OldContent)
		}
		if e.NewContent != "" {
			writePrefixedLines(&b, "+ ", e.NewContent)
		}
		if e.ContextAfter != "" {
			fmt.Fprintf(&b, "  %s\n", e.ContextAfter)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FileWriteChange describes writing (or overwriting) a whole file.
type FileWriteChange struct {
	FilePath       string       `json:"file_path"`
	ContentLength  int          `json:"content_length"`
	Diff           *DiffPreview `json:"diff,omitempty"`
	ContentPreview string       `json:"content_preview,omitempty"`
	RiskLevel      RiskLevel    `json:"risk"`
}

// Kind returns the change tag.
func (c FileWriteChange) Kind() string { return "file_write" }

// Risk returns the assigned severity.
func (c FileWriteChange) Risk() RiskLevel { return c.RiskLevel }

// Summary renders the write with its diff or content preview.
func (c FileWriteChange) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d bytes to %s", c.ContentLength, c.FilePath)
	if c.Diff != nil {
		b.WriteString("\n")
		b.WriteString(c.Diff.Unified)
		if c.Diff.Truncated {
			b.WriteString("\n... (diff truncated)")
		}
	} else if c.ContentPreview != "" {
		fmt.Fprintf(&b, "\n--- preview ---\n%s", c.ContentPreview)
	}
	return b.String()
}

// FileReadChange describes reading a file. Reads are recorded so hosts
// can surface them, but carry the lowest default severity.
type FileReadChange struct {
	FilePath  string    `json:"file_path"`
	FileSize  int64     `json:"file_size"`
	RiskLevel RiskLevel `json:"risk"`
}

// Kind returns the change tag.
func (c FileReadChange) Kind() string { return "file_read" }

// Risk returns the assigned severity.
func (c FileReadChange) Risk() RiskLevel { return c.RiskLevel }

// Summary renders the read.
func (c FileReadChange) Summary() string {
	return fmt.Sprintf("Read %s (%d bytes)", c.FilePath, c.FileSize)
}

// GenericChange describes any other state change as a list of items.
type GenericChange struct {
	Items     []string  `json:"items"`
	RiskLevel RiskLevel `json:"risk"`
}

// Kind returns the change tag.
func (c GenericChange) Kind() string { return "generic" }

// Risk returns the assigned severity.
func (c GenericChange) Risk() RiskLevel { return c.RiskLevel }

// Summary renders the items as a bullet list.
func (c GenericChange) Summary() string {
	var b strings.Builder
	for i, item := range c.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s", item)
	}
	return b.String()
}

// ActionDescription is a structured, renderable preview of a pending state
// change. Built once by DescribeAction, consumed once by the confirmation
// boundary, never mutated.
type ActionDescription struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Changes     ChangeDetail `json:"changes"`
}

// Risk returns the severity of the described change.
func (a ActionDescription) Risk() RiskLevel {
	if a.Changes == nil {
		return RiskLow
	}
	return a.Changes.Risk()
}

// Render produces the full human-readable confirmation text.
func (a ActionDescription) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(a.Risk().String()), a.Title)
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n", a.Description)
	}
	if a.Changes != nil {
		b.WriteString(a.Changes.Summary())
	}
	return strings.TrimRight(b.String(), "\n")
}

// MarshalJSON tags the change detail with its kind so the payload stays
// self-describing across a process boundary.
func (a ActionDescription) MarshalJSON() ([]byte, error) {
	type alias struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Kind        string       `json:"kind,omitempty"`
		Changes     ChangeDetail `json:"changes,omitempty"`
	}
	out := alias{Title: a.Title, Description: a.Description, Changes: a.Changes}
	if a.Changes != nil {
		out.Kind = a.Changes.Kind()
	}
	return json.Marshal(out)
}

// writePrefixedLines writes each line of content with the given prefix.
func writePrefixedLines(b *strings.Builder, prefix, content string) {
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(b, "%s%s\n", prefix, line)
	}
}
