package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestDoc(t *testing.T, root, rel, content string) string {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write doc: %v", err)
	}
	return abs
}

func TestReadDocument(t *testing.T) {
	root := t.TempDir()
	writeTestDoc(t, root, "lore/chapter1.md", "# Chapter 1\nThe party meets.\n")
	tc := NewToolContext()
	tool := NewReadDocumentTool(root, DefaultMaxFileSize, tc)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"path": "lore/chapter1.md"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got: %v", result.Error)
	}
	if !strings.Contains(result.Output, "The party meets.") {
		t.Errorf("unexpected output: %q", result.Output)
	}
	if !tc.HasKey("document_read:lore/chapter1.md") {
		t.Error("expected a read breadcrumb in the session context")
	}
}

func TestReadDocumentMissing(t *testing.T) {
	tool := NewReadDocumentTool(t.TempDir(), DefaultMaxFileSize, nil)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"path": "ghost.md"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for missing document")
	}
}

func TestResolveDocPathRejectsEscapes(t *testing.T) {
	root := t.TempDir()

	for _, path := range []string{"../outside.md", "a/../../outside.md", "/etc/passwd", ""} {
		if _, _, err := resolveDocPath(root, path); err == nil {
			t.Errorf("expected error for path %q", path)
		}
	}

	if _, rel, err := resolveDocPath(root, "lore/./chapter1.md"); err != nil || rel != filepath.Join("lore", "chapter1.md") {
		t.Errorf("expected clean rel path, got %q (err=%v)", rel, err)
	}
}

func TestWriteDocumentNew(t *testing.T) {
	root := t.TempDir()
	tool := NewWriteDocumentTool(root, DefaultMaxFileSize)

	result, err := tool.ExecuteWithCalls(context.Background(),
		json.RawMessage(`{"path": "notes/session5.md", "content": "The dragon appears."}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got: %v", result.Error)
	}

	written, err := os.ReadFile(filepath.Join(root, "notes/session5.md"))
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(written) != "The dragon appears." {
		t.Errorf("unexpected content: %q", written)
	}
}

func TestWriteDocumentRefusesUnreadOverwrite(t *testing.T) {
	root := t.TempDir()
	abs := writeTestDoc(t, root, "lore/chapter1.md", "original content")
	tool := NewWriteDocumentTool(root, DefaultMaxFileSize)

	result, err := tool.ExecuteWithCalls(context.Background(),
		json.RawMessage(`{"path": "lore/chapter1.md", "content": "clobbered"}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Fatal("expected refusal for unread overwrite")
	}

	after, _ := os.ReadFile(abs)
	if string(after) != "original content" {
		t.Errorf("document must be untouched after refusal, got %q", after)
	}
}

func TestWriteDocumentOverwriteAfterRead(t *testing.T) {
	root := t.TempDir()
	writeTestDoc(t, root, "lore/chapter1.md", "original content")
	tool := NewWriteDocumentTool(root, DefaultMaxFileSize)

	recent := []CallRecord{{Name: "read_document", FilePath: filepath.Join("lore", "chapter1.md")}}
	result, err := tool.ExecuteWithCalls(context.Background(),
		json.RawMessage(`{"path": "lore/chapter1.md", "content": "revised content"}`), recent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success after prior read, got: %v", result.Error)
	}

	after, _ := os.ReadFile(filepath.Join(root, "lore/chapter1.md"))
	if string(after) != "revised content" {
		t.Errorf("unexpected content: %q", after)
	}
}

func TestWriteDocumentDescribeAction(t *testing.T) {
	root := t.TempDir()
	tool := NewWriteDocumentTool(root, DefaultMaxFileSize)

	// New document: medium risk with a content preview.
	desc := tool.DescribeAction(json.RawMessage(`{"path": "new.md", "content": "hello"}`))
	if desc == nil {
		t.Fatal("expected a description for a new document")
	}
	if desc.Risk() != RiskMedium {
		t.Errorf("new document should be medium risk, got %v", desc.Risk())
	}
	change, ok := desc.Changes.(FileWriteChange)
	if !ok {
		t.Fatalf("expected FileWriteChange, got %T", desc.Changes)
	}
	if change.Diff != nil || change.ContentPreview == "" {
		t.Error("new document should carry a content preview, not a diff")
	}

	// Overwrite: high risk with a diff.
	writeTestDoc(t, root, "new.md", "old line\n")
	desc = tool.DescribeAction(json.RawMessage(`{"path": "new.md", "content": "new line\n"}`))
	if desc == nil {
		t.Fatal("expected a description for an overwrite")
	}
	if desc.Risk() != RiskHigh {
		t.Errorf("overwrite should be high risk, got %v", desc.Risk())
	}
	change = desc.Changes.(FileWriteChange)
	if change.Diff == nil {
		t.Fatal("overwrite should carry a diff")
	}
	if !strings.Contains(change.Diff.Unified, "- old line") || !strings.Contains(change.Diff.Unified, "+ new line") {
		t.Errorf("unexpected diff:\n%s", change.Diff.Unified)
	}
}

func TestWriteDocumentRequiresConfirmation(t *testing.T) {
	if !NewWriteDocumentTool(t.TempDir(), DefaultMaxFileSize).RequiresConfirmation() {
		t.Error("write_document must require confirmation")
	}
	if !NewEditDocumentTool(t.TempDir(), DefaultMaxFileSize).RequiresConfirmation() {
		t.Error("edit_document must require confirmation")
	}
	if NewReadDocumentTool(t.TempDir(), DefaultMaxFileSize, nil).RequiresConfirmation() {
		t.Error("read_document must not require confirmation")
	}
}

func TestEditDocument(t *testing.T) {
	root := t.TempDir()
	writeTestDoc(t, root, "npc.md", "Gundren is missing.\nThe map is lost.\n")
	tool := NewEditDocumentTool(root, DefaultMaxFileSize)

	result, err := tool.Execute(context.Background(),
		json.RawMessage(`{"path": "npc.md", "search": "missing", "replace": "rescued"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got: %v", result.Error)
	}

	after, _ := os.ReadFile(filepath.Join(root, "npc.md"))
	if !strings.Contains(string(after), "Gundren is rescued.") {
		t.Errorf("unexpected content: %q", after)
	}
}

func TestEditDocumentAmbiguousSearch(t *testing.T) {
	root := t.TempDir()
	abs := writeTestDoc(t, root, "npc.md", "gold gold gold\n")
	tool := NewEditDocumentTool(root, DefaultMaxFileSize)

	result, err := tool.Execute(context.Background(),
		json.RawMessage(`{"path": "npc.md", "search": "gold", "replace": "silver"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure for ambiguous search without replace_all")
	}

	after, _ := os.ReadFile(abs)
	if string(after) != "gold gold gold\n" {
		t.Errorf("document must be untouched, got %q", after)
	}

	result, err = tool.Execute(context.Background(),
		json.RawMessage(`{"path": "npc.md", "search": "gold", "replace": "silver", "replace_all": true}`))
	if err != nil || !result.Success() {
		t.Fatalf("expected replace_all to succeed, got result=%v err=%v", result.Error, err)
	}
	after, _ = os.ReadFile(abs)
	if string(after) != "silver silver silver\n" {
		t.Errorf("unexpected content: %q", after)
	}
}

func TestEditDocumentDescribeAction(t *testing.T) {
	root := t.TempDir()
	writeTestDoc(t, root, "npc.md", "line one\nline two\nline three\nline four\n")
	tool := NewEditDocumentTool(root, DefaultMaxFileSize)

	desc := tool.DescribeAction(json.RawMessage(`{"path": "npc.md", "search": "line two", "replace": "line 2"}`))
	if desc == nil {
		t.Fatal("expected a description")
	}
	change, ok := desc.Changes.(FileEditChange)
	if !ok {
		t.Fatalf("expected FileEditChange, got %T", desc.Changes)
	}
	if len(change.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(change.Edits))
	}
	edit := change.Edits[0]
	if edit.StartLine != 2 || edit.EndLine != 2 {
		t.Errorf("expected edit on line 2, got %d-%d", edit.StartLine, edit.EndLine)
	}
	if edit.ContextBefore != "line one" || edit.ContextAfter != "line three" {
		t.Errorf("unexpected context: before=%q after=%q", edit.ContextBefore, edit.ContextAfter)
	}
	if desc.Risk() != RiskMedium {
		t.Errorf("small edit should be medium risk, got %v", desc.Risk())
	}
}

func TestEditDocumentRiskEscalatesOnLargeEdit(t *testing.T) {
	root := t.TempDir()
	writeTestDoc(t, root, "npc.md", "alpha\nalpha\nalpha\nbeta\n")
	tool := NewEditDocumentTool(root, DefaultMaxFileSize)

	desc := tool.DescribeAction(json.RawMessage(`{"path": "npc.md", "search": "alpha", "replace": "omega", "replace_all": true}`))
	if desc == nil {
		t.Fatal("expected a description")
	}
	if desc.Risk() != RiskHigh {
		t.Errorf("edit touching most of the document should be high risk, got %v", desc.Risk())
	}
}

func TestEditDocumentDescribeIsPure(t *testing.T) {
	root := t.TempDir()
	abs := writeTestDoc(t, root, "npc.md", "one two three\n")
	tool := NewEditDocumentTool(root, DefaultMaxFileSize)

	tool.DescribeAction(json.RawMessage(`{"path": "npc.md", "search": "two", "replace": "2"}`))

	after, _ := os.ReadFile(abs)
	if string(after) != "one two three\n" {
		t.Errorf("DescribeAction must not modify the document, got %q", after)
	}
}

func TestDiffPreviewTruncation(t *testing.T) {
	oldText := strings.Repeat("old\n", 100)
	newText := strings.Repeat("new\n", 100)

	diff := diffPreview(oldText, newText, 10)
	if !diff.Truncated {
		t.Error("expected diff to be truncated")
	}
	if lines := strings.Count(diff.Unified, "\n"); lines > 12 {
		t.Errorf("diff too long: %d lines", lines)
	}
}
