// Campaign Document Tools - read, write and edit files under the
// campaign directory.
//
// Information Hiding:
// - File I/O implementation details hidden
// - Path confinement and security checks hidden
// - Diff and preview construction hidden behind DescribeAction

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// previewMaxLines bounds content previews and diffs in confirmation
	// prompts so a large paste never floods the terminal.
	previewMaxLines = 40

	// documentReadPrefix is the ToolContext key prefix for read breadcrumbs.
	documentReadPrefix = "document_read:"
)

// resolveDocPath confines a document path to the campaign root. The
// returned rel path is the canonical identifier used in breadcrumbs and
// the recent-call log.
func resolveDocPath(root, path string) (abs, rel string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(path) {
		return "", "", fmt.Errorf("path must be relative to the campaign directory")
	}
	rel = filepath.Clean(path)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("path '%s' escapes the campaign directory", path)
	}
	return filepath.Join(root, rel), rel, nil
}

// ReadDocumentTool reads a campaign document. Reads are low risk and run
// without confirmation, but leave a breadcrumb in the session context so
// write tools can verify the document was seen before being overwritten.
type ReadDocumentTool struct {
	BaseTool
	root         string
	maxSizeBytes int64
	sessionCtx   *ToolContext
}

// NewReadDocumentTool creates a read tool rooted at the campaign directory.
func NewReadDocumentTool(root string, maxSizeBytes int64, tc *ToolContext) *ReadDocumentTool {
	return &ReadDocumentTool{
		root:         root,
		maxSizeBytes: maxSizeBytes,
		sessionCtx:   tc,
	}
}

// Metadata returns the tool metadata.
func (t *ReadDocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_document",
		Description: "Read the contents of a campaign document",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Document path relative to the campaign directory", Required: true},
		},
	}
}

type readDocumentArgs struct {
	Path string `json:"path"`
}

// Validate validates the arguments.
func (t *ReadDocumentTool) Validate(args json.RawMessage) error {
	var a readDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	_, _, err := resolveDocPath(t.root, a.Path)
	return err
}

// DescribeAction renders the pending read. Reads never require
// confirmation, so this exists only for hosts that display every action.
func (t *ReadDocumentTool) DescribeAction(args json.RawMessage) *ActionDescription {
	var a readDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil
	}
	abs, rel, err := resolveDocPath(t.root, a.Path)
	if err != nil {
		return nil
	}
	var size int64
	if info, err := os.Stat(abs); err == nil {
		size = info.Size()
	}
	return &ActionDescription{
		Title:       fmt.Sprintf("Read document %s", rel),
		Description: "Read-only: no campaign state changes.",
		Changes:     FileReadChange{FilePath: rel, FileSize: size, RiskLevel: RiskLow},
	}
}

// Execute reads the document and records the read breadcrumb.
func (t *ReadDocumentTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a readDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	abs, rel, err := resolveDocPath(t.root, a.Path)
	if err != nil {
		return FailureResult(err), nil
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return FailureResultf("document does not exist: %s", rel), nil
	}
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read document metadata: %w", err)), nil
	}
	if info.IsDir() {
		return FailureResultf("'%s' is a directory, not a document", rel), nil
	}
	if info.Size() > t.maxSizeBytes {
		return FailureResultf("document too large: %d bytes (max: %d bytes)", info.Size(), t.maxSizeBytes), nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read document: %w", err)), nil
	}

	// Breadcrumb for write tools: this document was seen this session.
	if t.sessionCtx != nil {
		t.sessionCtx.SetString(documentReadPrefix+rel, info.ModTime().UTC().Format("2006-01-02T15:04:05Z"))
	}

	return SuccessResult(string(content)), nil
}

// WriteDocumentTool writes a whole campaign document. Writing is a
// confirmed action: the engine shows the diff or content preview and only
// calls Execute after approval. Overwriting a document that was never read
// this session is refused outright.
type WriteDocumentTool struct {
	BaseTool
	root         string
	maxSizeBytes int64
}

// NewWriteDocumentTool creates a write tool rooted at the campaign directory.
func NewWriteDocumentTool(root string, maxSizeBytes int64) *WriteDocumentTool {
	return &WriteDocumentTool{
		root:         root,
		maxSizeBytes: maxSizeBytes,
	}
}

var _ ContextAware = (*WriteDocumentTool)(nil)

// Metadata returns the tool metadata.
func (t *WriteDocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "write_document",
		Description: "Write content to a campaign document, replacing any existing content",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Document path relative to the campaign directory", Required: true},
			{Name: "content", ParamType: "string", Description: "Full document content to write", Required: true},
		},
	}
}

type writeDocumentArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Validate validates the arguments.
func (t *WriteDocumentTool) Validate(args json.RawMessage) error {
	var a writeDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if _, _, err := resolveDocPath(t.root, a.Path); err != nil {
		return err
	}
	if int64(len(a.Content)) > t.maxSizeBytes {
		return fmt.Errorf("content too large: %d bytes (max: %d bytes)", len(a.Content), t.maxSizeBytes)
	}
	return nil
}

// RequiresConfirmation: writes always go through the approval flow.
func (t *WriteDocumentTool) RequiresConfirmation() bool {
	return true
}

// DescribeAction builds the preview shown at the confirmation boundary.
// Overwrites render a diff against the current content and carry high
// risk; new documents render a content preview at medium risk. Pure: the
// only I/O is reading the current file to render the diff.
func (t *WriteDocumentTool) DescribeAction(args json.RawMessage) *ActionDescription {
	var a writeDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil
	}
	abs, rel, err := resolveDocPath(t.root, a.Path)
	if err != nil {
		return nil
	}

	change := FileWriteChange{
		FilePath:      rel,
		ContentLength: len(a.Content),
		RiskLevel:     RiskMedium,
	}
	title := fmt.Sprintf("Create document %s", rel)

	if existing, err := os.ReadFile(abs); err == nil {
		change.RiskLevel = RiskHigh
		change.Diff = diffPreview(string(existing), a.Content, previewMaxLines)
		title = fmt.Sprintf("Overwrite document %s", rel)
	} else {
		change.ContentPreview = truncateLines(a.Content, previewMaxLines)
	}

	return &ActionDescription{
		Title:       title,
		Description: fmt.Sprintf("Replace the full contents of %s (%d bytes).", rel, len(a.Content)),
		Changes:     change,
	}
}

// Execute is the plain execution path with no session history, used when
// the tool runs outside a conversation. It applies the same overwrite
// refusal with an empty read window, so only new documents can be written.
func (t *WriteDocumentTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	return t.ExecuteWithCalls(ctx, args, nil)
}

// ExecuteWithCalls writes the document, refusing to overwrite an existing
// document that has no read in the recent-call window. The refusal is a
// normal failed result so the model can recover by reading first.
func (t *WriteDocumentTool) ExecuteWithCalls(ctx context.Context, args json.RawMessage, recent []CallRecord) (ToolResult, error) {
	var a writeDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	abs, rel, err := resolveDocPath(t.root, a.Path)
	if err != nil {
		return FailureResult(err), nil
	}
	if int64(len(a.Content)) > t.maxSizeBytes {
		return FailureResultf("content too large: %d bytes (max: %d bytes)", len(a.Content), t.maxSizeBytes), nil
	}

	if _, err := os.Stat(abs); err == nil {
		if !ReadOf(recent, "read_document", rel) {
			return FailureResultf("refusing to overwrite '%s': document was not read this session; read it first", rel), nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return FailureResult(fmt.Errorf("failed to create directory: %w", err)), nil
	}
	if err := os.WriteFile(abs, []byte(a.Content), 0644); err != nil {
		return FailureResult(fmt.Errorf("failed to write document: %w", err)), nil
	}

	return SuccessResult(fmt.Sprintf("Successfully wrote %d bytes to %s", len(a.Content), rel)), nil
}

// EditDocumentTool performs search/replace edits on an existing document.
// Edits are confirmed actions previewed as line-level diffs.
type EditDocumentTool struct {
	BaseTool
	root         string
	maxSizeBytes int64
}

// NewEditDocumentTool creates an edit tool rooted at the campaign directory.
func NewEditDocumentTool(root string, maxSizeBytes int64) *EditDocumentTool {
	return &EditDocumentTool{
		root:         root,
		maxSizeBytes: maxSizeBytes,
	}
}

// Metadata returns the tool metadata.
func (t *EditDocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "edit_document",
		Description: "Edit a campaign document by replacing a target string with new content",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Document path relative to the campaign directory", Required: true},
			{Name: "search", ParamType: "string", Description: "String to search for", Required: true},
			{Name: "replace", ParamType: "string", Description: "Replacement string", Required: true},
			{Name: "replace_all", ParamType: "boolean", Description: "Replace all occurrences (default: false)", Required: false},
		},
	}
}

type editDocumentArgs struct {
	Path       string `json:"path"`
	Search     string `json:"search"`
	Replace    string `json:"replace"`
	ReplaceAll *bool  `json:"replace_all"`
}

// Validate validates the arguments.
func (t *EditDocumentTool) Validate(args json.RawMessage) error {
	var a editDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if _, _, err := resolveDocPath(t.root, a.Path); err != nil {
		return err
	}
	if a.Search == "" {
		return fmt.Errorf("search string cannot be empty")
	}
	return nil
}

// RequiresConfirmation: edits always go through the approval flow.
func (t *EditDocumentTool) RequiresConfirmation() bool {
	return true
}

// DescribeAction builds a line-level preview of the pending edits. Risk is
// medium, escalating to high when more than half the document is touched.
func (t *EditDocumentTool) DescribeAction(args json.RawMessage) *ActionDescription {
	var a editDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil
	}
	abs, rel, err := resolveDocPath(t.root, a.Path)
	if err != nil || a.Search == "" {
		return nil
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil
	}

	text := string(content)
	totalLines := strings.Count(text, "\n") + 1
	replaceAll := a.ReplaceAll != nil && *a.ReplaceAll

	edits := locateEdits(text, a.Search, a.Replace, replaceAll)
	if len(edits) == 0 {
		return nil
	}

	affected := 0
	for _, e := range edits {
		affected += e.EndLine - e.StartLine + 1
	}

	risk := RiskMedium
	if affected*2 > totalLines {
		risk = RiskHigh
	}

	return &ActionDescription{
		Title:       fmt.Sprintf("Edit document %s", rel),
		Description: fmt.Sprintf("Replace %d occurrence(s) of the target string.", len(edits)),
		Changes: FileEditChange{
			FilePath:           rel,
			Edits:              edits,
			TotalLinesAffected: affected,
			TotalLinesInFile:   totalLines,
			RiskLevel:          risk,
		},
	}
}

// Execute performs the edit.
func (t *EditDocumentTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a editDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	abs, rel, err := resolveDocPath(t.root, a.Path)
	if err != nil {
		return FailureResult(err), nil
	}
	if a.Search == "" {
		return FailureResultf("search string cannot be empty"), nil
	}

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return FailureResultf("document does not exist: %s", rel), nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read document: %w", err)), nil
	}
	if int64(len(content)) > t.maxSizeBytes {
		return FailureResultf("document too large: %d bytes (max: %d bytes)", len(content), t.maxSizeBytes), nil
	}

	contentStr := string(content)
	occurrences := strings.Count(contentStr, a.Search)
	if occurrences == 0 {
		return FailureResultf("search string not found"), nil
	}

	replaceAll := a.ReplaceAll != nil && *a.ReplaceAll
	if !replaceAll && occurrences > 1 {
		return FailureResultf("search string occurs %d times; set replace_all=true to replace all", occurrences), nil
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(contentStr, a.Search, a.Replace)
	} else {
		updated = strings.Replace(contentStr, a.Search, a.Replace, 1)
	}

	if int64(len(updated)) > t.maxSizeBytes {
		return FailureResultf("updated content too large: %d bytes (max: %d bytes)", len(updated), t.maxSizeBytes), nil
	}

	if err := os.WriteFile(abs, []byte(updated), 0644); err != nil {
		return FailureResult(fmt.Errorf("failed to write document: %w", err)), nil
	}

	replacedCount := 1
	if replaceAll {
		replacedCount = occurrences
	}
	return SuccessResult(fmt.Sprintf("Replaced %d occurrence(s) in %s", replacedCount, rel)), nil
}

// locateEdits maps each occurrence of search to a LineEdit with one line
// of surrounding context. With replaceAll false only the first occurrence
// is previewed, matching what Execute would apply.
func locateEdits(text, search, replace string, replaceAll bool) []LineEdit {
	lines := strings.Split(text, "\n")
	var edits []LineEdit

	offset := 0
	for {
		idx := strings.Index(text[offset:], search)
		if idx < 0 {
			break
		}
		start := offset + idx

		startLine := strings.Count(text[:start], "\n") + 1
		endLine := startLine + strings.Count(search, "\n")

		edit := LineEdit{
			Op:         EditReplace,
			StartLine:  startLine,
			EndLine:    endLine,
			OldContent: search,
			NewContent: replace,
		}
		if startLine > 1 {
			edit.ContextBefore = lines[startLine-2]
		}
		if endLine < len(lines) {
			edit.ContextAfter = lines[endLine]
		}
		edits = append(edits, edit)

		if !replaceAll {
			break
		}
		offset = start + len(search)
		if offset >= len(text) {
			break
		}
	}
	return edits
}

// diffPreview renders a naive unified-style diff between two contents,
// trimming the common prefix and suffix and bounding the output.
func diffPreview(oldText, newText string, maxLines int) *DiffPreview {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	// Trim common prefix.
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	// Trim common suffix without crossing the prefix.
	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	var b strings.Builder
	count := 0
	truncated := false
	emit := func(prefix string, line string) {
		if count >= maxLines {
			truncated = true
			return
		}
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
		count++
	}

	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
		prefix+1, len(oldLines)-prefix-suffix,
		prefix+1, len(newLines)-prefix-suffix)
	for _, line := range oldLines[prefix : len(oldLines)-suffix] {
		emit("- ", line)
	}
	for _, line := range newLines[prefix : len(newLines)-suffix] {
		emit("+ ", line)
	}

	return &DiffPreview{
		Unified:   strings.TrimRight(b.String(), "\n"),
		Truncated: truncated,
	}
}

// truncateLines bounds a content preview to maxLines lines.
func truncateLines(content string, maxLines int) string {
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content
	}
	return strings.Join(lines[:maxLines], "\n") + "\n... (truncated)"
}
