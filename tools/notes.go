// Campaign Note Tools - record, list and delete journal notes.
//
// Information Hiding:
// - Note persistence delegated to the storage layer
// - Deletion preview built here so the confirmation boundary never
//   queries storage itself

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fennwick/loreweaver/storage"
)

// defaultJournal is used when the model omits a journal name.
const defaultJournal = "campaign"

// RecordNoteTool appends a note to a campaign journal. Appending is
// additive and reversible, so it runs without confirmation.
type RecordNoteTool struct {
	BaseTool
	store storage.NoteStore
}

// NewRecordNoteTool creates a record tool backed by the given store.
func NewRecordNoteTool(store storage.NoteStore) *RecordNoteTool {
	return &RecordNoteTool{store: store}
}

// Metadata returns the tool metadata.
func (t *RecordNoteTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "record_note",
		Description: "Record a note in a campaign journal",
		Parameters: []ToolParameter{
			{Name: "content", ParamType: "string", Description: "Note content", Required: true},
			{Name: "journal", ParamType: "string", Description: "Journal name (default: campaign)", Required: false},
		},
	}
}

type recordNoteArgs struct {
	Content string `json:"content"`
	Journal string `json:"journal"`
}

// Validate validates the arguments.
func (t *RecordNoteTool) Validate(args json.RawMessage) error {
	var a recordNoteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Content) == "" {
		return fmt.Errorf("content cannot be empty")
	}
	return nil
}

// Execute stores the note.
func (t *RecordNoteTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a recordNoteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if strings.TrimSpace(a.Content) == "" {
		return FailureResultf("content cannot be empty"), nil
	}
	journal := a.Journal
	if journal == "" {
		journal = defaultJournal
	}

	entry, err := t.store.StoreNote(ctx, journal, a.Content)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to record note: %w", err)), nil
	}

	return SuccessResult(fmt.Sprintf("Recorded note %s in journal '%s'", entry.ID, entry.Journal)), nil
}

// ListNotesTool returns the recent notes in a journal.
type ListNotesTool struct {
	BaseTool
	store storage.NoteStore
}

// NewListNotesTool creates a list tool backed by the given store.
func NewListNotesTool(store storage.NoteStore) *ListNotesTool {
	return &ListNotesTool{store: store}
}

// Metadata returns the tool metadata.
func (t *ListNotesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_notes",
		Description: "List recent notes in a campaign journal, newest first",
		Parameters: []ToolParameter{
			{Name: "journal", ParamType: "string", Description: "Journal name (default: campaign)", Required: false},
			{Name: "limit", ParamType: "integer", Description: "Maximum notes to return (default: 20)", Required: false},
		},
	}
}

type listNotesArgs struct {
	Journal string `json:"journal"`
	Limit   int    `json:"limit"`
}

// Execute lists the notes.
func (t *ListNotesTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a listNotesArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
	}
	journal := a.Journal
	if journal == "" {
		journal = defaultJournal
	}
	limit := a.Limit
	if limit <= 0 {
		limit = 20
	}

	notes, err := t.store.ListNotes(ctx, journal, limit)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to list notes: %w", err)), nil
	}
	if len(notes) == 0 {
		return SuccessResult(fmt.Sprintf("Journal '%s' has no notes.", journal)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Notes in journal '%s':\n", journal)
	for _, n := range notes {
		fmt.Fprintf(&b, "[%s] %s: %s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Content)
	}
	return SuccessResult(strings.TrimRight(b.String(), "\n")), nil
}

// DeleteNoteTool removes a note from a journal. Deletion destroys campaign
// history, so it is a confirmed action with a preview of the doomed note.
type DeleteNoteTool struct {
	BaseTool
	store storage.NoteStore
}

// NewDeleteNoteTool creates a delete tool backed by the given store.
func NewDeleteNoteTool(store storage.NoteStore) *DeleteNoteTool {
	return &DeleteNoteTool{store: store}
}

// Metadata returns the tool metadata.
func (t *DeleteNoteTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "delete_note",
		Description: "Delete a note from a campaign journal by ID",
		Parameters: []ToolParameter{
			{Name: "id", ParamType: "string", Description: "Note ID to delete", Required: true},
		},
	}
}

type deleteNoteArgs struct {
	ID string `json:"id"`
}

// Validate validates the arguments.
func (t *DeleteNoteTool) Validate(args json.RawMessage) error {
	var a deleteNoteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	return nil
}

// RequiresConfirmation: deleting notes always goes through approval.
func (t *DeleteNoteTool) RequiresConfirmation() bool {
	return true
}

// DescribeAction previews the note about to be deleted. Pure: the only
// I/O is the lookup needed to render the preview.
func (t *DeleteNoteTool) DescribeAction(args json.RawMessage) *ActionDescription {
	var a deleteNoteArgs
	if err := json.Unmarshal(args, &a); err != nil || a.ID == "" {
		return nil
	}

	items := []string{fmt.Sprintf("Delete note %s", a.ID)}
	if note, err := t.store.GetNote(context.Background(), a.ID); err == nil && note != nil {
		items = append(items,
			fmt.Sprintf("From journal '%s'", note.Journal),
			fmt.Sprintf("Content: %s", note.Content))
	}

	return &ActionDescription{
		Title:       fmt.Sprintf("Delete note %s", a.ID),
		Description: "The note is removed permanently.",
		Changes:     GenericChange{Items: items, RiskLevel: RiskMedium},
	}
}

// Execute deletes the note.
func (t *DeleteNoteTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a deleteNoteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.ID == "" {
		return FailureResultf("id cannot be empty"), nil
	}

	existed, err := t.store.DeleteNote(ctx, a.ID)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to delete note: %w", err)), nil
	}
	if !existed {
		return FailureResultf("note does not exist: %s", a.ID), nil
	}

	return SuccessResult(fmt.Sprintf("Deleted note %s", a.ID)), nil
}

// RegisterNoteTools adds the journal tools to a registry.
func RegisterNoteTools(registry *Registry, store storage.NoteStore) error {
	for _, t := range []Tool{
		NewRecordNoteTool(store),
		NewListNotesTool(store),
		NewDeleteNoteTool(store),
	} {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register note tools: %w", err)
		}
	}
	return nil
}
