package storage

import (
	"context"
	"testing"

	"github.com/fennwick/loreweaver/llm"
)

func TestSqliteStorageSaveAndLoad(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages := []llm.ChatMessage{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
	}

	if err := storage.Save(ctx, "test-session", messages); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Errorf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "Hello" {
		t.Errorf("expected 'Hello', got '%s'", loaded[0].Content)
	}
	if loaded[1].Content != "Hi there" {
		t.Errorf("expected 'Hi there', got '%s'", loaded[1].Content)
	}
}

func TestSqliteStorageLoadNonexistentSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	loaded, err := storage.Load(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 0 {
		t.Errorf("expected empty slice, got %d messages", len(loaded))
	}
}

func TestSqliteStorageDeleteSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages := []llm.ChatMessage{
		{Role: "user", Content: "Test"},
	}

	if err := storage.Save(ctx, "test-session", messages); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	exists, err := storage.Exists(ctx, "test-session")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected session to exist")
	}

	if err := storage.Delete(ctx, "test-session"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, err = storage.Exists(ctx, "test-session")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected session to not exist after deletion")
	}
}

func TestSqliteStorageListSessions(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	msg := []llm.ChatMessage{
		{Role: "user", Content: "Test"},
	}

	if err := storage.Save(ctx, "session-1", msg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "session-2", msg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}

	if len(sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestSqliteStorageOverwriteSession(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	messages1 := []llm.ChatMessage{
		{Role: "user", Content: "First"},
	}

	messages2 := []llm.ChatMessage{
		{Role: "user", Content: "Second"},
		{Role: "assistant", Content: "Response"},
	}

	if err := storage.Save(ctx, "test-session", messages1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "test-session", messages2); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.Load(ctx, "test-session")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Errorf("expected 2 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "Second" {
		t.Errorf("expected 'Second', got '%s'", loaded[0].Content)
	}
}

// NoteStore tests

func TestSqliteStorageStoreAndListNotes(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	entry, err := storage.StoreNote(ctx, "waterdeep", "The party owes Volo 500 gold.")
	if err != nil {
		t.Fatalf("StoreNote failed: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected an assigned note ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}

	notes, err := storage.ListNotes(ctx, "waterdeep", 10)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if notes[0].Content != "The party owes Volo 500 gold." {
		t.Errorf("unexpected content: %q", notes[0].Content)
	}
}

func TestSqliteStorageListNotesScopedToJournal(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	if _, err := storage.StoreNote(ctx, "waterdeep", "Note A"); err != nil {
		t.Fatalf("StoreNote failed: %v", err)
	}
	if _, err := storage.StoreNote(ctx, "icewind", "Note B"); err != nil {
		t.Fatalf("StoreNote failed: %v", err)
	}

	notes, err := storage.ListNotes(ctx, "waterdeep", 10)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "Note A" {
		t.Errorf("expected only waterdeep notes, got %+v", notes)
	}
}

func TestSqliteStorageGetNote(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	entry, err := storage.StoreNote(ctx, "waterdeep", "Find the Stone of Golorr.")
	if err != nil {
		t.Fatalf("StoreNote failed: %v", err)
	}

	got, err := storage.GetNote(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected note to exist")
	}
	if got.Content != "Find the Stone of Golorr." {
		t.Errorf("unexpected content: %q", got.Content)
	}

	missing, err := storage.GetNote(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown note ID")
	}
}

func TestSqliteStorageDeleteNote(t *testing.T) {
	storage, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()

	entry, err := storage.StoreNote(ctx, "waterdeep", "Stale rumor.")
	if err != nil {
		t.Fatalf("StoreNote failed: %v", err)
	}

	existed, err := storage.DeleteNote(ctx, entry.ID)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if !existed {
		t.Error("expected delete to report the note existed")
	}

	// Idempotent: deleting again reports not found, no error.
	existed, err = storage.DeleteNote(ctx, entry.ID)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if existed {
		t.Error("expected second delete to report not found")
	}

	notes, err := storage.ListNotes(ctx, "waterdeep", 10)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected 0 notes after delete, got %d", len(notes))
	}
}
