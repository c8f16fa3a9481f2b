// Campaign note journal types and storage abstraction.
//
// Information Hiding:
// - Note persistence backend hidden behind interface
// - ID generation and timestamps handled by the store, not callers

package storage

import (
	"context"
	"time"
)

// NoteEntry is one note in a campaign journal. IDs are assigned by the
// store on insert.
type NoteEntry struct {
	ID        string    `json:"id"`
	Journal   string    `json:"journal"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteStore persists campaign journal notes. Implementations must make
// DeleteNote idempotent: deleting an unknown ID reports not-found via the
// boolean, never an error.
type NoteStore interface {
	// StoreNote inserts a note and returns it with its assigned ID.
	StoreNote(ctx context.Context, journal, content string) (NoteEntry, error)

	// ListNotes returns the notes in a journal, newest first.
	ListNotes(ctx context.Context, journal string, limit int) ([]NoteEntry, error)

	// GetNote returns a note by ID. Returns nil, nil when not found.
	GetNote(ctx context.Context, id string) (*NoteEntry, error)

	// DeleteNote removes a note by ID, reporting whether it existed.
	DeleteNote(ctx context.Context, id string) (bool, error)
}
