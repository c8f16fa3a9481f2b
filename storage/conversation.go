// Conversation history abstraction for campaign sessions.
//
// Information Hiding:
// - Persistence backend hidden behind the interface
// - Memory, SQLite and future backends are interchangeable
// - Each backend encapsulates its own schema and locking

package storage

import (
	"context"

	"github.com/fennwick/loreweaver/llm"
)

// ConversationStorage persists the chat history of campaign sessions.
// A session is one continuous conversation with an assistant, keyed by
// the host-chosen session ID.
type ConversationStorage interface {
	// Save replaces the stored history of a session.
	Save(ctx context.Context, sessionID string, history []llm.ChatMessage) error

	// Load returns the stored history of a session. A session that was
	// never saved yields an empty slice, not nil and not an error;
	// errors are reserved for backend failures.
	Load(ctx context.Context, sessionID string) ([]llm.ChatMessage, error)

	// Delete removes a session and its history.
	Delete(ctx context.Context, sessionID string) error

	// ListSessions returns the IDs of all stored sessions.
	ListSessions(ctx context.Context) ([]string, error)

	// Exists reports whether a session has stored history.
	Exists(ctx context.Context, sessionID string) (bool, error)
}
