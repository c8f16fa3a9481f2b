// Session-scoped shared context for cross-tool coordination.
//
// Information Hiding:
// - Map storage structure hidden from tools
// - Thread-safe access via a single mutex hidden behind methods
// - Values are opaque JSON so tools share breadcrumbs without a
//   shared schema dependency

package tools

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ToolContext is a thread-safe key/value store scoped to one conversation
// session. Tools use it to leave breadcrumbs for other tools (e.g.
// "document_read:lore/chapter1.md") without direct coupling.
//
// A ToolContext is shared by reference across every tool invocation in a
// session; it is never a process-wide singleton. Construct a fresh one per
// session with NewToolContext.
type ToolContext struct {
	mu          sync.Mutex
	store       map[string]json.RawMessage
	createdAt   time.Time
	lastCleared time.Time
}

// NewToolContext creates an empty context for a new session.
func NewToolContext() *ToolContext {
	now := time.Now()
	return &ToolContext{
		store:       make(map[string]json.RawMessage),
		createdAt:   now,
		lastCleared: now,
	}
}

// Set inserts or overwrites a value. The only failure mode is a nil
// receiver; a constructed context never fails and never panics the caller.
func (c *ToolContext) Set(key string, value json.RawMessage) error {
	if c == nil {
		return fmt.Errorf("tool context is not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		c.store = make(map[string]json.RawMessage)
	}
	// Store a copy so callers cannot mutate an entry after setting it.
	buf := make(json.RawMessage, len(value))
	copy(buf, value)
	c.store[key] = buf
	return nil
}

// SetString stores a plain string value as JSON.
func (c *ToolContext) SetString(key, value string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %q: %w", key, err)
	}
	return c.Set(key, encoded)
}

// Get returns a copy of the stored value. A read must never block or
// crash a tool, so any unusable state degrades to "not found".
func (c *ToolContext) Get(key string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.store[key]
	if !ok {
		return nil, false
	}
	buf := make(json.RawMessage, len(value))
	copy(buf, value)
	return buf, true
}

// GetString returns a stored string value.
func (c *ToolContext) GetString(key string) (string, bool) {
	raw, ok := c.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// HasKey reports whether the key is present. Same degradation policy as Get.
func (c *ToolContext) HasKey(key string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.store[key]
	return ok
}

// Clear wipes every entry and stamps the clear time. Called between
// conversation sessions so stale state never leaks into the next one.
func (c *ToolContext) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]json.RawMessage)
	c.lastCleared = time.Now()
}

// ClearPattern removes every key with the given prefix, leaving all other
// keys untouched. Used for scoped invalidation, e.g. clearing all
// "document_read:" breadcrumbs for one campaign. Idempotent.
func (c *ToolContext) ClearPattern(prefix string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.store {
		if strings.HasPrefix(key, prefix) {
			delete(c.store, key)
		}
	}
}

// Len returns the number of stored entries.
func (c *ToolContext) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.store)
}

// IsEmpty reports whether the context holds no entries.
func (c *ToolContext) IsEmpty() bool {
	return c.Len() == 0
}

// Keys returns the stored keys for diagnostics. Iteration order is map
// order: do not use this for control flow.
func (c *ToolContext) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.store))
	for key := range c.store {
		keys = append(keys, key)
	}
	return keys
}

// CreatedAt returns when the context was constructed.
func (c *ToolContext) CreatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createdAt
}

// LastCleared returns when the context was last cleared.
func (c *ToolContext) LastCleared() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCleared
}
