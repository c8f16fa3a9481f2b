// Bounded recent-call history shared across tools in a session.
//
// Information Hiding:
// - Ring storage and eviction policy hidden behind Record/Recent
// - Callers always receive a snapshot copy, never live state

package tools

import (
	"sync"
	"time"
)

// CallRecord captures one completed tool invocation. FilePath is set only
// for tools that touch a document, so write tools can check whether a file
// was read earlier in the session.
type CallRecord struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"file_path,omitempty"`
}

// CallLog is a bounded, thread-safe log of the most recent tool calls in a
// session. When full, recording a new call evicts the oldest one.
type CallLog struct {
	mu       sync.Mutex
	records  []CallRecord
	capacity int
}

// DefaultCallLogCapacity bounds the recent-call window when the host does
// not configure one.
const DefaultCallLogCapacity = 50

// NewCallLog creates a log holding at most capacity records.
func NewCallLog(capacity int) *CallLog {
	if capacity <= 0 {
		capacity = DefaultCallLogCapacity
	}
	return &CallLog{
		records:  make([]CallRecord, 0, capacity),
		capacity: capacity,
	}
}

// Record appends a call, evicting the oldest record when the log is full.
func (l *CallLog) Record(rec CallRecord) {
	if l == nil {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) >= l.capacity {
		// Shift in place rather than reslice so the backing array
		// never grows past capacity.
		copy(l.records, l.records[1:])
		l.records[len(l.records)-1] = rec
		return
	}
	l.records = append(l.records, rec)
}

// Recent returns a snapshot of the log, oldest first.
func (l *CallLog) Recent() []CallRecord {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]CallRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of recorded calls.
func (l *CallLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Clear empties the log. Called alongside ToolContext.Clear between sessions.
func (l *CallLog) Clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = l.records[:0]
}

// ReadOf reports whether the log contains a read of the given file path by
// the named tool. Used by write tools to enforce read-before-overwrite.
func ReadOf(recent []CallRecord, toolName, filePath string) bool {
	for _, rec := range recent {
		if rec.Name == toolName && rec.FilePath == filePath {
			return true
		}
	}
	return false
}
