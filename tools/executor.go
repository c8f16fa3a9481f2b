// Tool Executor with Retry Logic.
//
// Information Hiding:
// - Retry strategy implementation hidden
// - Backoff algorithm hidden
// - Error classification logic hidden
// - Panic containment hidden from the conversation loop

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Executor provides tool execution with argument checking, retry, timeout
// and panic containment. A panicking tool must never take down the
// conversation loop; it is reported as a failed call instead.
type Executor struct {
	config ToolConfig
}

// NewExecutor creates a new tool executor with the given configuration.
func NewExecutor(config ToolConfig) *Executor {
	return &Executor{config: config}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return &Executor{config: DefaultToolConfig()}
}

// Execute runs a tool with retry logic. Equivalent to ExecuteWithRecent
// with an empty recent-call window.
func (e *Executor) Execute(ctx context.Context, tool Tool, args json.RawMessage) (ToolResult, error) {
	return e.ExecuteWithRecent(ctx, tool, args, nil)
}

// ExecuteWithRecent runs a tool with retry logic, handing tools that
// consult session history the recent-call window. Schema and tool-specific
// argument checks run once before the first attempt: malformed arguments
// are an invalid-arguments failure, never retried as an execution error.
func (e *Executor) ExecuteWithRecent(ctx context.Context, tool Tool, args json.RawMessage, recent []CallRecord) (ToolResult, error) {
	meta := tool.Metadata()
	if err := CheckArgs(meta, args); err != nil {
		return FailureResultf("invalid arguments for '%s': %s", meta.Name, err.Error()), nil
	}
	if err := tool.Validate(args); err != nil {
		return FailureResultf("invalid arguments for '%s': %s", meta.Name, err.Error()), nil
	}

	var lastErr error
	maxRetries := e.config.Retries()

	for attempt := uint32(0); attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := e.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ToolResult{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := runTool(ctx, tool, args, recent)
		if err != nil {
			lastErr = err
			continue
		}

		if result.Success() {
			return result, nil
		}

		// Check if we should retry this failure
		if !e.shouldRetry(result) {
			return result, nil
		}

		lastErr = result.Error
	}

	// All retries exhausted
	errMsg := "unknown error"
	if lastErr != nil {
		errMsg = lastErr.Error()
	}
	return FailureResultf("tool '%s' failed after %d attempts: %s", meta.Name, maxRetries, errMsg), nil
}

// runTool dispatches one attempt, routing history-aware tools through
// ExecuteWithCalls and containing panics.
func runTool(ctx context.Context, tool Tool, args json.RawMessage, recent []CallRecord) (result ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = FailureResultf("tool '%s' panicked: %v", tool.Metadata().Name, r)
			err = nil
		}
	}()

	if ca, ok := tool.(ContextAware); ok {
		return ca.ExecuteWithCalls(ctx, args, recent)
	}
	return tool.Execute(ctx, args)
}

// calculateBackoff returns the backoff duration for the given attempt.
func (e *Executor) calculateBackoff(attempt uint32) time.Duration {
	const (
		baseDelay = 100 * time.Millisecond
		maxDelay  = 5 * time.Second
	)

	delay := baseDelay * time.Duration(1<<attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// shouldRetry determines if an error is retryable.
func (e *Executor) shouldRetry(result ToolResult) bool {
	if result.Error == nil {
		return true
	}

	errLower := strings.ToLower(result.Error.Error())

	// Don't retry argument problems, refusals or permission issues
	nonRetryable := []string{"invalid arguments", "validation", "not allowed", "permission", "declined", "refus", "panicked", "empty"}
	for _, s := range nonRetryable {
		if strings.Contains(errLower, s) {
			return false
		}
	}

	// Always retry timeouts and network errors
	retryable := []string{"timeout", "connection", "network"}
	for _, s := range retryable {
		if strings.Contains(errLower, s) {
			return true
		}
	}

	// Default: retry
	return true
}

// ExecuteWithTimeout runs a tool with a specific timeout.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, tool Tool, args json.RawMessage, timeout time.Duration) (ToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.Execute(ctx, tool, args)
}

// ExecuteOnce runs a tool once without retries.
func ExecuteOnce(ctx context.Context, tool Tool, args json.RawMessage) (ToolResult, error) {
	if err := CheckArgs(tool.Metadata(), args); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if err := tool.Validate(args); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	return runTool(ctx, tool, args, nil)
}
