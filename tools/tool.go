// Package tools provides the tool system for the campaign assistant.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Tool parameters and schemas hidden in implementations
// - Confirmation requirements declared by tools, enforced by the engine
// - Error handling internalized per tool
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Schema renders the parameter list as a JSON Schema object.
// This is the wire contract with the model's function-calling mechanism;
// changing a tool's schema breaks any in-flight conversation that
// references the old one.
func (m ToolMetadata) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(m.Parameters))
	required := []string{}
	for _, p := range m.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// CheckArgs validates an argument payload against the parameter schema.
// The engine runs this before Execute so that malformed model output is
// reported as an invalid-arguments condition, never an execution failure.
func CheckArgs(meta ToolMetadata, args json.RawMessage) error {
	payload := map[string]json.RawMessage{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &payload); err != nil {
			return fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	for _, p := range meta.Parameters {
		raw, present := payload[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("missing required parameter %q", p.Name)
			}
			continue
		}
		if err := checkParamType(p, raw); err != nil {
			return err
		}
	}
	return nil
}

// checkParamType verifies a single argument matches its declared type.
func checkParamType(p ToolParameter, raw json.RawMessage) error {
	var ok bool
	switch p.ParamType {
	case "string":
		var v string
		ok = json.Unmarshal(raw, &v) == nil
	case "number":
		var v float64
		ok = json.Unmarshal(raw, &v) == nil
	case "integer":
		var v int64
		ok = json.Unmarshal(raw, &v) == nil
	case "boolean":
		var v bool
		ok = json.Unmarshal(raw, &v) == nil
	case "array":
		var v []json.RawMessage
		ok = json.Unmarshal(raw, &v) == nil
	case "object":
		var v map[string]json.RawMessage
		ok = json.Unmarshal(raw, &v) == nil
	default:
		// Unknown declared type: accept anything rather than reject
		// arguments over a schema authoring mistake.
		ok = true
	}
	if !ok {
		return fmt.Errorf("parameter %q must be of type %s", p.Name, p.ParamType)
	}
	return nil
}

// ToolResult represents the result of a tool execution.
// Success is determined by whether Error is nil.
type ToolResult struct {
	Output string `json:"output"`
	Error  error  `json:"-"` // Excluded from JSON, use MarshalJSON for custom serialization
}

// MarshalJSON implements custom JSON marshaling for ToolResult.
func (t ToolResult) MarshalJSON() ([]byte, error) {
	if t.Error != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
			Error   string `json:"error"`
		}{
			Success: false,
			Output:  t.Output,
			Error:   t.Error.Error(),
		})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}{
		Success: true,
		Output:  t.Output,
	})
}

// Success returns true if the tool execution succeeded.
func (t ToolResult) Success() bool {
	return t.Error == nil
}

// SuccessResult creates a successful tool result.
func SuccessResult(output string) ToolResult {
	return ToolResult{Output: output}
}

// FailureResult creates a failed tool result.
func FailureResult(err error) ToolResult {
	return ToolResult{Error: err}
}

// FailureResultf creates a failed tool result with a formatted error message.
func FailureResultf(format string, args ...interface{}) ToolResult {
	return ToolResult{Error: fmt.Errorf(format, args...)}
}

// Tool is the interface that all tools must implement.
//
// Information Hiding: Tool implementations hide their internal execution logic,
// data structures, and error handling strategies behind this interface.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	// The name is the dispatch key and the recent-call log identifier.
	Metadata() ToolMetadata

	// Validate runs tool-specific argument checks beyond the schema (optional).
	Validate(args json.RawMessage) error

	// RequiresConfirmation reports whether the engine must obtain approval
	// before Execute is called.
	RequiresConfirmation() bool

	// DescribeAction builds a renderable preview of the pending state change.
	// It must be pure: no I/O beyond reads needed to render the preview, no
	// side effects, because it runs speculatively before any approval.
	// Returns nil when the tool has nothing to describe.
	DescribeAction(args json.RawMessage) *ActionDescription

	// Execute runs the tool with given arguments. The output string is fed
	// back to the model as the tool result.
	Execute(ctx context.Context, args json.RawMessage) (ToolResult, error)
}

// ContextAware is implemented by tools that consult the shared recent-call
// window before acting (e.g. a write tool refusing to overwrite a document
// that was never read this session). Tools that do not implement it are
// executed through Execute directly.
type ContextAware interface {
	ExecuteWithCalls(ctx context.Context, args json.RawMessage, recent []CallRecord) (ToolResult, error)
}

// BaseTool provides default implementations for optional Tool methods.
type BaseTool struct{}

// Validate provides a default no-op validation.
func (BaseTool) Validate(args json.RawMessage) error {
	return nil
}

// RequiresConfirmation defaults to false: most tools run unattended.
func (BaseTool) RequiresConfirmation() bool {
	return false
}

// DescribeAction defaults to nil: only confirming tools describe themselves.
func (BaseTool) DescribeAction(args json.RawMessage) *ActionDescription {
	return nil
}

// ToolConfig holds tool execution configuration.
// The zero value is safe: timeout defaults to 30s and retries to 3.
type ToolConfig struct {
	TimeoutSecs uint64
	MaxRetries  uint32
}

// Timeout returns the configured timeout, defaulting to 30 seconds if zero.
func (c *ToolConfig) Timeout() uint64 {
	if c == nil || c.TimeoutSecs == 0 {
		return 30
	}
	return c.TimeoutSecs
}

// Retries returns the configured max retries, defaulting to 3 if zero.
func (c *ToolConfig) Retries() uint32 {
	if c == nil || c.MaxRetries == 0 {
		return 3
	}
	return c.MaxRetries
}

// DefaultToolConfig returns the default tool configuration.
// Note: The zero value of ToolConfig is also safe and provides the same defaults.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		TimeoutSecs: 30,
		MaxRetries:  3,
	}
}
