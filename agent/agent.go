// Conversation loop over the provider's native function calling.
//
// This is THE canonical tool-invocation path. Every tool call in a
// session goes through this module: lookup, argument validation, the
// confirmation gate, execution, and the tool-result feedback to the model.
//
// Information Hiding:
// - Loop internals hidden
// - Confirmation sequencing hidden
// - Recent-call bookkeeping hidden

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	jsonutil "github.com/fennwick/loreweaver/internal/json"
	"github.com/fennwick/loreweaver/llm"
	"github.com/fennwick/loreweaver/tools"
)

// Agent drives one conversation with a model and its tools.
// Following Dave's naming advice: just agent.Agent.
type Agent struct {
	config       Config
	provider     llm.Provider
	toolRegistry *tools.Registry
	toolExecutor *tools.Executor
	approver     Approver
	sessionCtx   *tools.ToolContext
	callLog      *tools.CallLog
	verbose      bool
}

// New creates a new agent with the given configuration and provider.
// Pass an llm.Dispatcher as the provider to get endpoint gating and rate
// limiting in front of the model.
func New(config Config, provider llm.Provider) *Agent {
	registry := tools.NewRegistry()
	for _, tool := range config.Tools {
		_ = registry.Register(tool) // Ignore duplicate errors - caller's responsibility
	}

	return &Agent{
		config:       config,
		provider:     provider,
		toolRegistry: registry,
		toolExecutor: tools.NewDefaultExecutor(),
		approver:     RejectAll,
		callLog:      tools.NewCallLog(config.RecentCallCapacity),
	}
}

// WithToolConfig overrides the tool execution configuration.
func (a *Agent) WithToolConfig(config tools.ToolConfig) *Agent {
	a.toolExecutor = tools.NewExecutor(config)
	return a
}

// WithApprover sets the confirmation boundary. Without one, every
// confirming action is declined.
func (a *Agent) WithApprover(approver Approver) *Agent {
	if approver != nil {
		a.approver = approver
	}
	return a
}

// WithSessionContext attaches the shared session context so ResetSession
// can clear it together with the recent-call window. The same context must
// be the one the tools were constructed with.
func (a *Agent) WithSessionContext(tc *tools.ToolContext) *Agent {
	a.sessionCtx = tc
	return a
}

// Verbose enables verbose output (shows tool call traces).
func (a *Agent) Verbose(enabled bool) *Agent {
	a.verbose = enabled
	return a
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.config.Name
}

// Description returns the agent's description.
func (a *Agent) Description() string {
	return a.config.Description
}

// RecentCalls returns a snapshot of the recent-call window.
func (a *Agent) RecentCalls() []tools.CallRecord {
	return a.callLog.Recent()
}

// ResetSession clears the recent-call window and the shared session
// context. Call between conversation sessions so no breadcrumb from one
// session satisfies a check in the next.
func (a *Agent) ResetSession() {
	a.callLog.Clear()
	a.sessionCtx.Clear()
}

// Execute runs a task bounded by maxTurns model calls.
func (a *Agent) Execute(ctx context.Context, task string, maxTurns int) Response {
	return a.ExecuteWithHistory(ctx, task, nil, maxTurns)
}

// ExecuteWithHistory runs a task with prior conversation history.
func (a *Agent) ExecuteWithHistory(ctx context.Context, task string, history []llm.ChatMessage, maxTurns int) Response {
	startTime := time.Now()
	var steps []Step
	var toolCalls []ToolCall
	var totalUsage llm.TokenUsage
	var llmCalls int
	var lastToolOutput string

	conversation := make([]llm.ChatMessage, 0, len(history)+2)
	if len(history) == 0 || history[0].Role != "system" {
		conversation = append(conversation, llm.SystemMessage(a.config.SystemPrompt))
	}
	conversation = append(conversation, history...)
	conversation = append(conversation, llm.UserMessage(task))

	defs := a.toolDefinitions()

	for turn := 0; turn < maxTurns; turn++ {
		if ctx.Err() != nil {
			return NewFailureResponse(
				fmt.Sprintf("execution cancelled: %v", ctx.Err()),
				steps,
				elapsedMs(startTime),
			)
		}

		response, err := a.provider.ChatWithTools(ctx, conversation, defs)
		if err != nil {
			// A rate-limit rejection surfaces unchanged; whether to wait
			// out the window is the caller's policy, not the loop's.
			if errors.Is(err, llm.ErrRateLimited) {
				return NewFailureResponse(err.Error(), steps, elapsedMs(startTime))
			}
			return NewFailureResponse(
				fmt.Sprintf("model call failed: %v", err),
				steps,
				elapsedMs(startTime),
			)
		}

		llmCalls++
		if response.Usage != nil {
			totalUsage.PromptTokens += response.Usage.PromptTokens
			totalUsage.CompletionTokens += response.Usage.CompletionTokens
			totalUsage.TotalTokens += response.Usage.TotalTokens
		}

		// No tool calls: the model is done.
		if len(response.ToolCalls) == 0 {
			result := response.Content
			if a.config.ReturnToolOutput && lastToolOutput != "" {
				result = lastToolOutput
			}
			return NewSuccessResponse(
				result,
				steps,
				toolCalls,
				elapsedMs(startTime),
				a.config.Name,
				&totalUsage,
				llmCalls,
			)
		}

		conversation = append(conversation, llm.ChatMessage{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		for _, tc := range response.ToolCalls {
			if a.verbose {
				fmt.Printf("[%s:%d] Calling: %s\n", a.config.Name, turn, tc.Name)
			}

			observation, metrics := a.handleToolCall(ctx, tc)
			if metrics != nil {
				toolCalls = append(toolCalls, *metrics)
				if metrics.Success {
					lastToolOutput = observation
				}
			}

			actionName := tc.Name
			obs := observation
			steps = append(steps, Step{
				Iteration:   turn,
				Thought:     response.Content,
				Action:      &actionName,
				Observation: &obs,
			})

			conversation = append(conversation, llm.ChatMessage{
				Role:       "tool",
				Content:    observation,
				ToolCallID: tc.ID,
			})
		}
	}

	return NewTimeoutResponse(steps, toolCalls, elapsedMs(startTime), &totalUsage, llmCalls)
}

// handleToolCall runs one requested call through lookup, validation, the
// confirmation gate and execution. The returned observation is always fed
// back to the model; a bad call never aborts the session.
func (a *Agent) handleToolCall(ctx context.Context, tc llm.ToolCall) (string, *ToolCall) {
	tool, exists := a.toolRegistry.Get(tc.Name)
	if !exists {
		return fmt.Sprintf("Error: tool '%s' not found", tc.Name), nil
	}

	args := normalizeArgs(tc.Arguments)
	meta := tool.Metadata()
	start := time.Now()

	metrics := &ToolCall{Name: meta.Name, InputSize: len(args)}
	finish := func(result tools.ToolResult) (string, *ToolCall) {
		metrics.DurationMs = elapsedMs(start)
		metrics.Success = result.Success()
		if result.Success() {
			output := result.Output
			if output == "" {
				output = "(empty result)"
			}
			metrics.OutputSize = len(output)
			return output, metrics
		}
		return fmt.Sprintf("Error: %v", result.Error), metrics
	}

	// Validation precedes the confirmation gate: the host is never asked
	// to approve arguments the tool would reject anyway.
	if err := tools.CheckArgs(meta, args); err != nil {
		return finish(tools.FailureResultf("invalid arguments for '%s': %s", meta.Name, err.Error()))
	}
	if err := tool.Validate(args); err != nil {
		return finish(tools.FailureResultf("invalid arguments for '%s': %s", meta.Name, err.Error()))
	}

	if tool.RequiresConfirmation() {
		if declined, ok := a.confirm(ctx, tool, meta, args); !ok {
			return finish(declined)
		}
	}

	result, err := a.toolExecutor.ExecuteWithRecent(ctx, tool, args, a.callLog.Recent())
	if err != nil {
		return finish(tools.FailureResult(err))
	}

	// FilePath is recorded only for successful calls so read-before-
	// overwrite cannot be satisfied by a failed read.
	rec := tools.CallRecord{Name: meta.Name}
	if result.Success() {
		rec.FilePath = pathArgument(args)
	}
	a.callLog.Record(rec)

	return finish(result)
}

// confirm runs the approval gate. Returns (declineResult, false) when the
// call must not proceed. No side effect happens before this returns true:
// DescribeAction is pure and the tool has not been executed yet.
func (a *Agent) confirm(ctx context.Context, tool tools.Tool, meta tools.ToolMetadata, args json.RawMessage) (tools.ToolResult, bool) {
	desc := tool.DescribeAction(args)
	if desc == nil {
		// A confirming tool with nothing to describe still goes through
		// the gate; synthesize a minimal description.
		desc = &tools.ActionDescription{
			Title: fmt.Sprintf("Run %s", meta.Name),
			Changes: tools.GenericChange{
				Items:     []string{fmt.Sprintf("Execute tool '%s'", meta.Name)},
				RiskLevel: tools.RiskMedium,
			},
		}
	}

	decision, err := a.approver.Approve(ctx, *desc)
	if err != nil {
		return tools.FailureResultf("confirmation failed for '%s': %v", meta.Name, err), false
	}
	if decision != DecisionApproved {
		// Rejection is a normal cancelled call fed back to the model,
		// not an engine error.
		return tools.FailureResultf("user declined the '%s' action", meta.Name), false
	}
	return tools.ToolResult{}, true
}

// toolDefinitions renders the registry as wire tool definitions, sorted by
// name so the schema order is stable across turns.
func (a *Agent) toolDefinitions() []llm.ToolDefinition {
	names := a.toolRegistry.Names()
	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, name := range names {
		tool, ok := a.toolRegistry.Get(name)
		if !ok {
			continue
		}
		meta := tool.Metadata()
		defs = append(defs, llm.ToolDefinition{
			Name:        meta.Name,
			Description: meta.Description,
			Parameters:  meta.Schema(),
		})
	}
	return defs
}

// normalizeArgs repairs tool arguments that arrive fenced in markdown or
// wrapped in commentary, a known failure mode of some providers.
func normalizeArgs(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	if json.Valid(raw) {
		return raw
	}
	if extracted, err := jsonutil.ExtractJSON(string(raw)); err == nil {
		return json.RawMessage(extracted)
	}
	return raw
}

// pathArgument extracts the top-level "path" string argument, the document
// identifier shared by the file tools. The path is cleaned so the recorded
// form matches the canonical identifier the document tools compare against:
// a read of "./a.md" must satisfy a later overwrite check for "a.md".
func pathArgument(args json.RawMessage) string {
	var payload struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &payload); err != nil || payload.Path == "" {
		return ""
	}
	return filepath.Clean(payload.Path)
}

func elapsedMs(start time.Time) uint64 {
	return uint64(time.Since(start).Milliseconds())
}
