// Command execution for CLI commands.
//
// Information Hiding:
// - Command dispatch logic hidden
// - Assistant setup hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fennwick/loreweaver/agent"
	"github.com/fennwick/loreweaver/config"
	"github.com/fennwick/loreweaver/llm"
	"github.com/fennwick/loreweaver/storage"
	"github.com/fennwick/loreweaver/tools"
)

// Options holds CLI execution options.
type Options struct {
	// Provider selects an env-configured provider (openai, anthropic,
	// deepseek, gemini). Ignored when Model names a catalog entry.
	Provider string

	// Model names an entry in the model catalog. Takes precedence over
	// Provider and carries endpoint gating plus rate limiting.
	Model string

	// ModelsPath is the catalog file, defaulting to models.yaml.
	ModelsPath string

	// Root is the campaign document directory.
	Root string

	MaxTurns       int
	ToolRetries    uint32
	AutoApproveLow bool
	AssumeYes      bool
	Verbose        bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		Root:           ".",
		MaxTurns:       10,
		ToolRetries:    3,
		AutoApproveLow: true,
	}
}

// defaultDBPath is the unified database path for all storage.
const defaultDBPath = ".loreweaver/loreweaver.db"

// RunTask executes a single task with an assistant.
func RunTask(ctx context.Context, task, agentName, systemPrompt string, opts Options) error {
	provider, err := createProvider(opts)
	if err != nil {
		return err
	}

	notes, cleanup := openNoteStore(defaultDBPath)
	if cleanup != nil {
		defer cleanup()
	}

	tc := tools.NewToolContext()
	toolConfig := tools.ToolConfig{MaxRetries: opts.ToolRetries}
	a, err := CreateAgent(agentName, systemPrompt, provider, toolConfig, opts.Root, notes, tc)
	if err != nil {
		return err
	}
	a = a.WithApprover(buildApprover(opts))
	if opts.Verbose {
		a = a.Verbose(true)
	}

	fmt.Printf("Running task with %s assistant...\n\n", agentName)

	response := a.Execute(ctx, task, opts.MaxTurns)

	switch response.Type {
	case agent.ResponseSuccess:
		if opts.Verbose {
			printAgentSteps(response.Steps)
		}
		fmt.Printf("%s\n\n", response.Result)
		if len(response.Steps) > 0 {
			fmt.Printf("(%d steps)\n", len(response.Steps))
		}
		return nil
	case agent.ResponseFailure:
		fmt.Fprintf(os.Stderr, "Error: %s\n", response.Error)
		return fmt.Errorf("task failed: %s", response.Error)
	case agent.ResponseTimeout:
		fmt.Printf("Timeout. Partial result:\n%s\n", response.PartialResult)
		return fmt.Errorf("task timed out")
	default:
		return fmt.Errorf("unknown response type: %v", response.Type)
	}
}

// Chat starts an interactive chat session.
func Chat(ctx context.Context, agentName, systemPrompt, sessionID, dbPath string, opts Options) error {
	provider, err := createProvider(opts)
	if err != nil {
		return err
	}

	if dbPath == "" {
		dbPath = defaultDBPath
	}

	// One database serves both the journal tools and the conversation
	// history. Without it, chat still works but nothing persists.
	var store *storage.SqliteStorage
	if db, err := storage.OpenSqlite(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: persistence disabled, failed to open database: %v\n", err)
	} else {
		defer db.Close()
		store = db
	}

	var notes storage.NoteStore
	if store != nil {
		notes = store
	}

	tc := tools.NewToolContext()
	toolConfig := tools.ToolConfig{MaxRetries: opts.ToolRetries}
	a, err := CreateAgent(agentName, systemPrompt, provider, toolConfig, opts.Root, notes, tc)
	if err != nil {
		return err
	}
	a = a.WithApprover(buildApprover(opts))
	if opts.Verbose {
		a = a.Verbose(true)
	}

	session := sessionID
	if session == "" {
		session = "default"
	}

	// Load existing history
	var history []llm.ChatMessage
	if store != nil {
		history, err = store.Load(ctx, session)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if len(history) > 0 {
			fmt.Printf("Resuming session '%s' (%d messages)\n\n", session, len(history))
		}
	}

	fmt.Printf("Chat with %s assistant. Type 'exit' to quit.\n\n", agentName)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		response := a.ExecuteWithHistory(ctx, input, history, opts.MaxTurns)

		switch response.Type {
		case agent.ResponseSuccess:
			fmt.Printf("\n%s\n\n", response.Result)

			// Add to history
			history = append(history,
				llm.ChatMessage{Role: "user", Content: input},
				llm.ChatMessage{Role: "assistant", Content: response.Result},
			)

			// Save to storage
			if store != nil {
				if err := store.Save(ctx, session, history); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
				}
			}
		case agent.ResponseFailure:
			fmt.Fprintf(os.Stderr, "\nError: %s\n\n", response.Error)
		case agent.ResponseTimeout:
			fmt.Printf("\nTimeout: %s\n\n", response.PartialResult)
		}
	}

	// The recent-call window and read breadcrumbs are session state;
	// drop them when the chat ends.
	a.ResetSession()

	return scanner.Err()
}

// ListTools lists all available tools.
func ListTools(verbose bool) {
	tc := tools.NewToolContext()
	registry, err := tools.WithDefaults(".", tc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	// Journal tools shown against a throwaway store.
	if db, err := storage.NewSqliteInMemory(); err == nil {
		defer db.Close()
		_ = tools.RegisterNoteTools(registry, db)
	}

	fmt.Println("Available tools:")
	fmt.Println()

	for _, name := range registry.Names() {
		tool, ok := registry.Get(name)
		if !ok {
			continue
		}
		meta := tool.Metadata()

		marker := ""
		if tool.RequiresConfirmation() {
			marker = " (requires confirmation)"
		}
		fmt.Printf("  %s%s\n", meta.Name, marker)
		fmt.Printf("    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
}

// ListModels prints the model catalog.
func ListModels(path string) error {
	if path == "" {
		path = "models.yaml"
	}
	models, err := config.LoadModels(path)
	if err != nil {
		return err
	}

	fmt.Printf("Models in %s:\n\n", path)
	for _, m := range models {
		endpoints := make([]string, len(m.SupportedEndpoints))
		for i, e := range m.SupportedEndpoints {
			endpoints[i] = e.String()
		}
		fmt.Printf("  %s\n", m.Name)
		fmt.Printf("    provider: %s  model: %s\n", m.Provider, m.Model)
		fmt.Printf("    endpoints: %s\n", strings.Join(endpoints, ", "))
		if m.Limit != nil {
			fmt.Printf("    rate limit: %d calls per %s\n", m.Limit.Calls, m.Limit.RenewalPeriod)
		}
		fmt.Println()
	}
	return nil
}

// Helper functions

// createProvider builds the model behind the session. A catalog entry
// gets a dispatcher (endpoint gating, rate limiting); a bare provider
// name gets env-configured settings like the other knobs.
func createProvider(opts Options) (llm.Provider, error) {
	if opts.Model != "" {
		path := opts.ModelsPath
		if path == "" {
			path = "models.yaml"
		}
		models, err := config.LoadModels(path)
		if err != nil {
			return nil, err
		}
		cfg, ok := config.FindModel(models, opts.Model)
		if !ok {
			return nil, fmt.Errorf("model '%s' not found in %s", opts.Model, path)
		}
		return llm.NewDispatcherFromEnv(cfg)
	}

	if opts.Provider == "" {
		return nil, fmt.Errorf("--provider or --model is required for this command")
	}

	providerType, err := llm.ParseProviderType(opts.Provider)
	if err != nil {
		return nil, err
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(opts.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

// buildApprover picks the confirmation boundary for this run.
func buildApprover(opts Options) agent.Approver {
	if opts.AssumeYes {
		return ApproveAll
	}
	return NewTerminalApprover(os.Stdin, os.Stdout, opts.AutoApproveLow)
}

// openNoteStore opens the journal database. Failure disables journal
// tools but never aborts the run.
func openNoteStore(dbPath string) (storage.NoteStore, func()) {
	db, err := storage.OpenSqlite(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: journal tools disabled, failed to open database: %v\n", err)
		return nil, nil
	}
	return db, func() { _ = db.Close() }
}

const maxObservationLen = 400

func printAgentSteps(steps []agent.Step) {
	fmt.Println("--- Steps ---")
	for _, step := range steps {
		fmt.Printf("[%d] %s\n", step.Iteration, step.Thought)
		if step.Action != nil {
			fmt.Printf("    Action: %s\n", *step.Action)
		}
		if step.Observation != nil {
			obs := truncateString(*step.Observation, maxObservationLen)
			fmt.Printf("    Observation: %s\n", obs)
		}
		fmt.Println()
	}
	fmt.Println("-------------")
	fmt.Println()
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
