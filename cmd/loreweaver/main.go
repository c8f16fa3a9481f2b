// Package main provides the loreweaver CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fennwick/loreweaver/cli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider       string
	model          string
	modelsPath     string
	root           string
	maxTurns       int
	toolRetries    uint32
	autoApproveLow bool
	assumeYes      bool
	verbose        bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "loreweaver",
		Short: "LLM assistant for tabletop-campaign management",
		Long: `Loreweaver manages a tabletop campaign's documents and journal through
an LLM assistant. State-changing actions (overwriting documents, editing
files, deleting journal entries) are previewed and confirmed before they
run; declining an action cancels it and the conversation continues.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model catalog entry (overrides --provider, adds endpoint gating and rate limits)")
	rootCmd.PersistentFlags().StringVar(&modelsPath, "models", "models.yaml", "Path to the model catalog")
	rootCmd.PersistentFlags().StringVar(&root, "root", ".", "Campaign document directory")
	rootCmd.PersistentFlags().IntVarP(&maxTurns, "max-turns", "m", 10, "Maximum model turns per task")
	rootCmd.PersistentFlags().Uint32Var(&toolRetries, "tool-retries", 3, "Maximum retries for tool execution")
	rootCmd.PersistentFlags().BoolVar(&autoApproveLow, "auto-approve-low", true, "Approve low-risk actions without prompting")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Approve every action without prompting")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(agentsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider:       provider,
		Model:          model,
		ModelsPath:     modelsPath,
		Root:           root,
		MaxTurns:       maxTurns,
		ToolRetries:    toolRetries,
		AutoApproveLow: autoApproveLow,
		AssumeYes:      assumeYes,
		Verbose:        verbose,
	}
}

func runCmd() *cobra.Command {
	var agentName string
	var systemPrompt string

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Execute a single task with an assistant",
		Long: `Execute a single task. The assistant may call campaign tools; actions
that change state are previewed and confirmed on the terminal first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunTask(context.Background(), args[0], agentName, systemPrompt, options())
		},
	}

	cmd.Flags().StringVarP(&agentName, "agent", "a", "keeper", "Assistant to use (keeper, scribe, archivist, narrator)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "Override the assistant's system prompt")

	return cmd
}

func chatCmd() *cobra.Command {
	var agentName string
	var systemPrompt string
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session. With --session, conversation history
persists in the campaign database and resumes on the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), agentName, systemPrompt, sessionID, dbPath, options())
		},
	}

	cmd.Flags().StringVarP(&agentName, "agent", "a", "keeper", "Assistant to use (keeper, scribe, archivist, narrator)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "Override the assistant's system prompt")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for storage")

	return cmd
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListModels(modelsPath)
		},
	}
}

func agentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the built-in assistants",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Available assistants:")
			fmt.Println()
			for _, info := range cli.ListAvailableAgents() {
				fmt.Printf("  %s\n    %s\n\n", info.Name, info.Description)
			}
			return nil
		},
	}
}
