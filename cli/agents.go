// Pre-built assistant configurations for CLI commands.
//
// Information Hiding:
// - Assistant creation details hidden
// - Tool wiring per assistant hidden

package cli

import (
	"github.com/fennwick/loreweaver/agent"
	"github.com/fennwick/loreweaver/llm"
	"github.com/fennwick/loreweaver/storage"
	"github.com/fennwick/loreweaver/tools"
)

// AgentType represents available assistant types.
type AgentType string

const (
	// AgentKeeper has the full toolset: documents and journal.
	AgentKeeper AgentType = "keeper"
	// AgentScribe works the campaign documents only.
	AgentScribe AgentType = "scribe"
	// AgentArchivist works the campaign journal only.
	AgentArchivist AgentType = "archivist"
	// AgentNarrator has no tools and only converses.
	AgentNarrator AgentType = "narrator"
)

// documentTools builds the document toolset rooted at the campaign directory.
func documentTools(root string, tc *tools.ToolContext) []tools.Tool {
	return []tools.Tool{
		tools.NewReadDocumentTool(root, tools.DefaultMaxFileSize, tc),
		tools.NewWriteDocumentTool(root, tools.DefaultMaxFileSize),
		tools.NewEditDocumentTool(root, tools.DefaultMaxFileSize),
	}
}

// noteTools builds the journal toolset. Returns nil when no store is
// available so assistants degrade to document-only operation.
func noteTools(notes storage.NoteStore) []tools.Tool {
	if notes == nil {
		return nil
	}
	return []tools.Tool{
		tools.NewRecordNoteTool(notes),
		tools.NewListNotesTool(notes),
		tools.NewDeleteNoteTool(notes),
	}
}

// CreateAgent creates an assistant by name with the given provider.
// root is the campaign document directory; notes may be nil; tc is the
// shared session context the document tools coordinate through.
func CreateAgent(name, systemPrompt string, provider llm.Provider, toolConfig tools.ToolConfig, root string, notes storage.NoteStore, tc *tools.ToolContext) (*agent.Agent, error) {
	var builder *agent.Builder

	switch AgentType(name) {
	case AgentKeeper:
		prompt := systemPrompt
		if prompt == "" {
			prompt = `You are the keeper of a tabletop campaign. You manage the campaign's
documents and journal on behalf of the game master.

Rules:
- Read a document before rewriting it, so you never clobber prose you have not seen.
- Destructive actions (overwrites, edits, deleting notes) require the user's approval;
  if the user declines, accept the decision and continue without the change.
- Keep journal entries short and factual.`
		}
		builder = agent.NewBuilder("keeper").
			Description("Full campaign assistant: documents and journal").
			SystemPrompt(prompt).
			Tools(documentTools(root, tc)).
			Tools(noteTools(notes))

	case AgentScribe:
		prompt := systemPrompt
		if prompt == "" {
			prompt = `You are a campaign scribe. You read, write and edit the campaign's
documents. Read a document before rewriting it. Destructive changes require
the user's approval; if declined, continue without the change.`
		}
		builder = agent.NewBuilder("scribe").
			Description("Document assistant: read, write and edit campaign files").
			SystemPrompt(prompt).
			Tools(documentTools(root, tc))

	case AgentArchivist:
		prompt := systemPrompt
		if prompt == "" {
			prompt = `You are a campaign archivist. You record, list and prune entries in
the campaign journal. Keep entries short and factual. Deleting an entry
requires the user's approval.`
		}
		builder = agent.NewBuilder("archivist").
			Description("Journal assistant: record and manage campaign notes").
			SystemPrompt(prompt).
			Tools(noteTools(notes))

	case AgentNarrator:
		prompt := systemPrompt
		if prompt == "" {
			prompt = "You are a campaign narrator. Answer questions about the world in vivid, concise prose."
		}
		builder = agent.NewBuilder("narrator").
			Description("Conversational assistant with no tools").
			SystemPrompt(prompt)

	default:
		// Unknown names get the full toolset under a custom prompt.
		prompt := systemPrompt
		if prompt == "" {
			prompt = "You are a helpful assistant for managing a tabletop campaign."
		}
		builder = agent.NewBuilder(name).
			Description("Custom assistant").
			SystemPrompt(prompt).
			Tools(documentTools(root, tc)).
			Tools(noteTools(notes))
	}

	config := builder.Build()
	return agent.New(config, provider).WithToolConfig(toolConfig).WithSessionContext(tc), nil
}

// AgentInfo describes an assistant's basic information.
type AgentInfo struct {
	Name        string
	Description string
}

// ListAvailableAgents returns the names and descriptions of the built-in
// assistants.
func ListAvailableAgents() []AgentInfo {
	return []AgentInfo{
		{Name: "keeper", Description: "Full campaign assistant - documents and journal"},
		{Name: "scribe", Description: "Document assistant - read, write and edit campaign files"},
		{Name: "archivist", Description: "Journal assistant - record and manage campaign notes"},
		{Name: "narrator", Description: "Conversational assistant - no tools"},
	}
}
