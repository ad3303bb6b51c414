// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the concrete stores and injects
// them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/storytrack/storytrack/internal/config"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/logging"
	"github.com/storytrack/storytrack/internal/prompts"
	"github.com/storytrack/storytrack/internal/resources"
	"github.com/storytrack/storytrack/internal/stories"
	"github.com/storytrack/storytrack/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the server name reported to MCP clients.
const Name = "storytrack"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the journal's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if the journal is disabled.
func New(cfg config.Config, logger *logging.AppLogger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = logging.GetDefault()
	}

	if err := cfg.Validate(); err != nil {
		return nil, noop, err
	}
	dataDir := cfg.ResolvedDataDir()

	// --- Create shared dependencies ---

	store := stories.NewFileStore(dataDir, logger.With("component", "stories"))
	logger.Info("Story store ready", "path", store.Path())

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(loggingMiddleware(logger)),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register story tools ---

	createTool := tools.NewCreateTool(store)
	s.AddTool(createTool.Definition(), createTool.Handle)

	listTool := tools.NewListTool(store)
	s.AddTool(listTool.Definition(), listTool.Handle)

	editTool := tools.NewEditTool(store)
	s.AddTool(editTool.Definition(), editTool.Handle)

	progressTool := tools.NewSetProgressTool(store)
	s.AddTool(progressTool.Definition(), progressTool.Handle)

	playedTool := tools.NewMarkPlayedTool(store)
	s.AddTool(playedTool.Definition(), playedTool.Handle)

	reorderTool := tools.NewReorderTool(store)
	s.AddTool(reorderTool.Definition(), reorderTool.Handle)

	// --- Activity journal ---
	//
	// The journal is an independent subsystem: if it fails to open, the
	// story tools keep working and story_history is not registered.

	cleanup := noop
	if !cfg.Journal {
		logger.Info("Activity journal disabled by configuration")
	} else if js, err := journal.New(journal.DefaultConfig(store.Dir())); err != nil {
		logger.Warn("Activity journal disabled", "error", err)
	} else {
		cleanup = func() {
			if err := js.Close(); err != nil {
				logger.Warn("Journal close failed", "error", err)
			}
		}

		bridge := tools.NewJournalBridge(js, logger.With("component", "journal"))
		createTool.SetObserver(bridge)
		editTool.SetObserver(bridge)
		progressTool.SetObserver(bridge)
		playedTool.SetObserver(bridge)
		reorderTool.SetObserver(bridge)

		historyTool := tools.NewHistoryTool(js, store)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	backlogPrompt := prompts.NewBacklogPrompt()
	s.AddPrompt(backlogPrompt.Definition(), backlogPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.BoardResource(), resourceHandler.HandleBoard)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the journal
// is disabled or hasn't been initialized.
func noop() {}

// loggingMiddleware logs every tool call with its duration. Tool-level
// errors are logged at info, Go errors at error.
func loggingMiddleware(logger *logging.AppLogger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, req)

			kv := []any{"tool", req.Params.Name, "duration", time.Since(start)}
			switch {
			case err != nil:
				logger.Error("Tool call failed", append(kv, "error", err)...)
			case result != nil && result.IsError:
				logger.Info("Tool call rejected", kv...)
			default:
				logger.Debug("Tool call", kv...)
			}
			return result, err
		}
	}
}

func serverInstructions() string {
	return `# storytrack: User Story Tracker

storytrack keeps a list of user stories for the current project in a JSON file
(.storytrack/stories.json by default). Each story has a title, a description,
a workflow status, a priority, an optional assignee and an optional estimate.

## Lifecycle

Every story is in exactly one progress state:

- Unstarted: in the backlog, can be reordered
- Started: being worked on
- Played: done

New stories are always Unstarted and appended to the end of the list.
Use story_set_progress to move a story between states. Any transition is
allowed. story_mark_played is the older boolean view: played=true means
Played, played=false means Unstarted.

Status (New, In Progress, In Review, Done, Blocked) is a separate workflow
label and does not affect the lifecycle.

## Ordering

story_reorder moves an Unstarted story to a 0-based position among the
Unstarted stories only. story_list shows that position in its Pos column.
After a reorder, all Started and Played stories come first in their
existing order, followed by the Unstarted backlog in its new order.
Started or Played stories cannot be moved.

## Tools

- story_create: add a story (title and description required)
- story_list: list stories, optionally filtered by status, priority,
  assignee, progress_state or played
- story_edit: change any of title, description, status, priority,
  assignee, points; other fields are kept
- story_set_progress: set Unstarted, Started or Played
- story_mark_played: legacy played/not played switch
- story_reorder: move an Unstarted story within the backlog
- story_history: recent activity, per story or overall (only when the
  activity journal is enabled)

## Guidance

- Always take ids from story_list or a previous tool result, never guess them
- Confirm with the user before reordering more than one story
- The resource stories://board has the whole collection as JSON
`
}
