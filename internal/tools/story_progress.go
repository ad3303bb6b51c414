package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/stories"
)

// SetProgressTool handles the story_set_progress MCP tool.
type SetProgressTool struct {
	store    stories.Store
	observer StoryObserver
}

// NewSetProgressTool creates a SetProgressTool with the given story store.
func NewSetProgressTool(store stories.Store) *SetProgressTool {
	return &SetProgressTool{store: store}
}

// SetObserver installs the optional mutation observer.
func (t *SetProgressTool) SetObserver(obs StoryObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *SetProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("story_set_progress",
		mcp.WithDescription(
			"Move a story through its lifecycle: Unstarted -> Started -> Played. "+
				"Any transition is allowed, including moving back to Unstarted. "+
				"A story returned to Unstarted keeps its place in the list.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Story id"),
		),
		mcp.WithString("progress_state",
			mcp.Required(),
			mcp.Description("Target lifecycle state"),
			mcp.Enum(enumValues(stories.ProgressStates)...),
		),
	)
}

// Handle processes the story_set_progress tool call.
func (t *SetProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := progressArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if state == nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"'progress_state' is required (one of: %v)", stories.ProgressStates)), nil
	}

	return applyProgress(t.store, t.observer, id, *state, func() (*stories.Story, error) {
		return t.store.SetProgressState(id, *state)
	})
}

// MarkPlayedTool handles the story_mark_played MCP tool, the boolean view
// of the lifecycle kept for older clients.
type MarkPlayedTool struct {
	store    stories.Store
	observer StoryObserver
}

// NewMarkPlayedTool creates a MarkPlayedTool with the given story store.
func NewMarkPlayedTool(store stories.Store) *MarkPlayedTool {
	return &MarkPlayedTool{store: store}
}

// SetObserver installs the optional mutation observer.
func (t *MarkPlayedTool) SetObserver(obs StoryObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *MarkPlayedTool) Definition() mcp.Tool {
	return mcp.NewTool("story_mark_played",
		mcp.WithDescription(
			"Mark a story as played (done on stage) or not played. "+
				"played=true sets the story to Played; played=false sets it back to Unstarted, "+
				"even if it was Started. Prefer story_set_progress for finer control.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Story id"),
		),
		mcp.WithBoolean("played",
			mcp.Required(),
			mcp.Description("true to mark played, false to mark not played"),
		),
	)
}

// Handle processes the story_mark_played tool call.
func (t *MarkPlayedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	played, err := optionalBool(req, "played")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if played == nil {
		return mcp.NewToolResultError("'played' is required (true or false)"), nil
	}

	target := stories.ProgressUnstarted
	if *played {
		target = stories.ProgressPlayed
	}

	return applyProgress(t.store, t.observer, id, target, func() (*stories.Story, error) {
		return t.store.MarkPlayed(id, *played)
	})
}

// applyProgress runs a lifecycle mutation and renders the shared response.
// The previous state is read first so the journal summary can name the
// transition.
func applyProgress(
	store stories.Store,
	obs StoryObserver,
	id string,
	target stories.ProgressState,
	mutate func() (*stories.Story, error),
) (*mcp.CallToolResult, error) {
	before, err := store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("loading story: %w", err)
	}
	if before == nil {
		return notFoundResult(id), nil
	}

	story, err := mutate()
	if err != nil {
		if stories.IsDomainError(err) {
			return operationFailedResult(err), nil
		}
		return nil, fmt.Errorf("updating progress: %w", err)
	}
	if story == nil {
		return notFoundResult(id), nil
	}

	notifyObserver(obs, story, journal.KindProgress,
		fmt.Sprintf("%s -> %s", before.ProgressState, target))

	response := fmt.Sprintf("# Progress Updated\n\n%s -> **%s**\n\n%s",
		before.ProgressState, story.ProgressState, formatStory(story))
	if story.Reorderable() {
		response += "\nThe story is back in the reorderable backlog at its original place in the list.\n"
	}

	return mcp.NewToolResultText(response), nil
}
