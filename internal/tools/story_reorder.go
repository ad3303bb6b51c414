package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/stories"
)

// ReorderTool handles the story_reorder MCP tool.
type ReorderTool struct {
	store    stories.Store
	observer StoryObserver
}

// NewReorderTool creates a ReorderTool with the given story store.
func NewReorderTool(store stories.Store) *ReorderTool {
	return &ReorderTool{store: store}
}

// SetObserver installs the optional mutation observer.
func (t *ReorderTool) SetObserver(obs StoryObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *ReorderTool) Definition() mcp.Tool {
	return mcp.NewTool("story_reorder",
		mcp.WithDescription(
			"Move an Unstarted story to a new 0-based position among the Unstarted stories. "+
				"Started and Played stories cannot be moved. After a move, all Started and Played "+
				"stories are listed first (in their existing order), followed by the Unstarted backlog.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Id of the Unstarted story to move"),
		),
		mcp.WithNumber("position",
			mcp.Required(),
			mcp.Description("Target index within the Unstarted stories, starting at 0 (see the Pos column of story_list)"),
		),
	)
}

// Handle processes the story_reorder tool call.
func (t *ReorderTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	position, err := positionArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	before, err := t.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	current, inBacklog := backlogPositions(before)[id]

	story, err := t.store.Reorder(id, position)
	if err != nil {
		if stories.IsDomainError(err) {
			return operationFailedResult(err), nil
		}
		return nil, fmt.Errorf("reordering story: %w", err)
	}
	if story == nil {
		return notFoundResult(id), nil
	}

	// A move to the current position writes nothing, so there is nothing
	// to journal.
	if inBacklog && current == position {
		return mcp.NewToolResultText(fmt.Sprintf(
			"# Nothing To Do\n\n`%s` (%s) is already at backlog position %d.\n\n%s",
			story.ID, story.Title, position, formatBacklog(before))), nil
	}

	notifyObserver(t.observer, story, journal.KindReordered,
		fmt.Sprintf("Moved from backlog position %d to %d", current, position))

	all, err := t.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}

	response := fmt.Sprintf("# Story Reordered\n\n`%s` (%s) is now at backlog position %d.\n\n",
		story.ID, story.Title, position)
	response += formatBacklog(all)

	return mcp.NewToolResultText(response), nil
}

// formatBacklog renders the Unstarted stories in backlog order.
func formatBacklog(all []stories.Story) string {
	response := "## Backlog\n\n"
	n := 0
	for _, s := range all {
		if !s.Reorderable() {
			continue
		}
		response += fmt.Sprintf("%d. %s (`%s`)\n", n, s.Title, s.ID)
		n++
	}
	if n == 0 {
		response += "_empty_\n"
	}
	return response
}
