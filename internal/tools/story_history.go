package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/stories"
)

// HistoryTool handles the story_history MCP tool. It is only registered
// when the activity journal is enabled.
type HistoryTool struct {
	journal *journal.Store
	stories stories.Store
}

// NewHistoryTool creates a HistoryTool reading from the journal.
func NewHistoryTool(js *journal.Store, ss stories.Store) *HistoryTool {
	return &HistoryTool{journal: js, stories: ss}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("story_history",
		mcp.WithDescription(
			"Show the activity journal, newest first. Pass an id to see the history "+
				"of one story, or omit it to see recent activity across all stories.",
		),
		mcp.WithString("id",
			mcp.Description("Story id (optional)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of events to return (default: 20)"),
		),
	)
}

// Handle processes the story_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))

	limit := 0
	raw, err := optionalInt(req, "limit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if raw != nil {
		if *raw < 1 {
			return mcp.NewToolResultError("'limit' must be at least 1"), nil
		}
		limit = *raw
	}

	title := "Recent Activity"
	if id != "" {
		story, err := t.stories.Get(id)
		if err != nil {
			return nil, fmt.Errorf("loading story: %w", err)
		}
		if story == nil {
			return notFoundResult(id), nil
		}
		title = fmt.Sprintf("History of %q", story.Title)
	}

	var events []journal.Event
	if id == "" {
		events, err = t.journal.Recent(limit)
	} else {
		events, err = t.journal.History(id, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	if len(events) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("# %s\n\nNo activity recorded yet.", title)), nil
	}

	total, err := t.journal.Count(id)
	if err != nil {
		return nil, fmt.Errorf("counting journal events: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Showing %d of %d events._\n\n", len(events), total)
	for _, e := range events {
		fmt.Fprintf(&b, "- %s **%s** `%s`: %s\n", e.CreatedAt, e.Kind, e.StoryID, e.Summary)
	}

	return mcp.NewToolResultText(b.String()), nil
}
