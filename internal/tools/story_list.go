package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/stories"
)

// ListTool handles the story_list MCP tool.
type ListTool struct {
	store stories.Store
}

// NewListTool creates a ListTool with the given story store.
func NewListTool(store stories.Store) *ListTool {
	return &ListTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("story_list",
		mcp.WithDescription(
			"List user stories in backlog order, optionally filtered. "+
				"Unstarted stories show their 0-based backlog position, which is what story_reorder expects. "+
				"If both progress_state and played are given, progress_state wins.",
		),
		mcp.WithString("status",
			mcp.Description("Only stories with this status"),
			mcp.Enum(enumValues(stories.Statuses)...),
		),
		mcp.WithString("priority",
			mcp.Description("Only stories with this priority"),
			mcp.Enum(enumValues(stories.Priorities)...),
		),
		mcp.WithString("assignee",
			mcp.Description("Only stories assigned to this person (exact match)"),
		),
		mcp.WithString("progress_state",
			mcp.Description("Only stories in this lifecycle state"),
			mcp.Enum(enumValues(stories.ProgressStates)...),
		),
		mcp.WithBoolean("played",
			mcp.Description("Legacy filter: true for played stories, false for everything else. Ignored when progress_state is set."),
		),
	)
}

// Handle processes the story_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := listFilter(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	all, err := t.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}

	matched := filter.Apply(all)
	if len(matched) == 0 {
		if len(all) == 0 {
			return mcp.NewToolResultText("No stories yet. Create one with `story_create`."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("No stories match the given filters (%d stories in total).", len(all))), nil
	}

	positions := backlogPositions(all)

	var b strings.Builder
	if filter.IsEmpty() {
		fmt.Fprintf(&b, "# Stories (%d)\n\n", len(all))
	} else {
		fmt.Fprintf(&b, "# Stories (%d of %d)\n\n", len(matched), len(all))
	}
	b.WriteString("| Pos | ID | Title | Status | Priority | Progress | Assignee | Points |\n")
	b.WriteString("|-----|----|-------|--------|----------|----------|----------|--------|\n")
	for _, s := range matched {
		pos := "—"
		if p, ok := positions[s.ID]; ok {
			pos = fmt.Sprintf("%d", p)
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s | %s | %s | %s |\n",
			pos, s.ID, escapeCell(s.Title), s.Status, s.Priority, s.ProgressState,
			escapeCell(orDash(s.Assignee)), formatPoints(s.Points))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// listFilter builds a stories.Filter from the optional arguments.
func listFilter(req mcp.CallToolRequest) (stories.Filter, error) {
	var f stories.Filter

	status, err := statusArg(req)
	if err != nil {
		return f, err
	}
	if status != nil {
		f.Status = *status
	}

	priority, err := priorityArg(req)
	if err != nil {
		return f, err
	}
	if priority != nil {
		f.Priority = *priority
	}

	f.Assignee = strings.TrimSpace(req.GetString("assignee", ""))

	state, err := progressArg(req)
	if err != nil {
		return f, err
	}
	if state != nil {
		f.ProgressState = *state
	}

	if f.Played, err = optionalBool(req, "played"); err != nil {
		return f, err
	}
	return f, nil
}

// backlogPositions maps each Unstarted story to its index in the reorderable
// subsequence of the full collection.
func backlogPositions(all []stories.Story) map[string]int {
	positions := make(map[string]int)
	for _, s := range all {
		if s.Reorderable() {
			positions[s.ID] = len(positions)
		}
	}
	return positions
}
