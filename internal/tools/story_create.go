package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/stories"
)

// CreateTool handles the story_create MCP tool.
type CreateTool struct {
	store    stories.Store
	observer StoryObserver
}

// NewCreateTool creates a CreateTool with the given story store.
func NewCreateTool(store stories.Store) *CreateTool {
	return &CreateTool{store: store}
}

// SetObserver installs the optional mutation observer.
func (t *CreateTool) SetObserver(obs StoryObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("story_create",
		mcp.WithDescription(
			"Create a new user story. The story is appended to the end of the backlog "+
				"and always starts Unstarted (not played). The id, timestamps and progress "+
				"state are assigned by the server.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title, e.g. 'Login'"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The story itself, e.g. 'As a user, I want to log in so that...'"),
		),
		mcp.WithString("status",
			mcp.Description("Workflow status (default: New)"),
			mcp.Enum(enumValues(stories.Statuses)...),
		),
		mcp.WithString("priority",
			mcp.Description("Priority (default: Medium)"),
			mcp.Enum(enumValues(stories.Priorities)...),
		),
		mcp.WithString("assignee",
			mcp.Description("Who is working on the story"),
		),
		mcp.WithNumber("points",
			mcp.Description("Estimate in story points (non-negative)"),
		),
	)
}

// Handle processes the story_create tool call.
func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := strings.TrimSpace(req.GetString("title", ""))
	description := strings.TrimSpace(req.GetString("description", ""))
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if description == "" {
		return mcp.NewToolResultError("'description' is required: write the story text"), nil
	}

	in := stories.NewStory{
		Title:       title,
		Description: description,
		Assignee:    strings.TrimSpace(req.GetString("assignee", "")),
	}

	status, err := statusArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if status != nil {
		in.Status = *status
	}

	priority, err := priorityArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if priority != nil {
		in.Priority = *priority
	}

	if in.Points, err = pointsArg(req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	story, err := t.store.Create(in)
	if err != nil {
		if stories.IsDomainError(err) {
			return operationFailedResult(err), nil
		}
		return nil, fmt.Errorf("creating story: %w", err)
	}

	notifyObserver(t.observer, story, journal.KindCreated,
		fmt.Sprintf("Created %q (%s, %s)", story.Title, story.Status, story.Priority))

	response := "# Story Created\n\n" +
		formatStory(story) +
		"\n## Next Step\n\n" +
		"The story is at the end of the Unstarted backlog. Use `story_reorder` to move it, " +
		"or `story_set_progress` when work begins."

	return mcp.NewToolResultText(response), nil
}
