package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/stories"
)

// EditTool handles the story_edit MCP tool.
// Only the supplied fields change; lifecycle is handled by story_set_progress.
type EditTool struct {
	store    stories.Store
	observer StoryObserver
}

// NewEditTool creates an EditTool with the given story store.
func NewEditTool(store stories.Store) *EditTool {
	return &EditTool{store: store}
}

// SetObserver installs the optional mutation observer.
func (t *EditTool) SetObserver(obs StoryObserver) {
	t.observer = obs
}

// Definition returns the MCP tool definition for registration.
func (t *EditTool) Definition() mcp.Tool {
	return mcp.NewTool("story_edit",
		mcp.WithDescription(
			"Edit fields of an existing story. Only the fields you pass are changed; "+
				"everything else, including progress state, is kept. "+
				"Calling with just an id refreshes the story's updated timestamp.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Story id"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New story text"),
		),
		mcp.WithString("status",
			mcp.Description("New workflow status"),
			mcp.Enum(enumValues(stories.Statuses)...),
		),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum(enumValues(stories.Priorities)...),
		),
		mcp.WithString("assignee",
			mcp.Description("New assignee (empty string clears it)"),
		),
		mcp.WithNumber("points",
			mcp.Description("New estimate in story points (non-negative)"),
		),
	)
}

// Handle processes the story_edit tool call.
func (t *EditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patch, changed, err := editPatch(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	story, err := t.store.Edit(id, patch)
	if err != nil {
		if stories.IsDomainError(err) {
			return operationFailedResult(err), nil
		}
		return nil, fmt.Errorf("editing story: %w", err)
	}
	if story == nil {
		return notFoundResult(id), nil
	}

	summary := "Touched (no fields supplied)"
	if !patch.IsEmpty() {
		summary = "Edited " + strings.Join(changed, ", ")
	}
	notifyObserver(t.observer, story, journal.KindEdited, summary)

	response := "# Story Updated\n\n" + formatStory(story)
	if patch.IsEmpty() {
		response += "\n_No fields were supplied; only the updated timestamp changed._\n"
	} else {
		response += fmt.Sprintf("\n_Changed: %s_\n", strings.Join(changed, ", "))
	}

	return mcp.NewToolResultText(response), nil
}

// editPatch builds a Patch from the supplied arguments and reports which
// fields it touches, in a stable order. Text fields are trimmed as on create.
func editPatch(req mcp.CallToolRequest) (stories.Patch, []string, error) {
	var p stories.Patch
	var changed []string
	var err error

	if p.Title, err = optionalString(req, "title"); err != nil {
		return p, nil, err
	}
	if p.Title != nil {
		p.Title = trimmed(*p.Title)
		if *p.Title == "" {
			return p, nil, fmt.Errorf("'title' cannot be empty")
		}
		changed = append(changed, "title")
	}

	if p.Description, err = optionalString(req, "description"); err != nil {
		return p, nil, err
	}
	if p.Description != nil {
		p.Description = trimmed(*p.Description)
		if *p.Description == "" {
			return p, nil, fmt.Errorf("'description' cannot be empty")
		}
		changed = append(changed, "description")
	}

	if p.Status, err = statusArg(req); err != nil {
		return p, nil, err
	}
	if p.Status != nil {
		changed = append(changed, "status")
	}

	if p.Priority, err = priorityArg(req); err != nil {
		return p, nil, err
	}
	if p.Priority != nil {
		changed = append(changed, "priority")
	}

	if p.Assignee, err = optionalString(req, "assignee"); err != nil {
		return p, nil, err
	}
	if p.Assignee != nil {
		p.Assignee = trimmed(*p.Assignee)
		changed = append(changed, "assignee")
	}

	if p.Points, err = pointsArg(req); err != nil {
		return p, nil, err
	}
	if p.Points != nil {
		changed = append(changed, "points")
	}

	return p, changed, nil
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}
