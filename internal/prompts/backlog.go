package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// BacklogPrompt handles the story-backlog MCP prompt.
// It instructs the AI to read the board and walk the user through it.
type BacklogPrompt struct{}

// NewBacklogPrompt creates a BacklogPrompt.
func NewBacklogPrompt() *BacklogPrompt {
	return &BacklogPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *BacklogPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("story-backlog",
		mcp.WithPromptDescription(
			"Review the story backlog. Shows what is in progress, what has been played, "+
				"and the Unstarted stories in priority order.",
		),
		mcp.WithArgument("assignee",
			mcp.ArgumentDescription("Only review stories assigned to this person"),
		),
	)
}

// Handle processes the story-backlog prompt request.
func (p *BacklogPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	listCall := "`story_list`"
	if assignee := req.Params.Arguments["assignee"]; assignee != "" {
		listCall = "`story_list` with assignee \"" + assignee + "\""
	}

	return &mcp.GetPromptResult{
		Description: "Story Backlog Review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run " + listCall + " to load my user stories.\n\n" +
						"Then:\n" +
						"1. Summarize what is Started and what has been Played\n" +
						"2. Show the Unstarted backlog in its current order with positions\n" +
						"3. Point out High or Critical stories that sit low in the backlog\n" +
						"4. Suggest moves I could make with `story_reorder`, but do not make them until I confirm",
				),
			},
		},
	}, nil
}
