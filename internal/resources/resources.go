// Package resources implements MCP resource handlers for the story tracker.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (stories://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/stories"
)

// BoardURI is the address of the board snapshot resource.
const BoardURI = "stories://board"

// Handler manages story resource endpoints.
type Handler struct {
	store stories.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store stories.Store) *Handler {
	return &Handler{store: store}
}

// Board is the JSON document served at BoardURI.
type Board struct {
	Total   int                           `json:"total"`
	Counts  map[stories.ProgressState]int `json:"counts"`
	Backlog []string                      `json:"backlog"`
	Stories []stories.Story               `json:"stories"`
}

// BoardResource returns the MCP resource definition for the story board.
func (h *Handler) BoardResource() mcp.Resource {
	return mcp.NewResource(
		BoardURI,
		"Story Board",
		mcp.WithResourceDescription("All stories in list order, with per-state counts and the ids of the Unstarted backlog in reorder order"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleBoard returns the current board as JSON.
func (h *Handler) HandleBoard(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	all, err := h.store.List()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(NewBoard(all), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling board: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// NewBoard summarizes a story collection.
func NewBoard(all []stories.Story) Board {
	b := Board{
		Total:   len(all),
		Counts:  make(map[stories.ProgressState]int, len(stories.ProgressStates)),
		Backlog: []string{},
		Stories: all,
	}
	for _, state := range stories.ProgressStates {
		b.Counts[state] = 0
	}
	for _, s := range all {
		b.Counts[s.ProgressState]++
		if s.Reorderable() {
			b.Backlog = append(b.Backlog, s.ID)
		}
	}
	return b
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
