// Package tools implements the MCP tool handlers for the story tracker.
//
// Each tool is a struct holding its dependencies, with Definition() returning
// the mcp.Tool schema and Handle() serving the call. Handlers validate
// arguments before touching the store, turn not-found results and domain
// errors into tool errors the assistant can read, and reserve Go errors for
// storage faults.
package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/stories"
)

// --- Argument helpers ---

// optionalString returns the string argument if the caller supplied it.
func optionalString(req mcp.CallToolRequest, key string) (*string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a string", key)
	}
	return &s, nil
}

// optionalNumber returns the numeric argument if supplied. JSON numbers
// arrive as float64.
func optionalNumber(req mcp.CallToolRequest, key string) (*float64, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a number", key)
	}
	return &v, nil
}

// optionalBool returns the boolean argument if supplied.
func optionalBool(req mcp.CallToolRequest, key string) (*bool, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a boolean", key)
	}
	return &v, nil
}

// pointsArg reads the optional story points estimate.
func pointsArg(req mcp.CallToolRequest) (*float64, error) {
	points, err := optionalNumber(req, "points")
	if err != nil || points == nil {
		return nil, err
	}
	if *points < 0 || math.IsNaN(*points) || math.IsInf(*points, 0) {
		return nil, fmt.Errorf("'points' must be a non-negative number")
	}
	return points, nil
}

// maxIntArg bounds whole-number arguments so the int conversion is exact on
// every platform.
const maxIntArg = math.MaxInt32

// optionalInt returns the whole-number argument if supplied.
func optionalInt(req mcp.CallToolRequest, key string) (*int, error) {
	v, err := optionalNumber(req, key)
	if err != nil || v == nil {
		return nil, err
	}
	if *v != math.Trunc(*v) {
		return nil, fmt.Errorf("'%s' must be a whole number, got %v", key, *v)
	}
	if *v > maxIntArg || *v < -maxIntArg {
		return nil, fmt.Errorf("'%s' is out of range: %v", key, *v)
	}
	n := int(*v)
	return &n, nil
}

// positionArg reads the required 0-based reorder position.
func positionArg(req mcp.CallToolRequest) (int, error) {
	pos, err := optionalInt(req, "position")
	if err != nil {
		return 0, err
	}
	if pos == nil {
		return 0, fmt.Errorf("'position' is required")
	}
	return *pos, nil
}

// statusArg reads an optional status and checks it against the enum.
func statusArg(req mcp.CallToolRequest) (*stories.Status, error) {
	raw, err := optionalString(req, "status")
	if err != nil || raw == nil {
		return nil, err
	}
	status := stories.Status(*raw)
	if err := stories.ValidateStatus(status); err != nil {
		return nil, err
	}
	return &status, nil
}

// priorityArg reads an optional priority and checks it against the enum.
func priorityArg(req mcp.CallToolRequest) (*stories.Priority, error) {
	raw, err := optionalString(req, "priority")
	if err != nil || raw == nil {
		return nil, err
	}
	priority := stories.Priority(*raw)
	if err := stories.ValidatePriority(priority); err != nil {
		return nil, err
	}
	return &priority, nil
}

// progressArg reads an optional progress state and checks it against the enum.
func progressArg(req mcp.CallToolRequest) (*stories.ProgressState, error) {
	raw, err := optionalString(req, "progress_state")
	if err != nil || raw == nil {
		return nil, err
	}
	state := stories.ProgressState(*raw)
	if err := stories.ValidateProgressState(state); err != nil {
		return nil, err
	}
	return &state, nil
}

// requiredID reads the story id every mutating tool needs.
func requiredID(req mcp.CallToolRequest) (string, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return "", fmt.Errorf("'id' is required: pass the story id returned by story_create or story_list")
	}
	return id, nil
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// --- Result helpers ---

func notFoundResult(id string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Story %q not found. Use story_list to see existing ids.", id))
}

func operationFailedResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("operation failed: %v", err))
}

// --- Formatting ---

// formatStory renders one story as a markdown detail block.
func formatStory(s *stories.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**ID:** `%s`\n", s.ID)
	fmt.Fprintf(&b, "**Title:** %s\n", s.Title)
	fmt.Fprintf(&b, "**Status:** %s\n", s.Status)
	fmt.Fprintf(&b, "**Priority:** %s\n", s.Priority)
	fmt.Fprintf(&b, "**Progress:** %s (played: %t)\n", s.ProgressState, s.Played())
	fmt.Fprintf(&b, "**Assignee:** %s\n", orDash(s.Assignee))
	fmt.Fprintf(&b, "**Points:** %s\n", formatPoints(s.Points))
	fmt.Fprintf(&b, "**Created:** %s\n", s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "**Updated:** %s\n\n", s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
	b.WriteString("## Description\n\n")
	b.WriteString(s.Description)
	b.WriteString("\n")
	return b.String()
}

func formatPoints(p *float64) string {
	if p == nil {
		return "—"
	}
	return fmt.Sprintf("%g", *p)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// escapeCell keeps user text from breaking a markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
