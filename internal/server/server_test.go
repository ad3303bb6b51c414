package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/config"
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storyTools = []string{
	"story_create",
	"story_list",
	"story_edit",
	"story_set_progress",
	"story_mark_played",
	"story_reorder",
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestNew_RegistersStoryTools(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	s, cleanup, err := New(testConfig(t), logger)
	require.NoError(t, err)
	defer cleanup()

	for _, name := range storyTools {
		assert.NotNil(t, s.GetTool(name), "tool %s should be registered", name)
	}
	assert.NotNil(t, s.GetTool("story_history"), "journal is on by default")
}

func TestNew_JournalDisabled(t *testing.T) {
	logger, buf := logging.NewTestLogger()
	cfg := testConfig(t)
	cfg.Journal = false

	s, cleanup, err := New(cfg, logger)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, s.GetTool("story_history"))
	assert.NotNil(t, s.GetTool("story_reorder"))
	assert.Contains(t, buf.String(), "disabled by configuration")
	_, statErr := os.Stat(filepath.Join(cfg.DataDir, journal.DBFile))
	assert.True(t, os.IsNotExist(statErr), "journal database should not be created")
}

func TestNew_JournalFailureIsNotFatal(t *testing.T) {
	logger, buf := logging.NewTestLogger()

	// A regular file where the data directory should be makes the journal
	// unable to create its database.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := config.Default()
	cfg.DataDir = blocker

	s, cleanup, err := New(cfg, logger)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, s.GetTool("story_history"))
	assert.NotNil(t, s.GetTool("story_create"))
	assert.Contains(t, buf.String(), "Activity journal disabled")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "loud"

	_, cleanup, err := New(cfg, nil)
	require.Error(t, err)
	require.NotNil(t, cleanup, "cleanup must always be non-nil")
	cleanup()
}

func TestLoggingMiddleware(t *testing.T) {
	logger, buf := logging.NewTestLogger()
	mw := loggingMiddleware(logger)

	req := mcp.CallToolRequest{}
	req.Params.Name = "story_list"

	ok := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("fine"), nil
	})
	result, err := ok(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, buf.String(), "story_list")

	buf.Reset()
	boom := errors.New("boom")
	failing := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, boom
	})
	_, err = failing(context.Background(), req)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "Tool call failed")

	buf.Reset()
	rejected := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("nope"), nil
	})
	_, err = rejected(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Tool call rejected")
}
