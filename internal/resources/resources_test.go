package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/storytrack/storytrack/internal/logging"
	"github.com/storytrack/storytrack/internal/stories"
)

func TestHandleBoard(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	store := stories.NewFileStore(t.TempDir(), logger)

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		s, err := store.Create(stories.NewStory{Title: title, Description: "d"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, s.ID)
	}
	if _, err := store.SetProgressState(ids[1], stories.ProgressPlayed); err != nil {
		t.Fatal(err)
	}

	h := NewHandler(store)
	if got := h.BoardResource().URI; got != BoardURI {
		t.Errorf("URI = %q, want %q", got, BoardURI)
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = BoardURI
	contents, err := h.HandleBoard(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleBoard: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if text.MIMEType != "application/json" {
		t.Errorf("MIME type = %q", text.MIMEType)
	}

	var board struct {
		Total   int            `json:"total"`
		Counts  map[string]int `json:"counts"`
		Backlog []string       `json:"backlog"`
		Stories []struct {
			ID     string `json:"id"`
			Played bool   `json:"played"`
		} `json:"stories"`
	}
	if err := json.Unmarshal([]byte(text.Text), &board); err != nil {
		t.Fatalf("board is not valid JSON: %v", err)
	}

	if board.Total != 3 {
		t.Errorf("total = %d, want 3", board.Total)
	}
	if board.Counts["Unstarted"] != 2 || board.Counts["Played"] != 1 || board.Counts["Started"] != 0 {
		t.Errorf("counts = %v", board.Counts)
	}
	if len(board.Backlog) != 2 || board.Backlog[0] != ids[0] || board.Backlog[1] != ids[2] {
		t.Errorf("backlog = %v", board.Backlog)
	}
	if !board.Stories[1].Played {
		t.Error("played flag should be derived from progress state")
	}
}

func TestNewBoard_Empty(t *testing.T) {
	b := NewBoard(nil)
	if b.Total != 0 || len(b.Backlog) != 0 {
		t.Errorf("unexpected board: %+v", b)
	}
	if b.Backlog == nil {
		t.Error("backlog should encode as [] not null")
	}
}
