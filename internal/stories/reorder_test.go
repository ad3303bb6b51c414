package stories

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unstartedTitles(t *testing.T, s *FileStore) []string {
	t.Helper()
	all, err := s.List()
	require.NoError(t, err)
	return titles(Filter{ProgressState: ProgressUnstarted}.Apply(all))
}

// Scenario B.
func TestReorder_MoveToFront(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")

	moved, err := s.Reorder(c.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Equal(t, c.ID, moved.ID)
	assert.True(t, moved.UpdatedAt.After(c.UpdatedAt))

	assert.Equal(t, []string{"C", "A", "B"}, unstartedTitles(t, s))
}

func TestReorder_MoveDown(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	mustCreate(t, s, "C")
	mustCreate(t, s, "D")

	_, err := s.Reorder(a.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A", "D"}, unstartedTitles(t, s))
}

func TestReorder_MoveToEnd(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	mustCreate(t, s, "C")

	_, err := s.Reorder(a.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, unstartedTitles(t, s))
}

func TestReorder_OnlyMovedStoryTimestampChanges(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")

	_, err := s.Reorder(c.ID, 0)
	require.NoError(t, err)

	all, err := s.List()
	require.NoError(t, err)
	byID := map[string]Story{}
	for _, story := range all {
		byID[story.ID] = story
	}
	assert.True(t, byID[a.ID].UpdatedAt.Equal(a.UpdatedAt))
	assert.True(t, byID[b.ID].UpdatedAt.Equal(b.UpdatedAt))
	assert.True(t, byID[c.ID].UpdatedAt.After(c.UpdatedAt))
}

func TestReorder_SamePositionIsNoop(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	mustCreate(t, s, "C")

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	got, err := s.Reorder(b.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(*b, *got); diff != "" {
		t.Errorf("no-op reorder changed the story (-want +got):\n%s", diff)
	}

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "no-op reorder must not write")
}

// Scenario C.
func TestReorder_RejectsPlayedStory(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	_, err := s.MarkPlayed(b.ID, true)
	require.NoError(t, err)

	_, err = s.Reorder(b.ID, 0)
	require.ErrorIs(t, err, ErrNotReorderable)
	assert.Contains(t, err.Error(), "can only reorder Unstarted stories")
}

func TestReorder_RejectsStartedStory(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	_, err := s.SetProgressState(a.ID, ProgressStarted)
	require.NoError(t, err)

	_, err = s.Reorder(a.ID, 0)
	require.ErrorIs(t, err, ErrNotReorderable)
}

func TestReorder_PositionBounds(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")
	// C is not part of the Unstarted subsequence, which now has length 2.
	_, err := s.SetProgressState(c.ID, ProgressStarted)
	require.NoError(t, err)

	for _, pos := range []int{-1, 2, 10} {
		_, err := s.Reorder(a.ID, pos)
		require.ErrorIs(t, err, ErrPositionOutOfRange, "position %d", pos)
		assert.Contains(t, err.Error(), "between 0 and 1")
	}

	_, err = s.Reorder(a.ID, 1)
	require.NoError(t, err)
}

func TestReorder_NotFound(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A")

	got, err := s.Reorder("missing", 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReorder_GroupsFixedStoriesFirst(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	mustCreate(t, s, "C")
	d := mustCreate(t, s, "D")
	e := mustCreate(t, s, "E")

	_, err := s.SetProgressState(b.ID, ProgressStarted)
	require.NoError(t, err)
	_, err = s.MarkPlayed(d.ID, true)
	require.NoError(t, err)

	// Unstarted: A, C, E. Move E to the front.
	_, err = s.Reorder(e.ID, 0)
	require.NoError(t, err)

	all, err := s.List()
	require.NoError(t, err)
	// Fixed stories keep their relative order and precede every Unstarted one.
	assert.Equal(t, []string{"B", "D", "E", "A", "C"}, titles(all))
}

func TestReorder_SamePositionKeepsInterleaving(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	mustCreate(t, s, "C")
	_, err := s.SetProgressState(b.ID, ProgressStarted)
	require.NoError(t, err)

	_, err = s.Reorder(a.ID, 0)
	require.NoError(t, err)

	all, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(all))
}

func TestReorder_LegacyRecordsUsePlayedFlag(t *testing.T) {
	s := newTestStore(t)
	writeRaw(t, s, `[
  {"id": "p", "title": "P", "description": "p", "status": "Done", "priority": "Low", "played": true,
   "createdAt": "2025-01-01T00:00:00Z", "updatedAt": "2025-01-01T00:00:00Z"},
  {"id": "u1", "title": "U1", "description": "u", "status": "New", "priority": "Low", "played": false,
   "createdAt": "2025-01-01T00:00:00Z", "updatedAt": "2025-01-01T00:00:00Z"},
  {"id": "u2", "title": "U2", "description": "u", "status": "New", "priority": "Low",
   "createdAt": "2025-01-01T00:00:00Z", "updatedAt": "2025-01-01T00:00:00Z"}
]`)

	_, err := s.Reorder("p", 0)
	require.ErrorIs(t, err, ErrNotReorderable)

	_, err = s.Reorder("u2", 0)
	require.NoError(t, err)

	all, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "u2", "u1"}, ids(all))
}

func TestMove(t *testing.T) {
	list := []Story{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 3, []string{"b", "c", "d", "a"}},
		{3, 0, []string{"d", "a", "b", "c"}},
		{1, 2, []string{"a", "c", "b", "d"}},
		{2, 1, []string{"a", "c", "b", "d"}},
	}
	for _, tt := range tests {
		got := ids(move(list, tt.from, tt.to))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("move(%d, %d) mismatch (-want +got):\n%s", tt.from, tt.to, diff)
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(list), "move must not modify its input")
}
