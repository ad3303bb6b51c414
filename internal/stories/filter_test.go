package stories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() []Story {
	return []Story{
		{ID: "1", Status: StatusNew, Priority: PriorityHigh, Assignee: "ana", ProgressState: ProgressUnstarted},
		{ID: "2", Status: StatusDone, Priority: PriorityLow, Assignee: "ben", ProgressState: ProgressPlayed},
		{ID: "3", Status: StatusNew, Priority: PriorityLow, Assignee: "ana", ProgressState: ProgressStarted},
		{ID: "4", Status: StatusBlocked, Priority: PriorityHigh, ProgressState: ProgressPlayed},
	}
}

func TestFilter_Apply(t *testing.T) {
	played := true
	unplayed := false

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"1", "2", "3", "4"}},
		{"status", Filter{Status: StatusNew}, []string{"1", "3"}},
		{"priority", Filter{Priority: PriorityHigh}, []string{"1", "4"}},
		{"assignee", Filter{Assignee: "ana"}, []string{"1", "3"}},
		{"progress", Filter{ProgressState: ProgressStarted}, []string{"3"}},
		{"played", Filter{Played: &played}, []string{"2", "4"}},
		{"unplayed", Filter{Played: &unplayed}, []string{"1", "3"}},
		{"combined", Filter{Status: StatusNew, Assignee: "ana", Priority: PriorityLow}, []string{"3"}},
		{"progress wins over played", Filter{ProgressState: ProgressUnstarted, Played: &played}, []string{"1"}},
		{"no match", Filter{Assignee: "zoe"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(filterFixture())))
		})
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	played := false
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{Played: &played}.IsEmpty())
	assert.False(t, Filter{Assignee: "x"}.IsEmpty())
}
