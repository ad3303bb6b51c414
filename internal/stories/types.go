// Package stories implements the story store: an ordered collection of user
// stories persisted as a single JSON array.
//
// Every operation reads the whole file, mutates an in-memory copy and writes
// the whole collection back. There is no cache and no locking; the store is
// meant for one process serving one tool call at a time.
//
// Layout:
//   - types.go: record model, enums and their wire form
//   - store.go: load/save and the field-level operations
//   - reorder.go: position-based reorder within the Unstarted subsequence
//   - filter.go: caller-side filtering over a loaded collection
package stories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// --- Status enum ---

// Status is the workflow status of a story.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusDone       Status = "Done"
	StatusBlocked    Status = "Blocked"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusInReview, StatusDone, StatusBlocked}

// ValidateStatus returns an ErrInvalidArgument error if s is not a known status.
func ValidateStatus(s Status) error {
	for _, v := range Statuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid status %q: must be one of: %s", ErrInvalidArgument, s, joinValues(Statuses))
}

// --- Priority enum ---

// Priority ranks stories against each other.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// ValidatePriority returns an ErrInvalidArgument error if p is not a known priority.
func ValidatePriority(p Priority) error {
	for _, v := range Priorities {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid priority %q: must be one of: %s", ErrInvalidArgument, p, joinValues(Priorities))
}

// --- Progress state enum ---

// ProgressState is the lifecycle of a story. Only Unstarted stories can be
// reordered; any state may move to any other.
type ProgressState string

const (
	ProgressUnstarted ProgressState = "Unstarted"
	ProgressStarted   ProgressState = "Started"
	ProgressPlayed    ProgressState = "Played"
)

// ProgressStates lists every progress state in lifecycle order.
var ProgressStates = []ProgressState{ProgressUnstarted, ProgressStarted, ProgressPlayed}

// ValidateProgressState returns an ErrInvalidArgument error if p is not a known state.
func ValidateProgressState(p ProgressState) error {
	for _, v := range ProgressStates {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid progress state %q: must be one of: %s", ErrInvalidArgument, p, joinValues(ProgressStates))
}

// progressFromPlayed maps the legacy played flag onto a progress state.
// Unplayed always means Unstarted, never Started.
func progressFromPlayed(played bool) ProgressState {
	if played {
		return ProgressPlayed
	}
	return ProgressUnstarted
}

// --- Records ---

// Story is one unit of user-facing work.
//
// ProgressState is the only lifecycle field held in memory. The legacy
// "played" flag exists on the wire only and is derived from it.
type Story struct {
	ID            string
	Title         string
	Description   string
	Status        Status
	Priority      Priority
	Assignee      string
	Points        *float64
	ProgressState ProgressState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Played reports whether the story has been played.
func (s Story) Played() bool {
	return s.ProgressState == ProgressPlayed
}

// Reorderable reports whether the story belongs to the reorderable subsequence.
func (s Story) Reorderable() bool {
	return s.ProgressState == ProgressUnstarted
}

// storyJSON is the persisted form of a Story.
type storyJSON struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	Assignee      string        `json:"assignee,omitempty"`
	Points        *float64      `json:"points,omitempty"`
	Played        bool          `json:"played"`
	ProgressState ProgressState `json:"progressState,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MarshalJSON writes the story with the legacy played flag derived from
// its progress state.
func (s Story) MarshalJSON() ([]byte, error) {
	return json.Marshal(storyJSON{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		Status:        s.Status,
		Priority:      s.Priority,
		Assignee:      s.Assignee,
		Points:        s.Points,
		Played:        s.Played(),
		ProgressState: s.ProgressState,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	})
}

// UnmarshalJSON reads a story and normalizes its lifecycle fields. A stored
// progressState is authoritative; records written before it existed get one
// inferred from played.
func (s *Story) UnmarshalJSON(data []byte) error {
	var raw storyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	state := raw.ProgressState
	if state == "" {
		state = progressFromPlayed(raw.Played)
	}

	*s = Story{
		ID:            raw.ID,
		Title:         raw.Title,
		Description:   raw.Description,
		Status:        raw.Status,
		Priority:      raw.Priority,
		Assignee:      raw.Assignee,
		Points:        raw.Points,
		ProgressState: state,
		CreatedAt:     raw.CreatedAt,
		UpdatedAt:     raw.UpdatedAt,
	}
	return nil
}

// --- Inputs ---

// NewStory holds the caller-supplied fields for Create. Identity,
// timestamps and lifecycle are always assigned by the store.
type NewStory struct {
	Title       string
	Description string
	Status      Status   // default New
	Priority    Priority // default Medium
	Assignee    string
	Points      *float64
}

// validate applies defaults and checks required fields.
func (n *NewStory) validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(n.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidArgument)
	}
	if n.Status == "" {
		n.Status = StatusNew
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if err := ValidateStatus(n.Status); err != nil {
		return err
	}
	return ValidatePriority(n.Priority)
}

// Patch is a partial edit. Nil fields are left untouched; non-nil fields
// replace the stored value, including empty strings.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Assignee    *string
	Points      *float64
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Assignee == nil && p.Points == nil
}

func (p Patch) validate() error {
	if p.Status != nil {
		if err := ValidateStatus(*p.Status); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := ValidatePriority(*p.Priority); err != nil {
			return err
		}
	}
	return nil
}

// apply merges the patch into s.
func (p Patch) apply(s *Story) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Priority != nil {
		s.Priority = *p.Priority
	}
	if p.Assignee != nil {
		s.Assignee = *p.Assignee
	}
	if p.Points != nil {
		v := *p.Points
		s.Points = &v
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
