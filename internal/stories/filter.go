package stories

// Filter narrows a loaded collection. Zero-value fields do not filter.
//
// ProgressState takes precedence over the legacy Played flag: Played is only
// consulted when ProgressState is empty.
type Filter struct {
	Status        Status
	Priority      Priority
	Assignee      string
	ProgressState ProgressState
	Played        *bool
}

// Matches reports whether the story passes every set criterion.
func (f Filter) Matches(s Story) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.Priority != "" && s.Priority != f.Priority {
		return false
	}
	if f.Assignee != "" && s.Assignee != f.Assignee {
		return false
	}
	switch {
	case f.ProgressState != "":
		if s.ProgressState != f.ProgressState {
			return false
		}
	case f.Played != nil:
		if s.Played() != *f.Played {
			return false
		}
	}
	return true
}

// Apply returns the matching stories in their original order.
func (f Filter) Apply(all []Story) []Story {
	out := make([]Story, 0, len(all))
	for _, s := range all {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// IsEmpty reports whether the filter sets no criteria.
func (f Filter) IsEmpty() bool {
	return f.Status == "" && f.Priority == "" && f.Assignee == "" &&
		f.ProgressState == "" && f.Played == nil
}
