package stories

import (
	"fmt"
	"slices"
)

// Reorder moves an Unstarted story to position within the Unstarted
// subsequence (0-based).
//
// The collection is rebuilt as every non-Unstarted story, in its original
// relative order, followed by the reordered Unstarted stories. Started and
// Played stories therefore end up grouped ahead of all Unstarted ones after
// any effective reorder, whatever their previous interleaving was.
//
// Reordering to the current position returns the story unchanged and does
// not write the file.
func (s *FileStore) Reorder(id string, position int) (*Story, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}

	idx := indexOf(all, id)
	if idx < 0 {
		return nil, nil
	}
	if target := all[idx]; !target.Reorderable() {
		return nil, fmt.Errorf("%w: story %q is %s", ErrNotReorderable, id, target.ProgressState)
	}

	fixed, unstarted := partition(all)
	current := indexOf(unstarted, id)

	if position < 0 || position >= len(unstarted) {
		return nil, fmt.Errorf("%w: position %d must be between 0 and %d",
			ErrPositionOutOfRange, position, len(unstarted)-1)
	}

	if position == current {
		story := unstarted[current]
		return &story, nil
	}

	unstarted[current].UpdatedAt = now()
	reordered := move(unstarted, current, position)

	result := make([]Story, 0, len(all))
	result = append(result, fixed...)
	result = append(result, reordered...)

	if err := s.save(result); err != nil {
		return nil, err
	}

	s.logger.Debug("Story reordered", "id", id, "from", current, "to", position)
	moved := reordered[position]
	return &moved, nil
}

// partition splits stories into the non-reorderable and reorderable
// subsequences, each keeping its original relative order.
func partition(all []Story) (fixed, unstarted []Story) {
	for _, story := range all {
		if story.Reorderable() {
			unstarted = append(unstarted, story)
		} else {
			fixed = append(fixed, story)
		}
	}
	return fixed, unstarted
}

// move returns a copy of list with the element at from relocated to to.
// Elements in between shift by one slot.
func move(list []Story, from, to int) []Story {
	out := slices.Clone(list)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}
