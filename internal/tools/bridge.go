package tools

import (
	"github.com/storytrack/storytrack/internal/journal"
	"github.com/storytrack/storytrack/internal/logging"
	"github.com/storytrack/storytrack/internal/stories"
)

// StoryObserver is notified after a story mutation has been persisted.
// A nil observer is allowed.
type StoryObserver interface {
	OnStoryChanged(story *stories.Story, kind journal.Kind, summary string)
}

// JournalBridge records story mutations in the activity journal.
type JournalBridge struct {
	store  *journal.Store
	logger *logging.AppLogger
}

// NewJournalBridge creates a bridge onto the journal. Returns nil if store
// is nil, so callers should only install it when the journal is available.
func NewJournalBridge(store *journal.Store, logger *logging.AppLogger) *JournalBridge {
	if store == nil {
		return nil
	}
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &JournalBridge{store: store, logger: logger}
}

// OnStoryChanged appends an event for the story. Best-effort: the story file
// is the source of truth, so journal failures are logged and swallowed.
func (b *JournalBridge) OnStoryChanged(story *stories.Story, kind journal.Kind, summary string) {
	_, err := b.store.Record(journal.Event{
		StoryID: story.ID,
		Kind:    kind,
		Summary: summary,
	})
	if err != nil {
		b.logger.Warn("Journal bridge: record event failed",
			"story", story.ID,
			"kind", kind,
			"error", err,
		)
	}
}

// notifyObserver is a nil-safe helper called from tool Handle methods.
func notifyObserver(obs StoryObserver, story *stories.Story, kind journal.Kind, summary string) {
	if obs == nil || story == nil {
		return
	}
	obs.OnStoryChanged(story, kind, summary)
}
