package stories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"github.com/storytrack/storytrack/internal/logging"
	"github.com/tailscale/hujson"
)

// StoriesFile is the name of the JSON file inside the data directory.
const StoriesFile = "stories.json"

// Store is the boundary the dispatch layer talks to. Lookups by id return a
// nil story and a nil error when the id is unknown.
type Store interface {
	Create(in NewStory) (*Story, error)
	List() ([]Story, error)
	Get(id string) (*Story, error)
	Edit(id string, patch Patch) (*Story, error)
	SetProgressState(id string, state ProgressState) (*Story, error)
	MarkPlayed(id string, played bool) (*Story, error)
	Reorder(id string, position int) (*Story, error)
}

// FileStore implements Store on a single JSON file.
type FileStore struct {
	dir    string
	logger *logging.AppLogger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dataDir. The directory is created
// on the first write. A nil logger falls back to the default logger.
func NewFileStore(dataDir string, logger *logging.AppLogger) *FileStore {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &FileStore{dir: dataDir, logger: logger}
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the path of the backing file.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, StoriesFile)
}

// Load reads and normalizes the whole collection.
//
// A missing file is an empty store. So is a file that does not parse, after
// a warning is logged. Any other read failure is returned.
func (s *FileStore) Load() ([]Story, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Story{}, nil
		}
		return nil, fmt.Errorf("reading stories file: %w", err)
	}

	stories, err := decodeStories(data)
	if err != nil {
		s.logger.Warn("Stories file is malformed, treating store as empty",
			"path", s.Path(),
			"error", err,
		)
		return []Story{}, nil
	}
	return stories, nil
}

// decodeStories parses the file content. Comments and trailing commas left
// by hand edits are accepted.
func decodeStories(data []byte) ([]Story, error) {
	standard, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, fmt.Errorf("parsing stories file: %w", err)
	}

	var stories []Story
	if err := json.Unmarshal(standard, &stories); err != nil {
		return nil, fmt.Errorf("decoding stories: %w", err)
	}
	if stories == nil {
		stories = []Story{}
	}
	return stories, nil
}

// save replaces the backing file with the given collection.
func (s *FileStore) save(stories []Story) error {
	defer s.logger.LogPerformance("save stories", time.Now())

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(stories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling stories: %w", err)
	}

	if err := atomic.WriteFile(s.Path(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing stories file: %w", err)
	}
	return nil
}

// Create appends a new Unstarted story and persists it.
func (s *FileStore) Create(in NewStory) (*Story, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	stories, err := s.Load()
	if err != nil {
		return nil, err
	}

	ts := now()
	story := Story{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		Assignee:      in.Assignee,
		ProgressState: ProgressUnstarted,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if in.Points != nil {
		p := *in.Points
		story.Points = &p
	}

	if err := s.save(append(stories, story)); err != nil {
		return nil, err
	}

	s.logger.Debug("Story created", "id", story.ID, "title", story.Title)
	return &story, nil
}

// List returns the full collection in stored order. Filtering is up to the
// caller; see Filter.
func (s *FileStore) List() ([]Story, error) {
	return s.Load()
}

// Get returns the story with the given id, or nil.
func (s *FileStore) Get(id string) (*Story, error) {
	stories, err := s.Load()
	if err != nil {
		return nil, err
	}
	idx := indexOf(stories, id)
	if idx < 0 {
		return nil, nil
	}
	story := stories[idx]
	return &story, nil
}

// Edit merges the supplied patch fields into the story. The progress state
// is never touched. UpdatedAt is refreshed even when the patch is empty.
func (s *FileStore) Edit(id string, patch Patch) (*Story, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	return s.mutate(id, func(story *Story) {
		patch.apply(story)
	})
}

// SetProgressState moves the story to the given lifecycle state.
func (s *FileStore) SetProgressState(id string, state ProgressState) (*Story, error) {
	if err := ValidateProgressState(state); err != nil {
		return nil, err
	}

	return s.mutate(id, func(story *Story) {
		story.ProgressState = state
	})
}

// MarkPlayed is the legacy lifecycle entry point: true means Played, false
// means Unstarted.
func (s *FileStore) MarkPlayed(id string, played bool) (*Story, error) {
	return s.SetProgressState(id, progressFromPlayed(played))
}

// mutate loads the collection, applies fn to the story with the given id,
// refreshes its UpdatedAt and persists. The file is written only after the
// change is fully computed.
func (s *FileStore) mutate(id string, fn func(*Story)) (*Story, error) {
	stories, err := s.Load()
	if err != nil {
		return nil, err
	}

	idx := indexOf(stories, id)
	if idx < 0 {
		return nil, nil
	}

	updated := stories[idx]
	fn(&updated)
	updated.UpdatedAt = now()
	stories[idx] = updated

	if err := s.save(stories); err != nil {
		return nil, err
	}
	return &updated, nil
}

// indexOf returns the position of the story with the given id, or -1.
func indexOf(stories []Story, id string) int {
	for i := range stories {
		if stories[i].ID == id {
			return i
		}
	}
	return -1
}
