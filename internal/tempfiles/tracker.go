// Package tempfiles owns the scratch files a batch run creates, so every one
// of them can be accounted for and removed.
package tempfiles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Tracker hands out paths inside a per-job directory and records which of
// them were created and which were removed. Paths it did not hand out are
// never removed, which keeps user input files safe.
type Tracker struct {
	dir     string
	created map[string]struct{}
	removed map[string]struct{}
}

// NewTracker creates root/batchprint-<jobID> and returns a tracker for it.
// An empty root means os.TempDir().
func NewTracker(root, jobID string) (*Tracker, error) {
	if root == "" {
		root = os.TempDir()
	}
	if jobID == "" {
		jobID = uuid.NewString()
	}
	dir := filepath.Join(root, DirPrefix+jobID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create job temp dir: %w", err)
	}
	return &Tracker{
		dir:     dir,
		created: make(map[string]struct{}),
		removed: make(map[string]struct{}),
	}, nil
}

// Dir returns the job's scratch directory.
func (t *Tracker) Dir() string { return t.dir }

// NewPath reserves a unique path with the given suffix (e.g. ".pdf").
// The file itself is created by the caller.
func (t *Tracker) NewPath(suffix string) (string, error) {
	if t.dir == "" {
		return "", errors.New("tracker is closed")
	}
	p := filepath.Join(t.dir, uuid.NewString()+suffix)
	t.created[p] = struct{}{}
	return p, nil
}

// Owns reports whether path was handed out by this tracker.
func (t *Tracker) Owns(path string) bool {
	_, ok := t.created[path]
	return ok
}

// Release deletes a tracked path. Untracked paths are ignored and released
// paths are not deleted twice.
func (t *Tracker) Release(path string) {
	if !t.Owns(path) {
		return
	}
	if _, done := t.removed[path]; done {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", path).Msg("failed to remove temp file")
		return
	}
	t.removed[path] = struct{}{}
}

// Created lists every path handed out, sorted.
func (t *Tracker) Created() []string { return sortedKeys(t.created) }

// Removed lists every path released, sorted.
func (t *Tracker) Removed() []string { return sortedKeys(t.removed) }

// Outstanding lists paths handed out but not yet released.
func (t *Tracker) Outstanding() []string {
	var out []string
	for p := range t.created {
		if _, ok := t.removed[p]; !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Close releases everything still outstanding and removes the job directory.
func (t *Tracker) Close() error {
	if t.dir == "" {
		return nil
	}
	for _, p := range t.Outstanding() {
		t.Release(p)
	}
	err := os.RemoveAll(t.dir)
	t.dir = ""
	return err
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
