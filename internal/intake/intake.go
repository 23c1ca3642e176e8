// Package intake collects the files a user picks for a batch.
package intake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/local/batchprint/internal/filetype"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrDuplicate   = errors.New("file already added")
)

// List keeps selected files in the order they were added, without duplicates
type List struct {
	paths []string
	seen  map[string]struct{}
}

func New() *List {
	return &List{seen: make(map[string]struct{})}
}

// Add appends path if it has a supported extension and is not already listed.
// Paths are compared after making them absolute.
func (l *List) Add(path string) error {
	if !filetype.IsSupported(path) {
		return fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, ok := l.seen[abs]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, path)
	}
	l.seen[abs] = struct{}{}
	l.paths = append(l.paths, abs)
	return nil
}

// AddDir adds the supported files directly inside dir in name order.
// Unsupported files and subdirectories are passed over silently.
func (l *List) AddDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !filetype.IsSupported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	added := 0
	for _, name := range names {
		if err := l.Add(filepath.Join(dir, name)); err == nil {
			added++
		}
	}
	return added, nil
}

// Paths returns a copy of the list
func (l *List) Paths() []string {
	return append([]string(nil), l.paths...)
}

func (l *List) Len() int { return len(l.paths) }

// Clear empties the list, as after a finished batch
func (l *List) Clear() {
	l.paths = nil
	l.seen = make(map[string]struct{})
}
