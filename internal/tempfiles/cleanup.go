package tempfiles

import (
    "os"
    "path/filepath"
    "strings"
    "time"
)

// DirPrefix names every per-job scratch directory we create.
const DirPrefix = "batchprint-"

// SweepStale removes job directories under root left behind by runs that
// did not finish (crash, kill -9) and that are older than maxAge.
// It returns how many directories were removed.
func SweepStale(root string, maxAge time.Duration) int {
    if root == "" { root = os.TempDir() }
    entries, err := os.ReadDir(root)
    if err != nil { return 0 }
    now := time.Now()
    removed := 0
    for _, e := range entries {
        if !e.IsDir() || !strings.HasPrefix(e.Name(), DirPrefix) {
            continue
        }
        info, err := e.Info()
        if err != nil { continue }
        if now.Sub(info.ModTime()) < maxAge { continue }
        if err := os.RemoveAll(filepath.Join(root, e.Name())); err == nil {
            removed++
        }
    }
    return removed
}
