// Package settings persists the few user choices that survive between runs.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// FileName is the settings file kept beside the executable
const FileName = "batch_print_config.json"

const keyLastPrinter = "last_printer"

// Settings is the persisted state
type Settings struct {
	LastPrinter string
}

// DefaultPath returns FileName in the executable's directory, falling back
// to the working directory when the executable cannot be located.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads path. A missing or unreadable file yields zero Settings; the
// problem is logged and never returned.
func Load(path string) Settings {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", path).Msg("cannot stat settings file")
		}
		return Settings{}
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("ignoring unreadable settings file")
		return Settings{}
	}
	return Settings{LastPrinter: v.GetString(keyLastPrinter)}
}

// Save writes s to path, replacing the file
func Save(path string, s Settings) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	v := newViper(path)
	v.Set(keyLastPrinter, s.LastPrinter)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}
