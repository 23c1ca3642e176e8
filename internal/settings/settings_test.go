package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	require.NoError(t, Save(path, Settings{LastPrinter: "Office_Laser"}))
	assert.Equal(t, Settings{LastPrinter: "Office_Laser"}, Load(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Office_Laser", doc["last_printer"])

	require.NoError(t, Save(path, Settings{LastPrinter: "PDF"}))
	assert.Equal(t, "PDF", Load(path).LastPrinter)
}

func TestLoadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, Settings{}, Load(filepath.Join(dir, "absent.json")))

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))
	assert.Equal(t, Settings{}, Load(corrupt))
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"last_printer":"HP","window":{"w":800}}`), 0o644))
	assert.Equal(t, "HP", Load(path).LastPrinter)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, FileName, filepath.Base(DefaultPath()))
}
