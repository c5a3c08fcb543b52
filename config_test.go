package memmgr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memmgr.toml")
	const body = `
threshold = 128
big_total = 1048576
small_page_size = 4096
small_max = 256
small_align = 8
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.Threshold)
	require.Equal(t, 1048576, cfg.BigTotal)
	require.Equal(t, defaultMinPerChunk, cfg.MinPerChunk)
	require.Equal(t, defaultMaxPerChunk, cfg.MaxPerChunk)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
