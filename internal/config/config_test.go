package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "text-embedding-ada-002", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Completion.OpenAI.Model)
	assert.Equal(t, 1000, cfg.Segmenter.MaxTokens)
	assert.Equal(t, "text-embedding-ada-002", cfg.Segmenter.EncodingModel)
	require.NotNil(t, cfg.Retrieval.Threshold)
	assert.InDelta(t, 0.2, *cfg.Retrieval.Threshold, 1e-12)
	assert.Equal(t, 4, cfg.Retrieval.Concurrency)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 0, cfg.Embedder.OpenAI.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Embedder.OpenAI.Timeout())
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: lexical
  lexical:
    dimension: 64
retrieval:
  threshold: 0.35
segmenter:
  max_tokens: 200
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lexical", cfg.Embedder.Type)
	assert.Equal(t, 64, cfg.Embedder.Lexical.Dimension)
	require.NotNil(t, cfg.Retrieval.Threshold)
	assert.InDelta(t, 0.35, *cfg.Retrieval.Threshold, 1e-12)
	assert.Equal(t, 200, cfg.Segmenter.MaxTokens)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "temp_dir", cfg.Server.UploadDir)
}

func TestLoadKeepsExplicitZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  threshold: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Retrieval.Threshold)
	assert.Equal(t, 0.0, *cfg.Retrieval.Threshold)

	reloaded := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(reloaded, cfg))
	cfg, err = Load(reloaded)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *cfg.Retrieval.Threshold)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	temp := 0.1
	cfg := Default()
	cfg.Completion.OpenAI.Temperature = &temp
	cfg.Server.Addr = ":9000"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "docqa", "config.yaml"), path)
	assert.FileExists(t, path)
	assert.Equal(t, Default(), cfg)
}
