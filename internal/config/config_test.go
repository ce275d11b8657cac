package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ModeBench, cfg.Mode)
	assert.Equal(t, "fse", cfg.Codec)
	assert.Equal(t, 32*1024, cfg.ChunkSize)
	assert.Equal(t, 4, cfg.Iterations)
	assert.Equal(t, 2500*time.Millisecond, cfg.CalibrationWindow)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "turbo" }},
		{"bad codec", func(c *Config) { c.Codec = "lz77" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -1 }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"table log too large", func(c *Config) { c.TableLog = 15 }},
		{"zero window", func(c *Config) { c.CalibrationWindow = 0 }},
		{"bad storage type", func(c *Config) { c.Storage.Type = "gcs" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := []byte("mode: core\ncodec: huff0\nchunk_size: 65536\niterations: 2\ncalibration_window: 100ms\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ModeCore, cfg.Mode)
	assert.Equal(t, "huff0", cfg.Codec)
	assert.Equal(t, 65536, cfg.ChunkSize)
	assert.Equal(t, 2, cfg.Iterations)
	assert.Equal(t, 100*time.Millisecond, cfg.CalibrationWindow)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.json")
	content := []byte(`{"codec": "snappy", "table_log": 12}`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "snappy", cfg.Codec)
	assert.Equal(t, 12, cfg.TableLog)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
}

func TestLoadFromFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte("codec='fse'"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CODECBENCH_CODEC", "entropy16")
	t.Setenv("CODECBENCH_CHUNK_SIZE", "16384")
	t.Setenv("CODECBENCH_ITERATIONS", "7")
	t.Setenv("CODECBENCH_CALIBRATION_WINDOW", "50ms")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	assert.Equal(t, "entropy16", cfg.Codec)
	assert.Equal(t, 16384, cfg.ChunkSize)
	assert.Equal(t, 7, cfg.Iterations)
	assert.Equal(t, 50*time.Millisecond, cfg.CalibrationWindow)
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()

	assert.NotEmpty(t, cfg.WorkDir)
	assert.Equal(t, cfg.WorkDir, cfg.Storage.Path)
}
