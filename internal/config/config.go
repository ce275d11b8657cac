// Package config provides unified configuration for a codecbench run.
// A Config is assembled once (file, then environment, then flags), validated,
// and passed by value into the session constructor; the harness itself holds
// no mutable process-wide settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the benchmark variant to run.
type Mode string

const (
	// ModeBench is the full chunked compress/decompress benchmark.
	ModeBench Mode = "bench"
	// ModeCore is the core-loop micro-benchmark: table construction happens
	// once outside the timed region, only table application is measured.
	ModeCore Mode = "core"
)

// Defaults mirror the tuning constants of the harness.
const (
	DefaultChunkSize         = 32 * 1024
	DefaultIterations        = 4
	DefaultCalibrationWindow = 2500 * time.Millisecond
	DefaultCodec             = "fse"
)

// Config holds the immutable configuration for one codecbench invocation.
type Config struct {
	// Mode specifies the benchmark variant: bench, core
	Mode Mode `json:"mode" yaml:"mode"`

	// Codec selects the compressor variant: fse, huff0, entropy16, snappy
	Codec string `json:"codec" yaml:"codec"`

	// ChunkSize is the size in bytes of each independently compressed chunk
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// Iterations is the number of outer timing trials (minimum is reported)
	Iterations int `json:"iterations" yaml:"iterations"`

	// TableLog overrides the entropy table precision (0 = codec default)
	TableLog int `json:"table_log" yaml:"table_log"`

	// CalibrationWindow is the minimum elapsed wall-clock time per trial
	CalibrationWindow time.Duration `json:"calibration_window" yaml:"calibration_window"`

	// WorkDir is the scratch directory for downloaded corpora
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// ResultsPath is an optional SQLite database recording run history
	ResultsPath string `json:"results_path" yaml:"results_path"`

	// Storage configures remote corpus access
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// StorageConfig holds object storage configuration for remote corpora.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage root (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode:              ModeBench,
		Codec:             DefaultCodec,
		ChunkSize:         DefaultChunkSize,
		Iterations:        DefaultIterations,
		TableLog:          0,
		CalibrationWindow: DefaultCalibrationWindow,
		Storage: StorageConfig{
			Type: "local",
		},
	}
}

// Resolve fills in derived defaults.
func (c *Config) Resolve() {
	if c.WorkDir == "" {
		c.WorkDir = filepath.Join(os.TempDir(), "codecbench")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = c.WorkDir
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeBench, ModeCore:
		// Valid modes
	default:
		return fmt.Errorf("invalid mode: %s (must be bench or core)", c.Mode)
	}

	switch c.Codec {
	case "fse", "huff0", "entropy16", "snappy":
		// Known variants
	default:
		return fmt.Errorf("invalid codec: %s (must be fse, huff0, entropy16, or snappy)", c.Codec)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}

	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}

	if c.TableLog < 0 || c.TableLog > 14 {
		return fmt.Errorf("table_log must be between 0 and 14, got %d", c.TableLog)
	}

	if c.CalibrationWindow <= 0 {
		return fmt.Errorf("calibration_window must be positive, got %v", c.CalibrationWindow)
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CODECBENCH_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CODECBENCH_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("CODECBENCH_CODEC"); v != "" {
		cfg.Codec = v
	}
	if v := os.Getenv("CODECBENCH_CHUNK_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.ChunkSize)
	}
	if v := os.Getenv("CODECBENCH_ITERATIONS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Iterations)
	}
	if v := os.Getenv("CODECBENCH_TABLE_LOG"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.TableLog)
	}
	if v := os.Getenv("CODECBENCH_CALIBRATION_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CalibrationWindow = d
		}
	}
	if v := os.Getenv("CODECBENCH_WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}
	if v := os.Getenv("CODECBENCH_RESULTS_PATH"); v != "" {
		cfg.ResultsPath = v
	}
	if v := os.Getenv("CODECBENCH_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("CODECBENCH_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("CODECBENCH_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("CODECBENCH_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("CODECBENCH_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// EnsureDirectories creates the scratch directory tree.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.WorkDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
