// Package config loads worker configuration from YAML.
//
// Configuration can be loaded from:
//   - YAML configuration file
//   - Environment variables (override file settings; recommended for secrets)
//   - Programmatic defaults
//
// Environment Variables:
//
//	TERMCLUSTER_SOURCE_ACCESS_KEY  - MinIO access key
//	TERMCLUSTER_SOURCE_SECRET_KEY  - MinIO secret key
//	TERMCLUSTER_SOURCE_ENDPOINT    - S3/MinIO endpoint override
//	TERMCLUSTER_LOG_LEVEL          - debug, info, warn or error
//
// Example:
//
//	clusters: 128
//	normalizer: fold
//	source:
//	  kind: s3
//	  bucket: ml-artifacts
//	  prefix: centroids/
//	  name: v3.csv.zst
//	  version_table: centroid-versions
//	resources:
//	  workers: 8
//	  io_limit_bytes_per_sec: 67108864
//	run:
//	  partitions: 8
//	  shape: balanced
//	log:
//	  level: info
//	  format: json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/termcluster/centroid"
	"github.com/hupe1980/termcluster/codec"
	"github.com/hupe1980/termcluster/engine"
)

// Source kinds.
const (
	KindLocal = "local"
	KindS3    = "s3"
	KindMinIO = "minio"
)

// Config is the complete worker configuration.
type Config struct {
	// Clusters is K, the number of centroids.
	Clusters int `yaml:"clusters"`

	// Normalizer names the term normalizer: "fold" (default) or "identity".
	Normalizer string `yaml:"normalizer"`

	// StrictCoverage fails the load when a cluster has no records.
	StrictCoverage bool `yaml:"strict_coverage"`

	// Codec names the partial-state codec: "binary" (default), "json" or "go-json".
	Codec string `yaml:"codec"`

	Source    SourceConfig    `yaml:"source"`
	Resources ResourcesConfig `yaml:"resources"`
	Run       RunConfig       `yaml:"run"`
	Log       LogConfig       `yaml:"log"`
}

// SourceConfig locates the centroid file.
type SourceConfig struct {
	// Kind is local, s3 or minio.
	Kind string `yaml:"kind"`
	// Path is the root directory for local sources.
	Path string `yaml:"path"`

	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// AccessKey, SecretKey and Secure configure MinIO.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`

	// Name is the centroid blob. Ignored when VersionTable resolves one.
	Name string `yaml:"name"`

	// VersionTable is a DynamoDB table holding published centroid versions.
	// When set (s3 only), the current version's blob is loaded.
	VersionTable string `yaml:"version_table"`
}

// ResourcesConfig bounds one worker process.
type ResourcesConfig struct {
	Workers            int64 `yaml:"workers"`
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// RunConfig is the default plan for partitioned runs.
type RunConfig struct {
	Partitions int    `yaml:"partitions"`
	Shape      string `yaml:"shape"`
	Seed       int64  `yaml:"seed"`
}

// LogConfig selects log level and format ("text" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration for a local centroid directory.
func DefaultConfig() *Config {
	return &Config{
		Normalizer: "fold",
		Codec:      "binary",
		Source: SourceConfig{
			Kind: KindLocal,
			Path: ".",
		},
		Resources: ResourcesConfig{
			Workers: 1,
		},
		Run: RunConfig{
			Partitions: 1,
			Shape:      engine.LeftDeep.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of DefaultConfig,
// applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse is LoadConfig for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from TERMCLUSTER_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TERMCLUSTER_SOURCE_ACCESS_KEY"); v != "" {
		c.Source.AccessKey = v
	}
	if v := os.Getenv("TERMCLUSTER_SOURCE_SECRET_KEY"); v != "" {
		c.Source.SecretKey = v
	}
	if v := os.Getenv("TERMCLUSTER_SOURCE_ENDPOINT"); v != "" {
		c.Source.Endpoint = v
	}
	if v := os.Getenv("TERMCLUSTER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Clusters < 1 {
		errs = append(errs, fmt.Errorf("clusters must be positive, got %d", c.Clusters))
	}
	if _, ok := centroid.NormalizerByName(c.Normalizer); !ok {
		errs = append(errs, fmt.Errorf("unknown normalizer %q", c.Normalizer))
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}
	if _, err := engine.ParseMergeShape(c.Run.Shape); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	switch c.Source.Kind {
	case KindLocal:
		if c.Source.Name == "" {
			errs = append(errs, errors.New("source.name is required"))
		}
	case KindS3:
		if c.Source.Bucket == "" {
			errs = append(errs, errors.New("source.bucket is required for s3"))
		}
		if c.Source.Name == "" && c.Source.VersionTable == "" {
			errs = append(errs, errors.New("source.name or source.version_table is required for s3"))
		}
	case KindMinIO:
		if c.Source.Bucket == "" || c.Source.Endpoint == "" {
			errs = append(errs, errors.New("source.bucket and source.endpoint are required for minio"))
		}
		if c.Source.Name == "" {
			errs = append(errs, errors.New("source.name is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source kind %q", c.Source.Kind))
	}
	if c.Source.VersionTable != "" && c.Source.Kind != KindS3 {
		errs = append(errs, errors.New("source.version_table requires kind s3"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
