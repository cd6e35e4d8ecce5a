package expiringdict

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file syntax.
type Format string

const (
	// FormatTOML selects TOML.
	FormatTOML Format = "toml"
	// FormatYAML selects YAML.
	FormatYAML Format = "yaml"
)

// Config mirrors the cache settings accepted from a configuration file.
//
//	max_len = 1000
//	max_age = "5m"
type Config struct {
	MaxLen int `toml:"max_len" yaml:"max_len"`
	// MaxAge is a duration string understood by time.ParseDuration.
	MaxAge string `toml:"max_age" yaml:"max_age"`
}

// LoadConfig reads and validates the configuration at path. The format is
// chosen by extension: .toml, .yaml or .yml.
func LoadConfig(path string) (Config, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return Config{}, fmt.Errorf("%s: unsupported config extension %q", path, filepath.Ext(path))
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := ParseConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates data. Unknown keys are rejected.
func ParseConfig(data []byte, format Format) (Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty document leaves cfg zero and fails validation below
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unknown config format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings and returns ErrInvalidArgument if they
// cannot build a cache.
func (c Config) Validate() error {
	maxAge, err := c.maxAge()
	if err != nil {
		return err
	}
	return validate(c.MaxLen, maxAge)
}

func (c Config) maxAge() (time.Duration, error) {
	if c.MaxAge == "" {
		return 0, fmt.Errorf("%w: max_age is required", ErrInvalidArgument)
	}
	d, err := time.ParseDuration(c.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("%w: max_age: %w", ErrInvalidArgument, err)
	}
	return d, nil
}

// NewFromConfig creates a Cache from cfg.
func NewFromConfig[K comparable, V any](cfg Config, opts ...Option[K, V]) (*Cache[K, V], error) {
	maxAge, err := cfg.maxAge()
	if err != nil {
		return nil, err
	}
	return New(cfg.MaxLen, maxAge, opts...)
}
