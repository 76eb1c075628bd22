// Package config provides the flacsym library manifest.
//
// A manifest is a TOML document:
//
//	log_level = "info"
//	cache_size = 512
//
//	[selftest]
//	min_version = "1.3.0"
//
//	[[library]]
//	name = "system"
//	paths = ["libFLAC.so.12", "libFLAC.so.8"]
//	default = true
//
//	[[library]]
//	name = "vendored"
//	paths = ["/opt/flac/lib/libFLAC.so"]
//	in_memory = true
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap/zapcore"
)

// Config is a complete manifest.
type Config struct {
	// LogLevel is a zap level name. The default is "info".
	LogLevel string `toml:"log_level"`
	// CacheSize is the number of resolved addresses each library keeps.
	// Zero selects the loader default.
	CacheSize int `toml:"cache_size"`
	// SelfTest configures the startup signature probes.
	SelfTest SelfTest `toml:"selftest"`
	// Libraries are the library instances to load.
	Libraries []Library `toml:"library"`
}

// SelfTest configures the startup signature probes.
type SelfTest struct {
	// MinVersion is the oldest accepted FLAC__VERSION_STRING.
	MinVersion string `toml:"min_version"`
}

// Library describes one library instance.
type Library struct {
	// Name identifies the library in output and logs.
	Name string `toml:"name"`
	// Paths are tried in order; the first that loads is used.
	Paths []string `toml:"paths"`
	// Default marks the library used for unbound symbols.
	Default bool `toml:"default"`
	// InMemory loads the library image from memory rather than through
	// the system loader. Only the first path is used.
	InMemory bool `toml:"in_memory"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a manifest. Unknown keys are an error.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that library names are unique and non-empty, that every
// library has a path and that at most one library is the default.
func (c *Config) Validate() error {
	var result error
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.CacheSize < 0 {
		result = multierror.Append(result, fmt.Errorf("negative cache_size %d", c.CacheSize))
	}
	seen := make(map[string]bool)
	var defaults []string
	for i, lib := range c.Libraries {
		if lib.Name == "" {
			result = multierror.Append(result, fmt.Errorf("library %d has no name", i))
		} else if seen[lib.Name] {
			result = multierror.Append(result, fmt.Errorf("duplicate library name %q", lib.Name))
		}
		seen[lib.Name] = true
		if len(lib.Paths) == 0 {
			result = multierror.Append(result, fmt.Errorf("library %q has no paths", lib.Name))
		}
		for _, p := range lib.Paths {
			if p == "" {
				result = multierror.Append(result, fmt.Errorf("library %q has an empty path", lib.Name))
			}
		}
		if lib.Default {
			defaults = append(defaults, lib.Name)
		}
	}
	if len(defaults) > 1 {
		result = multierror.Append(result, fmt.Errorf("more than one default library: %s", strings.Join(defaults, ", ")))
	}
	return result
}

// Level returns the configured log level.
func (c *Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// ErrNoLibraries is returned by DefaultLibrary when no library is configured.
var ErrNoLibraries = errors.New("config: no libraries configured")

// DefaultLibrary returns the library marked as default, or the first library
// when none is marked.
func (c *Config) DefaultLibrary() (Library, error) {
	if len(c.Libraries) == 0 {
		return Library{}, ErrNoLibraries
	}
	for _, lib := range c.Libraries {
		if lib.Default {
			return lib, nil
		}
	}
	return c.Libraries[0], nil
}
