// Package config loads wheelsize settings from defaults, a YAML file, .env
// files and WHEELSIZE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "WHEELSIZE_"

// Default values
const (
	defaultToolTimeout    = 2 * time.Minute
	defaultExtractTimeout = 10 * time.Minute
	defaultWorkers        = 1
)

// Accepted enum values
var (
	StringsFallbackModes = []string{"auto", "always", "never"}
	LogLevels            = []string{"debug", "info", "warn", "error"}
	OutputFormats        = []string{"auto", "rich", "text", "json", "yaml"}
)

// Config holds the application configuration
type Config struct {
	Tools      ToolsConfig    `yaml:"tools"`
	Detector   DetectorConfig `yaml:"detector"`
	Workers    int            `yaml:"workers"`
	ScratchDir string         `yaml:"scratch_dir"`
	Log        LogConfig      `yaml:"log"`
	Output     OutputConfig   `yaml:"output"`
}

// ToolsConfig names the external inspection tools and bounds their runtime
type ToolsConfig struct {
	Cuobjdump      string        `yaml:"cuobjdump"`
	Nvdisasm       string        `yaml:"nvdisasm"`
	Strings        string        `yaml:"strings"`
	Timeout        time.Duration `yaml:"timeout"`
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
}

// DetectorConfig tunes architecture detection
type DetectorConfig struct {
	StringsFallback string `yaml:"strings_fallback"`
}

// LogConfig controls diagnostic output on stderr
type LogConfig struct {
	Level      string `yaml:"level"`
	Timestamps bool   `yaml:"timestamps"`
}

// OutputConfig selects the report format
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			Cuobjdump:      "cuobjdump",
			Nvdisasm:       "nvdisasm",
			Strings:        "strings",
			Timeout:        defaultToolTimeout,
			ExtractTimeout: defaultExtractTimeout,
		},
		Detector: DetectorConfig{StringsFallback: "auto"},
		Workers:  defaultWorkers,
		Log:      LogConfig{Level: "warn"},
		Output:   OutputConfig{Format: "auto"},
	}
}

// LoadOptions controls where Load looks for settings
type LoadOptions struct {
	// ConfigPath is an explicit YAML file; it must exist. When empty the
	// default location is used if present.
	ConfigPath string
	// EnvFiles are .env files read in order; missing files are skipped.
	// Defaults to ".env" in the working directory.
	EnvFiles []string
	// LookupEnv reads the process environment; os.LookupEnv when nil
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration. Later sources win: defaults, YAML file,
// .env files, then the process environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path, required := opts.ConfigPath, true
	if path == "" {
		path, required = DefaultConfigPath(), false
	}
	if path != "" {
		if err := cfg.mergeFile(path, required); err != nil {
			return nil, err
		}
	}

	lookup, err := envLookup(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/wheelsize/config.yml (or the
// platform equivalent), or "" when no config directory is known
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wheelsize", "config.yml")
}

func (c *Config) mergeFile(path string, required bool) error {
	//nolint:gosec // G304: path is the user's configuration file
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config %s: %w", path, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// envLookup layers the process environment over the .env files
func envLookup(opts LoadOptions) (func(string) (string, bool), error) {
	files := opts.EnvFiles
	if files == nil {
		files = []string{".env"}
	}

	dotenv := make(map[string]string)
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range values {
			dotenv[k] = v
		}
	}

	processEnv := opts.LookupEnv
	if processEnv == nil {
		processEnv = os.LookupEnv
	}

	return func(key string) (string, bool) {
		if v, ok := processEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CUOBJDUMP":        &c.Tools.Cuobjdump,
		"NVDISASM":         &c.Tools.Nvdisasm,
		"STRINGS":          &c.Tools.Strings,
		"STRINGS_FALLBACK": &c.Detector.StringsFallback,
		"SCRATCH_DIR":      &c.ScratchDir,
		"LOG_LEVEL":        &c.Log.Level,
		"FORMAT":           &c.Output.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TOOL_TIMEOUT":    &c.Tools.Timeout,
		"EXTRACT_TIMEOUT": &c.Tools.ExtractTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "LOG_TIMESTAMPS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOG_TIMESTAMPS: %w", EnvPrefix, err)
		}
		c.Log.Timestamps = b
	}
	return nil
}

// Validate rejects settings the analysis cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Tools.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("tools.timeout must be positive, got %v", c.Tools.Timeout))
	}
	if c.Tools.ExtractTimeout <= 0 {
		errs = append(errs, fmt.Errorf("tools.extract_timeout must be positive, got %v", c.Tools.ExtractTimeout))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if !oneOf(c.Detector.StringsFallback, StringsFallbackModes) {
		errs = append(errs, fmt.Errorf("detector.strings_fallback must be one of %v, got %q", StringsFallbackModes, c.Detector.StringsFallback))
	}
	if !oneOf(c.Log.Level, LogLevels) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", LogLevels, c.Log.Level))
	}
	if !oneOf(c.Output.Format, OutputFormats) {
		errs = append(errs, fmt.Errorf("output.format must be one of %v, got %q", OutputFormats, c.Output.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
