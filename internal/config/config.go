package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language names a source family the scanner picks up
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// Config holds all configuration for gcpath
type Config struct {
	// NoReturnCallees lists callees (dotted names) whose call statements
	// never complete, such as process.exit
	NoReturnCallees []string `yaml:"no_return_callees" env:"GCPATH_NO_RETURN_CALLEES"`

	// Languages restricts which files are analyzed
	Languages []Language `yaml:"languages" env:"GCPATH_LANGUAGES"`

	// IgnoreFile holds gitignore-style patterns, relative to the scanned root
	IgnoreFile string `yaml:"ignore_file" env:"GCPATH_IGNORE_FILE"`

	// Report cache
	CacheEnabled    bool   `yaml:"cache_enabled" env:"GCPATH_CACHE_ENABLED"`
	CacheDir        string `yaml:"cache_dir" env:"GCPATH_CACHE_DIR"`
	CacheMaxEntries int    `yaml:"cache_max_entries" env:"GCPATH_CACHE_MAX_ENTRIES"`

	// Workers bounds concurrent file analysis; 0 means one per CPU
	Workers int `yaml:"workers" env:"GCPATH_WORKERS"`

	// Logging
	LogLevel      string `yaml:"log_level" env:"GCPATH_LOG_LEVEL"`
	LogJSON       bool   `yaml:"log_json" env:"GCPATH_LOG_JSON"`
	LogFile       string `yaml:"log_file" env:"GCPATH_LOG_FILE"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" env:"GCPATH_LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `yaml:"log_max_backups" env:"GCPATH_LOG_MAX_BACKUPS"`
	Verbose       bool   `yaml:"verbose" env:"GCPATH_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NoReturnCallees: []string{"process.exit"},
		Languages:       []Language{LanguageJavaScript, LanguageTypeScript},
		IgnoreFile:      ".gcpathignore",
		CacheEnabled:    true,
		CacheDir:        filepath.Join(".gcpath", "cache"),
		CacheMaxEntries: 1000,
		Workers:         0,
		LogLevel:        "info",
		LogJSON:         false,
		LogFile:         "",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		Verbose:         false,
	}
}

// GlobalConfigFilePath returns the global config file path (~/.gcpath/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gcpath", "config.yaml")
	}
	return filepath.Join(home, ".gcpath", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.gcpath/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".gcpath", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gcpath/config.yaml)
// 3. Global config (~/.gcpath/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GCPATH_NO_RETURN_CALLEES"); v != "" {
		cfg.NoReturnCallees = splitList(v)
	}
	if v := os.Getenv("GCPATH_LANGUAGES"); v != "" {
		cfg.Languages = nil
		for _, l := range splitList(v) {
			cfg.Languages = append(cfg.Languages, Language(strings.ToLower(l)))
		}
	}
	if v := os.Getenv("GCPATH_IGNORE_FILE"); v != "" {
		cfg.IgnoreFile = v
	}
	if v := os.Getenv("GCPATH_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("GCPATH_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("GCPATH_CACHE_MAX_ENTRIES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CacheMaxEntries = i
		}
	}
	if v := os.Getenv("GCPATH_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("GCPATH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GCPATH_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv("GCPATH_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("GCPATH_LOG_MAX_SIZE_MB"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.LogMaxSizeMB = i
		}
	}
	if v := os.Getenv("GCPATH_LOG_MAX_BACKUPS"); v != "" {
		if i := parseInt(v); i >= 0 {
			cfg.LogMaxBackups = i
		}
	}
	if v := os.Getenv("GCPATH_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages must not be empty")
	}
	for _, l := range c.Languages {
		switch l {
		case LanguageJavaScript, LanguageTypeScript:
		default:
			return fmt.Errorf("invalid language: %s (must be 'javascript' or 'typescript')", l)
		}
	}

	for _, name := range c.NoReturnCallees {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("no_return_callees must not contain empty names")
		}
	}

	if c.CacheEnabled {
		if c.CacheDir == "" {
			return fmt.Errorf("cache_dir is required when cache_enabled is true")
		}
		if c.CacheMaxEntries <= 0 {
			return fmt.Errorf("cache_max_entries must be positive")
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn or error)", c.LogLevel)
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return fmt.Errorf("log rotation settings must be non-negative")
	}

	return nil
}

// EffectiveWorkers returns the number of concurrent analyses to run.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// EffectiveLogLevel returns the configured level, forced to debug by Verbose.
func (c *Config) EffectiveLogLevel() string {
	if c.Verbose {
		return "debug"
	}
	return c.LogLevel
}

// HasLanguage reports whether files of the given family are analyzed.
func (c *Config) HasLanguage(family string) bool {
	for _, l := range c.Languages {
		if string(l) == family {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes"
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return -1
	}
	return i
}
