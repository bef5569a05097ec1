package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"NoReturnCallees", cfg.NoReturnCallees, []string{"process.exit"}},
		{"Languages", cfg.Languages, []Language{LanguageJavaScript, LanguageTypeScript}},
		{"IgnoreFile", cfg.IgnoreFile, ".gcpathignore"},
		{"CacheEnabled", cfg.CacheEnabled, true},
		{"CacheDir", cfg.CacheDir, filepath.Join(".gcpath", "cache")},
		{"CacheMaxEntries", cfg.CacheMaxEntries, 1000},
		{"Workers", cfg.Workers, 0},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogMaxSizeMB", cfg.LogMaxSizeMB, 10},
		{"Verbose", cfg.Verbose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		errContains string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{
			name:        "no languages",
			modify:      func(c *Config) { c.Languages = nil },
			errContains: "languages must not be empty",
		},
		{
			name:        "unknown language",
			modify:      func(c *Config) { c.Languages = []Language{"python"} },
			errContains: "invalid language: python",
		},
		{
			name:        "blank callee",
			modify:      func(c *Config) { c.NoReturnCallees = []string{"exit", " "} },
			errContains: "no_return_callees",
		},
		{
			name:        "cache without dir",
			modify:      func(c *Config) { c.CacheDir = "" },
			errContains: "cache_dir is required",
		},
		{
			name: "disabled cache needs no dir",
			modify: func(c *Config) {
				c.CacheEnabled = false
				c.CacheDir = ""
				c.CacheMaxEntries = 0
			},
		},
		{
			name:        "cache size",
			modify:      func(c *Config) { c.CacheMaxEntries = 0 },
			errContains: "cache_max_entries must be positive",
		},
		{
			name:        "negative workers",
			modify:      func(c *Config) { c.Workers = -1 },
			errContains: "workers must be non-negative",
		},
		{
			name:        "bad log level",
			modify:      func(c *Config) { c.LogLevel = "chatty" },
			errContains: "invalid log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		envVars     map[string]string
		checkCfg    func(*testing.T, *Config)
		errContains string
	}{
		{
			name: "load valid config from file",
			configYAML: `
no_return_callees: [process.exit, fail]
languages: [typescript]
cache_enabled: false
workers: 8
log_level: debug
log_file: /tmp/gcpath.log
`,
			checkCfg: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg.NoReturnCallees, []string{"process.exit", "fail"}) {
					t.Errorf("NoReturnCallees = %v", cfg.NoReturnCallees)
				}
				if !reflect.DeepEqual(cfg.Languages, []Language{LanguageTypeScript}) {
					t.Errorf("Languages = %v", cfg.Languages)
				}
				if cfg.CacheEnabled {
					t.Errorf("CacheEnabled = true, want false")
				}
				if cfg.Workers != 8 {
					t.Errorf("Workers = %d, want 8", cfg.Workers)
				}
				if cfg.LogFile != "/tmp/gcpath.log" {
					t.Errorf("LogFile = %q", cfg.LogFile)
				}
				if cfg.CacheMaxEntries != 1000 {
					t.Errorf("CacheMaxEntries = %d, want default 1000", cfg.CacheMaxEntries)
				}
			},
		},
		{
			name:       "env overrides file",
			configYAML: "workers: 2\n",
			envVars: map[string]string{
				"GCPATH_WORKERS":           "6",
				"GCPATH_NO_RETURN_CALLEES": "die, os.exit ,",
			},
			checkCfg: func(t *testing.T, cfg *Config) {
				if cfg.Workers != 6 {
					t.Errorf("Workers = %d, want 6", cfg.Workers)
				}
				if !reflect.DeepEqual(cfg.NoReturnCallees, []string{"die", "os.exit"}) {
					t.Errorf("NoReturnCallees = %v", cfg.NoReturnCallees)
				}
			},
		},
		{
			name:        "invalid yaml",
			configYAML:  "workers: [",
			errContains: "failed to parse config file",
		},
		{
			name:        "invalid values",
			configYAML:  "languages: [ruby]\n",
			errContains: "invalid language",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			cfg, err := LoadFromFile(configPath)

			if tt.errContains != "" {
				if err == nil {
					t.Fatalf("Expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Error = %q, should contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			tt.checkCfg(t, cfg)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("LoadFromFile() error = %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, project)

	global := DefaultConfig()
	global.Workers = 3
	global.LogLevel = "warn"
	if err := global.Save(GlobalConfigFilePath()); err != nil {
		t.Fatalf("Save(global) failed: %v", err)
	}

	if err := os.MkdirAll(".gcpath", 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ProjectConfigFilePath(), []byte("workers: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want project value 5", cfg.Workers)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want global value warn", cfg.LogLevel)
	}
}

func TestConfigSaveCreatesParentDirs(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dirs", "config.yaml")

	cfg := DefaultConfig()
	cfg.NoReturnCallees = []string{"halt"}
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() failed to create parent dirs: %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestEffectiveSettings(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.EffectiveWorkers() < 1 {
		t.Errorf("EffectiveWorkers() = %d, want >= 1", cfg.EffectiveWorkers())
	}
	cfg.Workers = 2
	if cfg.EffectiveWorkers() != 2 {
		t.Errorf("EffectiveWorkers() = %d, want 2", cfg.EffectiveWorkers())
	}

	if cfg.EffectiveLogLevel() != "info" {
		t.Errorf("EffectiveLogLevel() = %q", cfg.EffectiveLogLevel())
	}
	cfg.Verbose = true
	if cfg.EffectiveLogLevel() != "debug" {
		t.Errorf("EffectiveLogLevel() = %q, want debug", cfg.EffectiveLogLevel())
	}

	cfg.Languages = []Language{LanguageTypeScript}
	if cfg.HasLanguage("javascript") || !cfg.HasLanguage("typescript") {
		t.Errorf("HasLanguage mismatch for %v", cfg.Languages)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"0", 0},
		{"100", 100},
		{"invalid", -1},
		{"", -1},
		{"10.5", 10},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := parseInt(tt.input); result != tt.expected {
				t.Errorf("parseInt(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q) failed: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
