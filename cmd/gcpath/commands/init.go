package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-codepath/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gcpath configuration interactively",
	Long: `Guides you through setting up gcpath step by step and writes the
answers to the project (./.gcpath/config.yaml) or global
(~/.gcpath/config.yaml) config file.`,
	// The config being written may not load yet.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appConfig = config.DefaultConfig()
		logger = newLogger(cmd, appConfig)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.OutOrStdout())
	},
}

// initAnswers holds the raw form values.
type initAnswers struct {
	scope     string
	languages []string
	callees   string
	cache     bool
	workers   string
}

func runInit(out io.Writer) error {
	defaults := config.DefaultConfig()
	answers := initAnswers{
		scope:   "project",
		callees: strings.Join(defaults.NoReturnCallees, ", "),
		cache:   defaults.CacheEnabled,
		workers: strconv.Itoa(defaults.Workers),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the configuration be saved?").
				Options(
					huh.NewOption("Project (./.gcpath/config.yaml)", "project"),
					huh.NewOption("Global (~/.gcpath/config.yaml)", "global"),
				).
				Value(&answers.scope),
			huh.NewMultiSelect[string]().
				Title("Languages to analyze").
				Options(
					huh.NewOption("JavaScript (.js .jsx .mjs .cjs)", string(config.LanguageJavaScript)).Selected(true),
					huh.NewOption("TypeScript (.ts .tsx .mts .cts)", string(config.LanguageTypeScript)).Selected(true),
				).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("select at least one language")
					}
					return nil
				}).
				Value(&answers.languages),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Calls that never return").
				Description("Comma-separated callees; code after them is unreachable").
				Placeholder("process.exit").
				Value(&answers.callees),
			huh.NewConfirm().
				Title("Cache reports between runs?").
				Value(&answers.cache),
			huh.NewInput().
				Title("Concurrent analyses (0 = one per CPU)").
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative number")
					}
					return nil
				}).
				Value(&answers.workers),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	cfg, err := answers.config()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if answers.scope == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	fmt.Fprintln(out, "\n=== Configuration Preview ===")
	fmt.Fprintf(out, "Config path: %s\n", configPath)
	fmt.Fprintf(out, "Languages: %v\n", cfg.Languages)
	fmt.Fprintf(out, "No-return callees: %s\n", strings.Join(cfg.NoReturnCallees, ", "))
	fmt.Fprintf(out, "Cache: %t (%s)\n", cfg.CacheEnabled, cfg.CacheDir)
	fmt.Fprintf(out, "Workers: %d\n", cfg.EffectiveWorkers())
	fmt.Fprintln(out, "================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to: %s\n", configPath)
	logger.Debug("config saved", "path", configPath)
	return nil
}

// config applies the answers on top of the defaults.
func (a initAnswers) config() (*config.Config, error) {
	cfg := config.DefaultConfig()

	cfg.Languages = nil
	for _, l := range a.languages {
		cfg.Languages = append(cfg.Languages, config.Language(l))
	}

	cfg.NoReturnCallees = nil
	for _, name := range strings.Split(a.callees, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.NoReturnCallees = append(cfg.NoReturnCallees, name)
		}
	}

	cfg.CacheEnabled = a.cache
	workers, err := strconv.Atoi(strings.TrimSpace(a.workers))
	if err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}
	cfg.Workers = workers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
