// Package commands provides the CLI commands for the gcpath tool.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-codepath/internal/config"
	"github.com/l3aro/go-codepath/internal/log"
	"github.com/l3aro/go-codepath/internal/scanner"
	"github.com/l3aro/go-codepath/pkg/codepath"
	"github.com/l3aro/go-codepath/pkg/parser"
	"github.com/l3aro/go-codepath/pkg/report"
)

var (
	appConfig *config.Config
	logger    *log.DefaultLogger
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gcpath",
	Short: "gcpath - Code path analysis for JavaScript and TypeScript",
	Long: `gcpath builds the control-flow graph of every function in JavaScript
and TypeScript sources and reports what it finds.

Commands:
  paths        Show the code paths of a file (table, JSON or Graphviz)
  unreachable  Report unreachable statements under a directory
  tree         List the files gcpath would analyze
  init         Write a configuration file interactively

Use "gcpath [command] --help" for more information about a command.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: layered ~/.gcpath and ./.gcpath)")
	RootCmd.PersistentFlags().BoolP("verbose", "V", false, "Enable debug logging")

	RootCmd.AddCommand(pathsCmd)
	RootCmd.AddCommand(unreachableCmd)
	RootCmd.AddCommand(treeCmd)
	RootCmd.AddCommand(initCmd)
}

// setup loads the configuration and builds the logger shared by the commands.
func setup(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	var err error
	if configPath != "" {
		appConfig, err = config.LoadFromFile(configPath)
	} else {
		appConfig, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		appConfig.Verbose = true
	}

	logger = newLogger(cmd, appConfig)
	logger.Debug("config loaded", "workers", appConfig.EffectiveWorkers(), "cache", appConfig.CacheEnabled)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logger == nil {
		return nil
	}
	return logger.Close()
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *log.DefaultLogger {
	lc := log.LoggerConfig{
		Level:      log.ParseLevel(cfg.EffectiveLogLevel(), log.InfoLevel),
		JSONOutput: cfg.LogJSON,
		Stderr:     cmd.ErrOrStderr(),
	}
	if cfg.LogFile != "" {
		lc.File = &log.FileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
		}
	}
	return log.New(lc)
}

// scannerOptions applies the configured languages and ignore file.
func scannerOptions(cfg *config.Config) scanner.Options {
	opts := scanner.DefaultOptions()
	opts.IgnoreFileName = cfg.IgnoreFile
	opts.Accept = func(lang parser.Language) bool {
		return cfg.HasLanguage(lang.Family())
	}
	return opts
}

func analyzerOptions(cfg *config.Config, l codepath.Logger) codepath.Options {
	return codepath.Options{
		Logger:   l,
		IsAbrupt: codepath.NoReturnCallees(cfg.NoReturnCallees...),
	}
}

func reportOptions(cfg *config.Config, l codepath.Logger, verify bool) report.Options {
	return report.Options{
		IsAbrupt: codepath.NoReturnCallees(cfg.NoReturnCallees...),
		Logger:   l,
		Verify:   verify,
	}
}
