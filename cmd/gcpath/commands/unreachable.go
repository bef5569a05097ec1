package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-codepath/internal/log"
	"github.com/l3aro/go-codepath/internal/scanner"
	"github.com/l3aro/go-codepath/pkg/cache"
	"github.com/l3aro/go-codepath/pkg/report"
)

// errFindings makes the command exit non-zero under --fail.
var errFindings = errors.New("unreachable code found")

// unreachableCmd represents the unreachable command
var unreachableCmd = &cobra.Command{
	Use:   "unreachable [path]",
	Short: "Report unreachable statements",
	Long: `Analyzes every JavaScript and TypeScript file under the given path
(default: current directory) and lists the statements no code path reaches.
Adjacent unreachable statements are reported as one range.

Reports are cached by file content in the configured cache directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		failOnFindings, _ := cmd.Flags().GetBool("fail")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		verify, _ := cmd.Flags().GetBool("verify")

		files, err := scanner.New(scannerOptions(appConfig)).Scan(cmd.Context(), root)
		if err != nil {
			return fmt.Errorf("scanning: %w", err)
		}
		logger.Debug("scan complete", "root", root, "files", len(files))

		var reports *cache.LRUCache
		cachePath := filepath.Join(appConfig.CacheDir, cache.FileName)
		if appConfig.CacheEnabled && !noCache {
			reports = cache.New(cache.Options{MaxSize: appConfig.CacheMaxEntries})
			if err := cache.LoadFromFile(reports, cachePath); err != nil {
				logger.Warn("ignoring unreadable cache", "path", cachePath, "error", err)
				reports.Clear()
			}
		}

		var spinner *log.ProgressSpinner
		if !jsonOutput && log.IsTTY() && len(files) > 0 {
			spinner = log.NewProgressSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Analyzing %d files", len(files)))
			spinner.Start()
		}

		a := &fileAnalyzer{
			opts:    reportOptions(appConfig, logger, verify),
			cache:   reports,
			salt:    strings.Join(appConfig.NoReturnCallees, ","),
			workers: appConfig.EffectiveWorkers(),
			logger:  logger,
		}
		if spinner != nil {
			a.progress = func(done int) {
				spinner.Message(fmt.Sprintf("Analyzing files %d/%d", done, len(files)))
			}
		}
		results, err := a.analyze(cmd.Context(), files)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return err
		}

		if reports != nil {
			stats := reports.Stats()
			logger.Debug("cache", "entries", stats.Length, "hits", stats.HitCount, "misses", stats.MissCount)
			if err := cache.PersistToFile(reports, cachePath); err != nil {
				logger.Warn("failed to save cache", "path", cachePath, "error", err)
			}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
		} else {
			writeUnreachableTable(out, results)
		}

		if failOnFindings && countRanges(results) > 0 {
			return errFindings
		}
		return nil
	},
}

func init() {
	unreachableCmd.Flags().BoolP("json", "j", false, "Output the file reports as JSON")
	unreachableCmd.Flags().Bool("fail", false, "Exit with an error when unreachable code is found")
	unreachableCmd.Flags().Bool("no-cache", false, "Analyze every file, ignoring the report cache")
	unreachableCmd.Flags().Bool("verify", false, "Check the structural invariants of every path")
}

// fileAnalyzer analyzes files concurrently, reusing cached reports when
// the content has not changed.
type fileAnalyzer struct {
	opts     report.Options
	cache    *cache.LRUCache // nil disables caching
	salt     string          // analysis settings folded into the content hash
	workers  int
	logger   log.Logger
	progress func(done int)
}

// analyze returns one report per analyzable file, in the order of files.
// Unreadable files are logged and skipped; only cancellation and
// verification failures abort the run.
func (a *fileAnalyzer) analyze(ctx context.Context, files []scanner.File) ([]*report.FileReport, error) {
	results := make([]*report.FileReport, len(files))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		g.SetLimit(a.workers)
	}
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			rep, err := a.analyzeFile(ctx, f)
			if a.progress != nil {
				a.progress(int(done.Add(1)))
			}
			if err != nil {
				if ctx.Err() != nil || a.opts.Verify {
					return err
				}
				a.logger.Warn("skipping file", "path", f.Path, "error", err)
				return nil
			}
			results[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, rep := range results {
		if rep != nil {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (a *fileAnalyzer) analyzeFile(ctx context.Context, f scanner.File) (*report.FileReport, error) {
	src, err := os.ReadFile(f.FullPath)
	if err != nil {
		return nil, err
	}

	var hash uint64
	if a.cache != nil {
		hash, err = cache.HashContent(append(src, a.salt...))
		if err != nil {
			return nil, err
		}
		if rep, ok := a.cache.Get(f.FullPath, hash); ok {
			hit := *rep
			hit.Path = f.Path
			return &hit, nil
		}
	}

	rep, err := report.AnalyzeFile(ctx, f.Path, src, a.opts)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Set(f.FullPath, hash, rep)
	}
	return rep, nil
}

func countRanges(reports []*report.FileReport) int {
	n := 0
	for _, rep := range reports {
		n += len(rep.Unreachable)
	}
	return n
}

// writeUnreachableTable prints one row per unreachable range.
func writeUnreachableTable(w io.Writer, reports []*report.FileReport) {
	ranges := countRanges(reports)
	if ranges == 0 {
		fmt.Fprintf(w, "No unreachable code in %d files\n", len(reports))
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Line", "Column", "Statement", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})

	files := 0
	for _, rep := range reports {
		if len(rep.Unreachable) > 0 {
			files++
		}
		for _, r := range rep.Unreachable {
			table.Append([]string{
				rep.Path,
				strconv.Itoa(r.Pos.StartLine),
				strconv.Itoa(r.Pos.StartColumn + 1),
				string(r.Kind),
				strconv.Itoa(r.Statements),
			})
		}
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d files", files),
		"",
		"",
		"",
		fmt.Sprintf("%d ranges", ranges),
	})

	table.Render()
}
