package leakhound

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakhound/leakhound/internal/cache"
	"github.com/leakhound/leakhound/internal/config"
	"github.com/leakhound/leakhound/internal/engine"
	"github.com/leakhound/leakhound/internal/filter"
	"github.com/leakhound/leakhound/internal/report"
	"github.com/leakhound/leakhound/internal/rules"
	"github.com/leakhound/leakhound/internal/update"
)

var (
	flagPath      string
	flagDeep      bool
	flagRotated   string
	flagInclude   string
	flagExclude   string
	flagMaxBytes  int64
	flagEnable    string
	flagDisable   string
	flagImages    []string
	flagLLMFilter bool
	flagTimeout   time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan files for leaked credentials",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")
	cmd.Flags().BoolVar(&flagDeep, "deep", false, "also scan git history")
	cmd.Flags().StringVar(&flagRotated, "rotated", "", "comma-separated identifiers already rotated (reported as info)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this (default 1MiB)")
	cmd.Flags().StringVar(&flagEnable, "enable", "", "only run these rules (comma-separated IDs)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "disable these rules (comma-separated IDs)")
	cmd.Flags().StringArrayVar(&flagImages, "image", nil, "also scan this container image (repeatable)")
	cmd.Flags().BoolVar(&flagLLMFilter, "llm-filter", false, "review findings with Gemini before reporting (advisory only)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "abort the scan after this duration, reporting partial results")
}

func runScan(cmd *cobra.Command, _ []string) error {
	abs, _ := filepath.Abs(flagPath)
	// Load configs: CLI > local > global
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	}

	rotated := splitList(flagRotated)
	rotated = append(rotated, lcfg.Rotated...)
	rotated = append(rotated, gcfg.Rotated...)

	defaultExcludes := true
	if lcfg.DefaultExcludes != nil {
		defaultExcludes = *lcfg.DefaultExcludes
	} else if gcfg.DefaultExcludes != nil {
		defaultExcludes = *gcfg.DefaultExcludes
	}

	cfg := engine.Config{
		Root:            abs,
		Deep:            flagDeep,
		Rules:           rules.Select(pickString(flagEnable, lcfg.Enable, gcfg.Enable), pickString(flagDisable, lcfg.Disable, gcfg.Disable)),
		Rotated:         rotated,
		Threads:         pickInt(flagThreads, lcfg.Threads, gcfg.Threads),
		IncludeGlobs:    pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:    pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		MaxBytes:        pickInt64(flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes),
		NoCache:         flagNoCache,
		DefaultExcludes: defaultExcludes,
		Images:          flagImages,
	}

	ctx := context.Background()
	timeout := pickDuration(flagTimeout, lcfg.Timeout, gcfg.Timeout)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// False-positive review: CLI flag or config block
	if flagLLMFilter || lcfg.FilterEnabled() || gcfg.FilterEnabled() {
		src := lcfg
		if !lcfg.FilterEnabled() && gcfg.FilterEnabled() {
			src = gcfg
		}
		key := src.GeminiAPIKey()
		if key == "" {
			fmt.Fprintln(os.Stderr, "warning: llm filter requested but no API key set (GEMINI_API_KEY), reporting unfiltered results")
		} else {
			g, err := filter.NewGemini(ctx, key, src.GeminiModel())
			if err != nil {
				fmt.Fprintln(os.Stderr, "warning: cannot start llm filter, reporting unfiltered results:", err)
			} else {
				defer g.Close()
				cfg.Filter = g
				cfg.FilterTimeout = 30 * time.Second
				if src.LLMFilter != nil && src.LLMFilter.Timeout != nil {
					if d, err := time.ParseDuration(*src.LLMFilter.Timeout); err == nil {
						cfg.FilterTimeout = d
					}
				}
			}
		}
	}

	progressShown := false
	if !flagJSON {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'leakhound update' to upgrade\n", latest)
			}
		}
		fmt.Fprintf(os.Stderr, "Scanning %s with %d rules...\n", abs, len(cfg.Rules))
		scanned := 0
		cfg.Progress = func(string) {
			scanned++
			if scanned%100 == 0 {
				fmt.Fprintf(os.Stderr, "\r%d files", scanned)
				progressShown = true
			}
		}
	}

	res, err := engine.Scan(ctx, cfg)
	if progressShown {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	baseline, _ := report.LoadBaseline(filepath.Join(abs, report.BaselineFile))
	report.MarkAcknowledged(res.Findings, baseline)
	report.MarkAcknowledged(res.HistoryFindings, baseline)

	_ = cache.SaveResult(abs, res)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		report.PrintWarnings(os.Stderr, res.Warnings)
		report.PrintTable(os.Stdout, res, report.PrintOptions{
			NoColor: report.ColorDisabled(pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)),
		})
	}

	failOn := pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn)
	if report.ShouldFail(res.AllFindings(), failOn) {
		// Returned rather than exiting here so deferred cleanup (filter
		// connections, cancel funcs) still runs. Execute maps it to exit 1.
		return errSeverityThreshold
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
