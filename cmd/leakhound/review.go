package leakhound

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakhound/leakhound/internal/cache"
	"github.com/leakhound/leakhound/internal/engine"
	"github.com/leakhound/leakhound/internal/report"
	"github.com/leakhound/leakhound/internal/tui"
	"github.com/leakhound/leakhound/internal/types"
)

var flagReviewFresh bool

func init() {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review findings interactively",
		Long:  "Review opens the last scan result in an interactive screen. Use --fresh to rescan first.",
		RunE:  runReview,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to review")
	cmd.Flags().BoolVar(&flagReviewFresh, "fresh", false, "rescan before opening")
}

func runReview(cmd *cobra.Command, _ []string) error {
	abs, _ := filepath.Abs(flagPath)

	rescan := func() ([]types.Finding, error) {
		res, err := engine.Scan(context.Background(), engine.Config{
			Root:            abs,
			NoCache:         flagNoCache,
			DefaultExcludes: true,
		})
		if err != nil {
			return nil, err
		}
		_ = cache.SaveResult(abs, res)
		return res.AllFindings(), nil
	}

	var findings []types.Finding
	if flagReviewFresh {
		fs, err := rescan()
		if err != nil {
			return err
		}
		findings = fs
	} else {
		last, err := cache.LoadResult(abs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "no cached scan result, scanning now...")
			fs, serr := rescan()
			if serr != nil {
				return serr
			}
			findings = fs
		} else {
			findings = last.Result.AllFindings()
			age := time.Since(last.Timestamp).Round(time.Second)
			fmt.Fprintf(os.Stderr, "showing scan from %s ago, press s to rescan\n", age)
		}
	}

	basePath := filepath.Join(abs, report.BaselineFile)
	baseline, _ := report.LoadBaseline(basePath)
	report.MarkAcknowledged(findings, baseline)

	return tui.Run(abs, findings, baseline, basePath, rescan)
}
