package leakhound

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leakhound/leakhound/internal/engine"
	"github.com/leakhound/leakhound/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Acknowledge all current findings",
		Long:  "Baseline scans the tree and records every finding as acknowledged. Acknowledged findings stay in reports but no longer fail the scan.",
		RunE:  runBaseline,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")
}

func runBaseline(cmd *cobra.Command, _ []string) error {
	abs, _ := filepath.Abs(flagPath)
	res, err := engine.Scan(context.Background(), engine.Config{
		Root:            abs,
		NoCache:         true,
		DefaultExcludes: true,
	})
	if err != nil {
		return err
	}
	path := filepath.Join(abs, report.BaselineFile)
	if err := report.SaveBaseline(path, res.Findings); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "acknowledged %d finding(s) in %s\n", len(res.Findings), path)
	return nil
}
