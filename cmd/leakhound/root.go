package leakhound

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errSeverityThreshold signals that a scan found findings at or above the
// fail-on threshold. It is not an error in the usual sense: commands return it
// instead of calling os.Exit so their deferred cleanup runs, and Execute turns
// it into exit status 1 without printing anything.
var errSeverityThreshold = errors.New("findings at or above fail-on threshold")

var (
	flagJSON          bool
	flagThreads       int
	flagFailOn        string
	flagNoColor       bool
	flagNoCache       bool
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the leakhound CLI.
var rootCmd = &cobra.Command{
	Use:           "leakhound",
	Short:         "Hunt leaked credentials in your repo",
	Long:          "Leakhound scans your working tree and git history for leaked credentials, classifies them by severity, and fails CI when it finds something worth rotating.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the leakhound CLI. It should be called by the main package.
// Exit status: 0 clean, 1 findings at or above the fail-on threshold, 2 fatal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errSeverityThreshold) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "", "fail on info|low|medium|high|critical (default critical)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}
