package leakhound

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakhound/leakhound/internal/server"
)

var (
	flagAddr        string
	flagScanTimeout time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scanner as an HTTP service",
		Long:  "Serve exposes POST /scan and GET /healthz. Scan requests take a repo URL to clone or a server-local path.",
		RunE:  runServe,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagAddr, "addr", ":8517", "listen address")
	cmd.Flags().DurationVar(&flagScanTimeout, "scan-timeout", 5*time.Minute, "per-scan time budget")
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := &server.Server{ScanTimeout: flagScanTimeout}
	fmt.Fprintf(os.Stderr, "leakhound listening on %s\n", flagAddr)
	return http.ListenAndServe(flagAddr, srv.Handler())
}
