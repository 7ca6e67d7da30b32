package leakhound

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leakhound/leakhound/internal/update"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update leakhound to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			latest, err := update.SelfUpdate(version)
			if err != nil {
				return fmt.Errorf("self-update failed: %w", err)
			}
			if latest == version {
				fmt.Fprintln(os.Stderr, "already up to date")
				return nil
			}
			fmt.Fprintf(os.Stderr, "updated to v%s\n", latest)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
