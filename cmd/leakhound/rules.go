package leakhound

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leakhound/leakhound/internal/rules"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List detection rules",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, r := range rules.All {
				fmt.Fprintf(os.Stdout, "%-28s %-8s %s\n", r.ID, r.Severity, r.Description)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
