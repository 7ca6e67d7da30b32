package leakhound

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the leakhound version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println("leakhound v" + version)
		},
	}
	rootCmd.AddCommand(cmd)
}
