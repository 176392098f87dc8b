package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show stackshot version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "stackshot %s (%s)\n", version, commit)
			return nil
		},
	}
}

func userAgent() string {
	return "stackshot/" + version
}
