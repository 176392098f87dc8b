package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "stackshot",
		Short: "Validate and document a self-hosted service stack",
		Long: "stackshot drives a headless browser against every service in a registry, " +
			"decides whether each one is documented, failed or in error, and writes a JSON report " +
			"plus screenshots for the documentation site.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newServicesCmd(g))
	cmd.AddCommand(newMCPCmd(g))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
