package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackshot/stackshot/internal/adapters/outbound/registry"
	"github.com/stackshot/stackshot/internal/adapters/outbound/tui"
)

func newServicesCmd(_ *globalFlags) *cobra.Command {
	var (
		registryPath string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "services",
		Short: "List the services in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.New().Load(registryPath)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reg.All())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRegistry(reg.All()))
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", registry.DefaultFile, "Service registry file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the registry as JSON")

	return cmd
}
