package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/stackshot/stackshot/internal/adapters/inbound/mcp"
	"github.com/stackshot/stackshot/internal/adapters/outbound/config"
	"github.com/stackshot/stackshot/internal/adapters/outbound/registry"
	"github.com/stackshot/stackshot/internal/adapters/outbound/report"
	"github.com/stackshot/stackshot/internal/domain"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the stackshot MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalFlags) *cobra.Command {
	var (
		registryPath string
		configPath   string
		engine       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start stackshot MCP server (stdio)",
		Long:  "Start the stackshot MCP server using stdio transport. Assistants can list services, read the last report and check a single service on demand.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, g)
			if err != nil {
				return err
			}

			cfg, err := resolveConfig(configPath, domain.RunConfig{Engine: engine}, logger)
			if err != nil {
				return err
			}
			reg, err := registry.New().Load(registryPath)
			if err != nil {
				return err
			}

			// On-demand checks never write the report or screenshots.
			cfg.Artifacts = domain.ArtifactsNone
			checker, release := newRunService(runWiring{
				cfg:          cfg,
				registry:     reg,
				registryPath: registryPath,
				logger:       logger,
			})
			defer release()

			s := mcpadapter.NewStackshotMCPServer(mcpadapter.Options{
				Version:      version,
				Registry:     registry.New(),
				RegistryPath: registryPath,
				Reports:      report.New(),
				ReportPath:   cfg.ReportPath,
				Checker:      checker,
			})
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", registry.DefaultFile, "Service registry file")
	cmd.Flags().StringVar(&configPath, "config", config.DefaultFile, "Run configuration file")
	cmd.Flags().StringVar(&engine, "engine", "", "Browser engine for on-demand checks: playwright or http")

	return cmd
}
