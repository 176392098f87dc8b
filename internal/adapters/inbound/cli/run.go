package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackshot/stackshot/internal/adapters/outbound/config"
	"github.com/stackshot/stackshot/internal/adapters/outbound/registry"
	"github.com/stackshot/stackshot/internal/adapters/outbound/tui"
	"github.com/stackshot/stackshot/internal/domain"
)

type runFlags struct {
	suite        string
	mode         string
	registryPath string
	configPath   string
	engine       string
	timeout      time.Duration
	pacing       time.Duration
	reportPath   string
	artifactDir  string
	jsonOutput   bool
	verbose      bool
	only         []string
}

// overrides converts the flags the user actually set into a config overlay.
func (f *runFlags) overrides(cmd *cobra.Command) (domain.RunConfig, error) {
	var o domain.RunConfig
	o.Suite = domain.Suite(f.suite)
	o.Mode = domain.Mode(f.mode)
	o.Engine = f.engine
	o.ReportPath = f.reportPath
	o.ArtifactDir = f.artifactDir
	if cmd.Flags().Changed("timeout") {
		if f.timeout.Milliseconds() <= 0 {
			return o, fmt.Errorf("--timeout must be at least 1ms (got %s)", f.timeout)
		}
		o.TimeoutMs = int(f.timeout.Milliseconds())
	}
	if cmd.Flags().Changed("pacing") {
		ms := int(f.pacing.Milliseconds())
		o.PacingMs = &ms
	}
	return o, nil
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate every service and write the report",
		Long: "Visit each service in the registry one at a time, run the selected suite of checks, " +
			"and write the run report. Exits non-zero when any service ends failed or error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, g)
			if err != nil {
				return err
			}

			overrides, err := f.overrides(cmd)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(f.configPath, overrides, logger)
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}

			reg, err := registry.New().Load(f.registryPath)
			if err != nil {
				return err
			}
			if reg, err = reg.Only(f.only); err != nil {
				return err
			}

			var progress domain.ProgressSink
			if !f.jsonOutput {
				progress = tui.NewProgress(cmd.OutOrStdout())
			}

			svc, release := newRunService(runWiring{
				cfg:          cfg,
				registry:     reg,
				registryPath: f.registryPath,
				progress:     progress,
				logger:       logger,
			})
			defer release()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := svc.Run(ctx)
			if err != nil {
				return err
			}

			if f.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(report, cfg.ReportPath))
				if f.verbose {
					for _, v := range report.Services {
						if v.Err() != nil {
							fmt.Fprintln(cmd.OutOrStdout())
							fmt.Fprint(cmd.OutOrStdout(), tui.RenderVerdict(v))
						}
					}
				}
			}

			if report.HasFailures() {
				return domain.ErrServicesFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.suite, "suite", "", "Suite to run: web, api or all (default all)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Capture mode: full-documentation, quick-triage or strict-validation (default full-documentation)")
	cmd.Flags().StringVar(&f.registryPath, "registry", registry.DefaultFile, "Service registry file")
	cmd.Flags().StringVar(&f.configPath, "config", config.DefaultFile, "Run configuration file")
	cmd.Flags().StringVar(&f.engine, "engine", "", "Browser engine: playwright or http (default playwright)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Navigation timeout per service (default depends on mode)")
	cmd.Flags().DurationVar(&f.pacing, "pacing", 0, "Delay between services (default depends on mode)")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Report output path (default "+domain.DefaultReportPath+")")
	cmd.Flags().StringVar(&f.artifactDir, "artifacts", "", "Screenshot directory (default "+domain.DefaultArtifactDir+")")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the report as JSON instead of the summary")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Show every check and its evidence for services that need attention")
	cmd.Flags().StringSliceVar(&f.only, "only", nil, "Only evaluate these services (comma-separated names)")

	return cmd
}
