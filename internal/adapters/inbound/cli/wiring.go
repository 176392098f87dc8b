package cli

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/stackshot/stackshot/internal/adapters/outbound/apikey"
	"github.com/stackshot/stackshot/internal/adapters/outbound/artifacts"
	"github.com/stackshot/stackshot/internal/adapters/outbound/chromium"
	"github.com/stackshot/stackshot/internal/adapters/outbound/config"
	"github.com/stackshot/stackshot/internal/adapters/outbound/gitinfo"
	"github.com/stackshot/stackshot/internal/adapters/outbound/httpprobe"
	"github.com/stackshot/stackshot/internal/adapters/outbound/report"
	"github.com/stackshot/stackshot/internal/adapters/outbound/static"
	"github.com/stackshot/stackshot/internal/application"
	"github.com/stackshot/stackshot/internal/domain"
	"github.com/stackshot/stackshot/internal/logging"
)

func newLogger(cmd *cobra.Command, g *globalFlags) (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(g.logFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level, format), nil
}

// resolveConfig layers mode defaults, the config file and command-line
// overrides, in increasing precedence.
func resolveConfig(path string, flags domain.RunConfig, logger *slog.Logger) (domain.RunConfig, error) {
	file, err := config.New().Load(path)
	if err != nil {
		return domain.RunConfig{}, err
	}
	cfg := domain.ResolveConfig(file.Merge(flags))
	if err := cfg.Validate(); err != nil {
		return domain.RunConfig{}, err
	}

	if cfg.Engine == "http" && cfg.Artifacts != domain.ArtifactsNone {
		logger.Warn("the http engine cannot take screenshots; artifacts disabled", "artifacts", cfg.Artifacts)
		cfg.Artifacts = domain.ArtifactsNone
	}
	return cfg, nil
}

// newBrowser returns the engine selected by the configuration and a func
// that releases it.
func newBrowser(engine string, logger *slog.Logger) (domain.Browser, func()) {
	if engine == "http" {
		return static.New(nil, userAgent()), func() {}
	}
	l := chromium.New(chromium.Options{Headless: true, Logger: logging.Component(logger, "chromium")})
	return l, func() {
		if err := l.Close(); err != nil {
			logger.Warn("stopping browser driver", "error", err)
		}
	}
}

type runWiring struct {
	cfg          domain.RunConfig
	registry     *domain.Registry
	registryPath string
	progress     domain.ProgressSink
	logger       *slog.Logger
}

// newRunService assembles the orchestrator and its adapters. The returned
// func releases the browser.
func newRunService(w runWiring) (*application.RunService, func()) {
	browser, release := newBrowser(w.cfg.Engine, w.logger)
	capture := application.NewCaptureService(
		browser,
		artifacts.New(w.cfg.ArtifactDir),
		logging.Component(w.logger, "capture"),
	)
	svc := application.NewRunService(application.RunDependencies{
		Registry:     w.registry,
		RegistryPath: w.registryPath,
		Config:       w.cfg,
		Capture:      capture,
		Prober:       httpprobe.New(&http.Client{}, userAgent()),
		Keys:         apikey.New(),
		Writer:       report.New(),
		Git:          gitinfo.New(),
		Progress:     w.progress,
		Logger:       logging.Component(w.logger, "run"),
	})
	return svc, release
}
