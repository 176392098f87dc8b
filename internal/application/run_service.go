package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stackshot/stackshot/internal/domain"
	"github.com/stackshot/stackshot/internal/domain/check"
)

// RunState is the orchestrator's position in a run. Transitions only move
// forward: Idle, Running, Reporting, Done.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateReporting
	StateDone
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// RunDependencies wires the orchestrator to its adapters.
type RunDependencies struct {
	Registry     *domain.Registry
	RegistryPath string
	Config       domain.RunConfig
	Capture      *CaptureService
	Prober       domain.StatusProber
	Keys         domain.APIKeySource
	Writer       domain.ReportWriter
	Git          domain.GitInfo
	Progress     domain.ProgressSink
	Logger       *slog.Logger
}

// RunService evaluates the registry sequentially, one browser session at a
// time, and emits the run report once at the end.
type RunService struct {
	deps    RunDependencies
	logger  *slog.Logger
	state   RunState
	current int
	sleep   func(context.Context, time.Duration) error
	now     func() time.Time
	newID   func() string
}

// NewRunService creates a RunService in the Idle state.
func NewRunService(deps RunDependencies) *RunService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RunService{
		deps:   deps,
		logger: logger,
		state:  StateIdle,
		sleep:  sleepContext,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// WithSleeper replaces the pacing sleep.
func (s *RunService) WithSleeper(sleep func(context.Context, time.Duration) error) *RunService {
	s.sleep = sleep
	return s
}

// WithClock replaces the clock used for capturedAt and run duration.
func (s *RunService) WithClock(now func() time.Time) *RunService {
	s.now = now
	return s
}

// State returns the current state and, while Running, the service index.
func (s *RunService) State() (RunState, int) {
	return s.state, s.current
}

// Run performs one full pass. Per-service failures are recorded in the report;
// only report write failures and context cancellation abort the run, and in
// both cases no report is left behind.
func (s *RunService) Run(ctx context.Context) (*domain.RunReport, error) {
	if s.state != StateIdle {
		return nil, fmt.Errorf("run already started (state %s)", s.state)
	}
	cfg := s.deps.Config
	started := s.now()
	services := s.deps.Registry.Select(cfg.Suite)
	agg := domain.NewAggregator()

	s.logger.Info("run started",
		"mode", cfg.Mode, "suite", cfg.Suite, "services", len(services), "pacing", cfg.Pacing())

	for i, d := range services {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.state, s.current = StateRunning, i

		v := s.Evaluate(ctx, d)
		agg.Add(v)
		if err := v.Err(); err != nil {
			s.logger.Warn("service unhealthy", "service", v.ServiceName, "status", v.Status, "error", err)
		} else {
			s.logger.Info("service evaluated", "service", v.ServiceName, "status", v.Status)
		}
		if s.deps.Progress != nil {
			s.deps.Progress.ServiceDone(i, len(services), v)
		}

		if i < len(services)-1 {
			if err := s.sleep(ctx, cfg.Pacing()); err != nil {
				return nil, err
			}
		}
	}

	s.state = StateReporting
	report := agg.Report(domain.ReportInfo{
		RunID:       s.newID(),
		CapturedAt:  started,
		Duration:    s.now().Sub(started),
		Mode:        cfg.Mode,
		Suite:       cfg.Suite,
		Engine:      cfg.Engine,
		Commit:      s.commit(),
		ArtifactDir: s.artifactDir(),
	})

	if err := s.deps.Writer.Write(cfg.ReportPath, report); err != nil {
		if errors.Is(err, domain.ErrReportWrite) {
			return nil, err
		}
		return nil, fmt.Errorf("%w %s: %w", domain.ErrReportWrite, cfg.ReportPath, err)
	}

	s.state = StateDone
	c := agg.Counts()
	s.logger.Info("run finished",
		"documented", c.Documented, "failed", c.Failed, "errored", c.Errored,
		"skipped", c.Skipped, "success_rate", report.Metadata.SuccessRate)
	return report, nil
}

// Evaluate runs the suite's checks against one service and returns its
// terminal verdict. It never fails: every error becomes part of the verdict.
func (s *RunService) Evaluate(ctx context.Context, d domain.ServiceDescriptor) domain.ServiceVerdict {
	cfg := s.deps.Config

	// A skipped service is never visited, whichever suite is selected.
	if d.Skip {
		return check.Evaluate(d, domain.CaptureOutcome{Skipped: true}, cfg.Rules())
	}

	var outcome domain.CaptureOutcome
	if cfg.Suite.RunsWeb() && s.deps.Capture != nil {
		outcome = s.deps.Capture.Capture(ctx, d, CaptureOptionsFrom(cfg))
	}
	if cfg.Suite.RunsAPI() && d.APICapable() && s.deps.Prober != nil {
		outcome.API = s.probe(ctx, d)
	}

	return check.Evaluate(d, outcome, cfg.Rules())
}

func (s *RunService) probe(ctx context.Context, d domain.ServiceDescriptor) *domain.APIResult {
	var key string
	if s.deps.Keys != nil {
		k, err := s.deps.Keys.APIKey(d)
		if err != nil {
			s.logger.Warn("reading api key", "service", d.Name, "error", err)
		}
		key = k
	}

	if t := s.deps.Config.APITimeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	res := s.deps.Prober.Probe(ctx, d.Address, d.APIPath, key)
	return &res
}

func (s *RunService) commit() string {
	if s.deps.Git == nil || s.deps.RegistryPath == "" {
		return ""
	}
	hash, err := s.deps.Git.CommitHash(filepath.Dir(s.deps.RegistryPath))
	if err != nil {
		s.logger.Debug("registry is not in a git repository", "error", err)
		return ""
	}
	return hash
}

func (s *RunService) artifactDir() string {
	if s.deps.Config.Artifacts == "" || s.deps.Config.Artifacts == domain.ArtifactsNone {
		return ""
	}
	return s.deps.Config.ArtifactDir
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
