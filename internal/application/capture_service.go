package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stackshot/stackshot/internal/domain"
	"github.com/stackshot/stackshot/internal/domain/check"
)

// timeoutGrace bounds how long a session may overrun its own navigation
// timeout before the context cancels it.
const timeoutGrace = 2 * time.Second

// CaptureOptions control one capture.
type CaptureOptions struct {
	WaitPolicy domain.WaitPolicy
	Timeout    time.Duration
	Artifacts  domain.ArtifactSet
}

// CaptureOptionsFrom derives capture options from the run configuration.
func CaptureOptionsFrom(cfg domain.RunConfig) CaptureOptions {
	return CaptureOptions{
		WaitPolicy: cfg.WaitPolicy,
		Timeout:    cfg.Timeout(),
		Artifacts:  cfg.Artifacts,
	}
}

// CaptureService drives one isolated browser session per service.
type CaptureService struct {
	browser   domain.Browser
	artifacts domain.ArtifactStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewCaptureService creates a CaptureService. artifacts may be nil when no
// capture mode requires screenshots.
func NewCaptureService(browser domain.Browser, artifacts domain.ArtifactStore, logger *slog.Logger) *CaptureService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CaptureService{browser: browser, artifacts: artifacts, logger: logger, now: time.Now}
}

// WithClock replaces the wall clock used to measure load time.
func (s *CaptureService) WithClock(now func() time.Time) *CaptureService {
	s.now = now
	return s
}

// Capture navigates to the service and collects everything the rule engine
// needs. It never returns an error: failures become a CaptureError inside the
// outcome. The session is closed before Capture returns on every path.
func (s *CaptureService) Capture(ctx context.Context, d domain.ServiceDescriptor, opts CaptureOptions) domain.CaptureOutcome {
	if d.Skip {
		s.logger.Debug("skipping service without web interface", "service", d.Name)
		return domain.CaptureOutcome{Skipped: true}
	}

	result, err := s.capture(ctx, d, opts)
	if err != nil {
		ce := domain.NewCaptureError(err)
		s.logger.Warn("capture failed", "service", d.Name, "kind", ce.Kind, "error", ce.Message)
		return domain.CaptureOutcome{Err: ce}
	}
	return domain.CaptureOutcome{Result: result}
}

func (s *CaptureService) capture(ctx context.Context, d domain.ServiceDescriptor, opts CaptureOptions) (*domain.CaptureResult, error) {
	// Session start-up (including a first-time driver install) is not part of
	// the service's navigation budget.
	session, err := s.browser.NewSession(ctx, domain.DesktopViewport)
	if err != nil {
		return nil, fmt.Errorf("%w: opening session: %w", domain.ErrNavigation, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Debug("closing session", "service", d.Name, "error", cerr)
		}
	}()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout+timeoutGrace)
		defer cancel()
	}

	start := s.now()
	nav, err := session.Navigate(ctx, d.Address, opts.WaitPolicy, opts.Timeout)
	if err != nil {
		return nil, err
	}
	loadTime := s.now().Sub(start)

	title, err := session.Title()
	if err != nil {
		return nil, fmt.Errorf("reading title: %w", err)
	}
	body, err := session.BodyText()
	if err != nil {
		return nil, fmt.Errorf("reading body text: %w", err)
	}

	result := &domain.CaptureResult{
		Title:      title,
		FinalURL:   session.CurrentURL(),
		Status:     nav.Status,
		LoadTimeMs: loadTime.Milliseconds(),
		RawText:    body,
		MarkerHits: markerHits(session, d.ExpectedMarkers),
		Landmarks:  landmarkCounts(session, check.Landmarks(d)),
	}

	artifacts, err := s.screenshots(session, d.Name, opts.Artifacts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	s.logger.Debug("captured service",
		"service", d.Name, "title", title, "status", nav.Status,
		"load_ms", result.LoadTimeMs, "artifacts", len(artifacts))
	return result, nil
}

type shot struct {
	file   string
	region domain.Region
}

// screenshots returns no paths at all when any shot fails, so partial
// artifacts are never referenced by the report.
func (s *CaptureService) screenshots(session domain.BrowserSession, name string, set domain.ArtifactSet) ([]string, error) {
	if set == "" || set == domain.ArtifactsNone {
		return nil, nil
	}
	if s.artifacts == nil {
		return nil, fmt.Errorf("artifact capture requested but no artifact store configured")
	}

	shots := []shot{
		{name + ".png", domain.Region{Width: domain.DesktopViewport.Width, Height: domain.DesktopViewport.Height, Clip: true}},
	}
	if set == domain.ArtifactsAll {
		shots = append(shots, shot{name + "-mobile.png", domain.Region{Width: domain.MobileViewport.Width, Height: domain.MobileViewport.Height}})
	}

	paths := make([]string, 0, len(shots))
	for _, sh := range shots {
		data, err := session.Screenshot(sh.region)
		if err != nil {
			return nil, fmt.Errorf("screenshot %s: %w", sh.file, err)
		}
		path, err := s.artifacts.Put(sh.file, data)
		if err != nil {
			return nil, fmt.Errorf("saving %s: %w", sh.file, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// markerHits tests each marker by text, accessible label, then tooltip.
// Selector errors count as "not found" for that idiom.
func markerHits(session domain.BrowserSession, markers []string) map[string]bool {
	hits := make(map[string]bool, len(markers))
	for _, m := range markers {
		for _, sel := range check.MarkerSelectors(m) {
			if n, err := session.Count(sel); err == nil && n > 0 {
				hits[m] = true
				break
			}
		}
	}
	return hits
}

func landmarkCounts(session domain.BrowserSession, selectors []string) map[string]int {
	counts := make(map[string]int, len(selectors))
	for _, sel := range selectors {
		n, err := session.Count(sel)
		if err != nil {
			continue
		}
		counts[sel] = n
		if n > 0 {
			break
		}
	}
	return counts
}
