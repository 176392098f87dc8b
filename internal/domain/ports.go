package domain

import (
	"context"
	"time"
)

// Browser opens isolated browsing sessions. Implementations wrap a concrete
// automation engine.
type Browser interface {
	NewSession(ctx context.Context, viewport Viewport) (BrowserSession, error)
}

// BrowserSession is one isolated browsing context with a single page.
// Close must be safe to call after any failure.
type BrowserSession interface {
	// Navigate blocks until the wait policy is satisfied, the timeout elapses
	// (an error wrapping ErrNavigationTimeout) or navigation fails.
	Navigate(ctx context.Context, url string, wait WaitPolicy, timeout time.Duration) (NavigationOutcome, error)
	Title() (string, error)
	CurrentURL() string
	BodyText() (string, error)
	// Count returns how many elements match a selector. Selectors prefixed
	// with "text=" match elements by visible text, case-insensitively.
	Count(selector string) (int, error)
	Screenshot(region Region) ([]byte, error)
	Close() error
}

// ArtifactStore persists captured images and returns their paths.
type ArtifactStore interface {
	Put(name string, data []byte) (string, error)
}

// StatusProber performs the out-of-band API status request.
type StatusProber interface {
	Probe(ctx context.Context, baseURL, path, apiKey string) APIResult
}

// APIKeySource resolves the API key for a service, if one is configured.
type APIKeySource interface {
	APIKey(d ServiceDescriptor) (string, error)
}

// RegistryLoader loads the service registry.
type RegistryLoader interface {
	Load(path string) (*Registry, error)
}

// ConfigLoader loads run configuration overrides. Unset fields mean "use the
// mode default"; see ResolveConfig.
type ConfigLoader interface {
	Load(path string) (RunConfig, error)
}

// ReportWriter persists the run report atomically.
type ReportWriter interface {
	Write(path string, report *RunReport) error
}

// GitInfo resolves the commit the registry was loaded from.
type GitInfo interface {
	CommitHash(path string) (string, error)
}

// ProgressSink receives each Service Verdict as soon as it is final.
type ProgressSink interface {
	ServiceDone(index, total int, v ServiceVerdict)
}
