package domain

import (
	"fmt"
	"math"
	"time"
)

// Status is the terminal state of one service in a run.
type Status string

const (
	StatusDocumented Status = "documented"
	StatusSkipped    Status = "skipped"
	StatusError      Status = "error"
	StatusFailed     Status = "failed"
)

// Healthy reports whether the status does not count against the run.
func (s Status) Healthy() bool {
	return s == StatusDocumented || s == StatusSkipped
}

// Check names, in the order verdicts appear in a Service Verdict.
const (
	CheckLoad         = "load"
	CheckErrorContent = "error_content"
	CheckTitle        = "title"
	CheckElements     = "elements"
	CheckNavigation   = "navigation"
	CheckPerformance  = "performance"
	CheckAPI          = "api"
)

// CheckVerdict is the outcome of one assertion with supporting evidence.
type CheckVerdict struct {
	CheckName string         `json:"checkName"`
	Passed    bool           `json:"passed"`
	Evidence  map[string]any `json:"evidence,omitempty"`
}

// ServiceMetadata is copied from the descriptor for downstream display.
type ServiceMetadata struct {
	Description string `json:"description,omitempty"`
	Features    string `json:"features,omitempty"`
	Address     string `json:"address"`
}

// ServiceVerdict aggregates every check for one service.
type ServiceVerdict struct {
	ServiceName string          `json:"serviceName"`
	Status      Status          `json:"status"`
	Title       string          `json:"title,omitempty"`
	FinalURL    string          `json:"finalUrl,omitempty"`
	LoadTimeMs  int64           `json:"loadTimeMs,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Artifacts   []string        `json:"artifacts,omitempty"`
	Verdicts    []CheckVerdict  `json:"verdicts"`
	Metadata    ServiceMetadata `json:"metadata"`
}

// Verdict returns the named check verdict, if it ran.
func (v ServiceVerdict) Verdict(name string) (CheckVerdict, bool) {
	for _, cv := range v.Verdicts {
		if cv.CheckName == name {
			return cv, true
		}
	}
	return CheckVerdict{}, false
}

// Err classifies an unhealthy verdict: ErrContentIndicatesError for error
// pages, ErrNavigationTimeout or ErrNavigation when the page never loaded, and
// ErrCheckAssertion for everything else. Healthy verdicts return nil. It works
// on verdicts read back from a report too.
func (v ServiceVerdict) Err() error {
	var cause error
	switch v.Status {
	case StatusError:
		cause = ErrContentIndicatesError
	case StatusFailed:
		cause = ErrCheckAssertion
		if load, ok := v.Verdict(CheckLoad); ok && !load.Passed {
			switch load.Evidence["kind"] {
			case string(KindTimeout):
				cause = ErrNavigationTimeout
			case string(KindNetwork):
				cause = ErrNavigation
			}
		}
	default:
		return nil
	}
	if v.Reason == "" {
		return fmt.Errorf("%s: %w", v.ServiceName, cause)
	}
	return fmt.Errorf("%s: %w: %s", v.ServiceName, cause, v.Reason)
}

// ReportMetadata summarizes a run.
type ReportMetadata struct {
	RunID              string    `json:"runId"`
	CapturedAt         time.Time `json:"capturedAt"`
	Mode               Mode      `json:"mode"`
	Suite              Suite     `json:"suite"`
	Engine             string    `json:"engine,omitempty"`
	Commit             string    `json:"commit,omitempty"`
	DurationMs         int64     `json:"durationMs"`
	DocumentedServices int       `json:"documentedServices"`
	WorkingServices    int       `json:"workingServices"`
	FailedServices     int       `json:"failedServices"`
	ErrorServices      int       `json:"errorServices"`
	SkippedServices    int       `json:"skippedServices"`
	TotalServices      int       `json:"totalServices"`
	SuccessRate        int       `json:"successRate"`
	ArtifactDir        string    `json:"artifactDir,omitempty"`
}

// RunReport is the complete, persisted outcome of one invocation.
type RunReport struct {
	Metadata ReportMetadata   `json:"metadata"`
	Services []ServiceVerdict `json:"services"`
}

// HasFailures reports whether any evaluated service ended failed or error.
func (r *RunReport) HasFailures() bool {
	for _, s := range r.Services {
		if !s.Status.Healthy() {
			return true
		}
	}
	return false
}

// SuccessRate returns documented/total as a whole percentage, rounded half
// away from zero. 6 of 7 is 86.
func SuccessRate(documented, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(documented) / float64(total) * 100))
}
