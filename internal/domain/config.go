package domain

import (
	"fmt"
	"time"
)

// Mode selects one of the capture profiles the engine supports.
type Mode string

const (
	ModeFullDocumentation Mode = "full-documentation"
	ModeQuickTriage       Mode = "quick-triage"
	ModeStrictValidation  Mode = "strict-validation"
)

// ValidModes enumerates all recognized modes.
var ValidModes = []Mode{ModeFullDocumentation, ModeQuickTriage, ModeStrictValidation}

// Suite is a named subset of check families selected at invocation time.
type Suite string

const (
	SuiteWeb Suite = "web"
	SuiteAPI Suite = "api"
	SuiteAll Suite = "all"
)

// ValidSuites enumerates all recognized suites.
var ValidSuites = []Suite{SuiteWeb, SuiteAPI, SuiteAll}

// RunsWeb reports whether browser checks are part of the suite.
func (s Suite) RunsWeb() bool { return s == SuiteWeb || s == SuiteAll }

// RunsAPI reports whether the API endpoint check is part of the suite.
func (s Suite) RunsAPI() bool { return s == SuiteAPI || s == SuiteAll }

// ArtifactSet selects which screenshots a capture takes.
type ArtifactSet string

const (
	ArtifactsNone    ArtifactSet = "none"
	ArtifactsDesktop ArtifactSet = "desktop"
	ArtifactsAll     ArtifactSet = "desktop+mobile"
)

var validArtifactSets = []ArtifactSet{ArtifactsNone, ArtifactsDesktop, ArtifactsAll}

var validWaitPolicies = []WaitPolicy{WaitNetworkIdle, WaitDOMReady, WaitLoad}

// Default thresholds shared by every mode unless overridden.
const (
	DefaultElementThreshold     = 0.5
	DefaultPerformanceCeilingMs = 5000
	DefaultAPITimeoutMs         = 5000
	DefaultReportPath           = "docs/service-registry.json"
	DefaultArtifactDir          = "docs/public/images/services"
)

// DefaultAPIStatuses are the status codes that prove a service speaks its
// protocol: 401 is alive but guarded, 404 is alive with a different API version.
var DefaultAPIStatuses = []int{200, 401, 404}

// RunConfig holds run-level configuration loaded from .stackshot.yaml and flags.
type RunConfig struct {
	Mode                   Mode        `yaml:"mode"                     json:"mode,omitempty"`
	Suite                  Suite       `yaml:"suite"                    json:"suite,omitempty"`
	Engine                 string      `yaml:"engine"                   json:"engine,omitempty"`
	TimeoutMs              int         `yaml:"timeout_ms"               json:"timeout_ms,omitempty"`
	WaitPolicy             WaitPolicy  `yaml:"wait_policy"              json:"wait_policy,omitempty"`
	StrictLoad             *bool       `yaml:"strict_load"              json:"strict_load,omitempty"`
	RequireStructuralMatch *bool       `yaml:"require_structural_match" json:"require_structural_match,omitempty"`
	CheckTitle             *bool       `yaml:"check_title"              json:"check_title,omitempty"`
	ElementThreshold       float64     `yaml:"element_threshold"        json:"element_threshold,omitempty"`
	PerformanceCeilingMs   int         `yaml:"performance_ceiling_ms"   json:"performance_ceiling_ms,omitempty"`
	PacingMs               *int        `yaml:"pacing_ms"                json:"pacing_ms,omitempty"`
	Artifacts              ArtifactSet `yaml:"artifacts"                json:"artifacts,omitempty"`
	ArtifactDir            string      `yaml:"artifact_dir"             json:"artifact_dir,omitempty"`
	ReportPath             string      `yaml:"report_path"              json:"report_path,omitempty"`
	APIStatuses            []int       `yaml:"api_statuses"             json:"api_statuses,omitempty"`
	APITimeoutMs           int         `yaml:"api_timeout_ms"           json:"api_timeout_ms,omitempty"`
}

// DefaultConfig returns the full-documentation profile with suite all.
func DefaultConfig() RunConfig {
	return DefaultConfigForMode(ModeFullDocumentation)
}

// DefaultConfigForMode returns the defaults for one capture profile.
func DefaultConfigForMode(m Mode) RunConfig {
	cfg := RunConfig{
		Mode:                 m,
		Suite:                SuiteAll,
		Engine:               "playwright",
		ElementThreshold:     DefaultElementThreshold,
		PerformanceCeilingMs: DefaultPerformanceCeilingMs,
		ArtifactDir:          DefaultArtifactDir,
		ReportPath:           DefaultReportPath,
		APIStatuses:          append([]int(nil), DefaultAPIStatuses...),
		APITimeoutMs:         DefaultAPITimeoutMs,
	}

	switch m {
	case ModeQuickTriage:
		cfg.TimeoutMs = 5000
		cfg.WaitPolicy = WaitDOMReady
		cfg.StrictLoad = boolPtr(false)
		cfg.RequireStructuralMatch = boolPtr(false)
		cfg.CheckTitle = boolPtr(false)
		cfg.PacingMs = intPtr(1000)
		cfg.Artifacts = ArtifactsNone

	case ModeStrictValidation:
		cfg.TimeoutMs = 10000
		cfg.WaitPolicy = WaitDOMReady
		cfg.StrictLoad = boolPtr(true)
		cfg.RequireStructuralMatch = boolPtr(true)
		cfg.CheckTitle = boolPtr(true)
		cfg.PacingMs = intPtr(1000)
		cfg.Artifacts = ArtifactsNone

	default: // full-documentation or unrecognized
		cfg.Mode = ModeFullDocumentation
		cfg.TimeoutMs = 15000
		cfg.WaitPolicy = WaitNetworkIdle
		cfg.StrictLoad = boolPtr(false)
		cfg.RequireStructuralMatch = boolPtr(false)
		cfg.CheckTitle = boolPtr(true)
		cfg.PacingMs = intPtr(2000)
		cfg.Artifacts = ArtifactsAll
	}

	return cfg
}

// Validate checks the config for invalid values and returns a descriptive error.
// Zero values are allowed; they mean "use the mode default".
func (c RunConfig) Validate() error {
	if c.Mode != "" && !contains(ValidModes, c.Mode) {
		return fmt.Errorf("unknown mode %q (valid: full-documentation, quick-triage, strict-validation)", c.Mode)
	}
	if c.Suite != "" && !contains(ValidSuites, c.Suite) {
		return fmt.Errorf("unknown suite %q (valid: web, api, all)", c.Suite)
	}
	if c.Engine != "" && c.Engine != "playwright" && c.Engine != "http" {
		return fmt.Errorf("unknown engine %q (valid: playwright, http)", c.Engine)
	}
	if c.WaitPolicy != "" && !contains(validWaitPolicies, c.WaitPolicy) {
		return fmt.Errorf("unknown wait_policy %q (valid: networkidle, domcontentloaded, load)", c.WaitPolicy)
	}
	if c.Artifacts != "" && !contains(validArtifactSets, c.Artifacts) {
		return fmt.Errorf("unknown artifacts %q (valid: none, desktop, desktop+mobile)", c.Artifacts)
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must be >= 0 (got %d)", c.TimeoutMs)
	}
	if c.ElementThreshold < 0 || c.ElementThreshold > 1 {
		return fmt.Errorf("element_threshold must be between 0.0 and 1.0 (got %.2f)", c.ElementThreshold)
	}
	if c.PerformanceCeilingMs < 0 {
		return fmt.Errorf("performance_ceiling_ms must be >= 0 (got %d)", c.PerformanceCeilingMs)
	}
	if c.PacingMs != nil && *c.PacingMs < 0 {
		return fmt.Errorf("pacing_ms must be >= 0 (got %d)", *c.PacingMs)
	}
	if c.APITimeoutMs < 0 {
		return fmt.Errorf("api_timeout_ms must be >= 0 (got %d)", c.APITimeoutMs)
	}
	for _, s := range c.APIStatuses {
		if s < 100 || s > 599 {
			return fmt.Errorf("api_statuses contains invalid HTTP status %d", s)
		}
	}
	return nil
}

// ResolveConfig applies overrides on top of the defaults of the mode they
// select, so a mode chosen in the file or on the command line brings its own
// timeout, wait policy and pacing unless those are overridden too.
func ResolveConfig(overrides RunConfig) RunConfig {
	return DefaultConfigForMode(overrides.Mode).Merge(overrides)
}

// Merge overlays explicit (non-zero) values from override on top of c.
func (c RunConfig) Merge(override RunConfig) RunConfig {
	result := c
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Suite != "" {
		result.Suite = override.Suite
	}
	if override.Engine != "" {
		result.Engine = override.Engine
	}
	if override.TimeoutMs > 0 {
		result.TimeoutMs = override.TimeoutMs
	}
	if override.WaitPolicy != "" {
		result.WaitPolicy = override.WaitPolicy
	}
	if override.StrictLoad != nil {
		result.StrictLoad = override.StrictLoad
	}
	if override.RequireStructuralMatch != nil {
		result.RequireStructuralMatch = override.RequireStructuralMatch
	}
	if override.CheckTitle != nil {
		result.CheckTitle = override.CheckTitle
	}
	if override.ElementThreshold > 0 {
		result.ElementThreshold = override.ElementThreshold
	}
	if override.PerformanceCeilingMs > 0 {
		result.PerformanceCeilingMs = override.PerformanceCeilingMs
	}
	if override.PacingMs != nil {
		result.PacingMs = override.PacingMs
	}
	if override.Artifacts != "" {
		result.Artifacts = override.Artifacts
	}
	if override.ArtifactDir != "" {
		result.ArtifactDir = override.ArtifactDir
	}
	if override.ReportPath != "" {
		result.ReportPath = override.ReportPath
	}
	// Explicit status lists replace the defaults entirely.
	if len(override.APIStatuses) > 0 {
		result.APIStatuses = override.APIStatuses
	}
	if override.APITimeoutMs > 0 {
		result.APITimeoutMs = override.APITimeoutMs
	}
	return result
}

// Timeout returns the hard navigation timeout.
func (c RunConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Pacing returns the delay enforced between consecutive services.
func (c RunConfig) Pacing() time.Duration {
	if c.PacingMs == nil {
		return 0
	}
	return time.Duration(*c.PacingMs) * time.Millisecond
}

// APITimeout returns the timeout for the status endpoint request.
func (c RunConfig) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMs) * time.Millisecond
}

// Rules derives the rule engine configuration.
func (c RunConfig) Rules() RuleConfig {
	return RuleConfig{
		StrictLoad:             deref(c.StrictLoad),
		RequireStructuralMatch: deref(c.RequireStructuralMatch),
		CheckTitle:             deref(c.CheckTitle),
		ElementThreshold:       c.ElementThreshold,
		PerformanceCeilingMs:   int64(c.PerformanceCeilingMs),
		APIStatuses:            c.APIStatuses,
	}
}

// RuleConfig parameterizes the validation rule engine.
type RuleConfig struct {
	StrictLoad             bool
	RequireStructuralMatch bool
	CheckTitle             bool
	ElementThreshold       float64
	PerformanceCeilingMs   int64
	APIStatuses            []int
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func deref(b *bool) bool { return b != nil && *b }
