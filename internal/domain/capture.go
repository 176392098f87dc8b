package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// WaitPolicy tells the browser when a navigation counts as complete.
type WaitPolicy string

const (
	WaitNetworkIdle WaitPolicy = "networkidle"
	WaitDOMReady    WaitPolicy = "domcontentloaded"
	WaitLoad        WaitPolicy = "load"
)

// Viewport is a browser window size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

var (
	DesktopViewport = Viewport{Width: 1200, Height: 800}
	MobileViewport  = Viewport{Width: 375, Height: 667}
)

// Region selects what a screenshot captures. Clip crops the full page to
// Width x Height from the top-left corner; otherwise the viewport is resized
// to Width x Height and only the visible area is captured.
type Region struct {
	Width  int
	Height int
	Clip   bool
}

// NavigationOutcome is what the browser reports about the main document response.
// Status is 0 when the engine could not observe a response.
type NavigationOutcome struct {
	Status int
}

// CaptureResult is the transient data captured from one successful navigation.
type CaptureResult struct {
	Title      string
	FinalURL   string
	Status     int
	LoadTimeMs int64
	RawText    string
	MarkerHits map[string]bool
	Landmarks  map[string]int
	Artifacts  []string
}

// CaptureKind classifies a failed capture.
type CaptureKind string

const (
	KindTimeout CaptureKind = "timeout"
	KindNetwork CaptureKind = "network"
)

// CaptureError describes why a capture produced no result.
type CaptureError struct {
	Kind    CaptureKind
	Message string
	Err     error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// NewCaptureError classifies err as a timeout or a network failure.
func NewCaptureError(err error) *CaptureError {
	kind := KindNetwork
	if errors.Is(err, ErrNavigationTimeout) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &CaptureError{Kind: kind, Message: firstLine(err.Error()), Err: err}
}

// APIResult is the outcome of the out-of-band status endpoint request.
type APIResult struct {
	URL    string
	Status int
	Err    string
}

// CaptureOutcome is everything the rule engine sees for one service.
// Exactly one of Skipped, Result or Err describes the browser phase; Result and
// Err are both nil when the suite ran no browser checks. API is nil when no
// API check ran.
type CaptureOutcome struct {
	Skipped bool
	Result  *CaptureResult
	Err     *CaptureError
	API     *APIResult
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
