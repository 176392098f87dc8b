package domain

import "time"

// Counts are the running totals of a run.
type Counts struct {
	Documented int `json:"documented"`
	Failed     int `json:"failed"`
	Errored    int `json:"errored"`
	Skipped    int `json:"skipped"`
	Total      int `json:"total"`
}

// Passed is the number of services that did not count against the run.
func (c Counts) Passed() int { return c.Documented + c.Skipped }

// FailedCheck names one failing check of one service.
type FailedCheck struct {
	ServiceName string
	Check       CheckVerdict
}

// Aggregator accumulates Service Verdicts for a single run. It never
// re-derives a status; it only counts and filters what it was given.
type Aggregator struct {
	verdicts []ServiceVerdict
	counts   Counts
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add appends a verdict in evaluation order.
func (a *Aggregator) Add(v ServiceVerdict) {
	a.verdicts = append(a.verdicts, v)
	a.counts.Total++
	switch v.Status {
	case StatusDocumented:
		a.counts.Documented++
	case StatusFailed:
		a.counts.Failed++
	case StatusError:
		a.counts.Errored++
	case StatusSkipped:
		a.counts.Skipped++
	}
}

// Counts returns the running totals.
func (a *Aggregator) Counts() Counts { return a.counts }

// Verdicts returns a copy of all verdicts in evaluation order.
func (a *Aggregator) Verdicts() []ServiceVerdict {
	return append([]ServiceVerdict(nil), a.verdicts...)
}

// Filter returns the verdicts matching keep, in evaluation order.
func (a *Aggregator) Filter(keep func(ServiceVerdict) bool) []ServiceVerdict {
	var out []ServiceVerdict
	for _, v := range a.verdicts {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Documented returns only the documented services.
func (a *Aggregator) Documented() []ServiceVerdict {
	return a.Filter(func(v ServiceVerdict) bool { return v.Status == StatusDocumented })
}

// Failing returns the services that ended failed or error.
func (a *Aggregator) Failing() []ServiceVerdict {
	return a.Filter(func(v ServiceVerdict) bool { return !v.Status.Healthy() })
}

// FailingChecks flattens every failed check across all services.
func (a *Aggregator) FailingChecks() []FailedCheck {
	var out []FailedCheck
	for _, v := range a.verdicts {
		for _, cv := range v.Verdicts {
			if !cv.Passed {
				out = append(out, FailedCheck{ServiceName: v.ServiceName, Check: cv})
			}
		}
	}
	return out
}

// ReportInfo is the run context the aggregator cannot know by itself.
type ReportInfo struct {
	RunID       string
	CapturedAt  time.Time
	Duration    time.Duration
	Mode        Mode
	Suite       Suite
	Engine      string
	Commit      string
	ArtifactDir string
}

// Report finalizes the run into a Run Report.
func (a *Aggregator) Report(info ReportInfo) *RunReport {
	c := a.counts
	services := a.Verdicts()
	if services == nil {
		services = []ServiceVerdict{}
	}
	return &RunReport{
		Metadata: ReportMetadata{
			RunID:              info.RunID,
			CapturedAt:         info.CapturedAt.UTC(),
			Mode:               info.Mode,
			Suite:              info.Suite,
			Engine:             info.Engine,
			Commit:             info.Commit,
			DurationMs:         info.Duration.Milliseconds(),
			DocumentedServices: c.Documented,
			WorkingServices:    c.Documented,
			FailedServices:     c.Failed,
			ErrorServices:      c.Errored,
			SkippedServices:    c.Skipped,
			TotalServices:      c.Total,
			SuccessRate:        SuccessRate(c.Documented, c.Total),
			ArtifactDir:        info.ArtifactDir,
		},
		Services: services,
	}
}
