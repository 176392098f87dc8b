package check

import (
	"fmt"
	"strings"

	"github.com/stackshot/stackshot/internal/domain"
)

// errorMarkers flag a page that rendered but shows a server-side failure.
var errorMarkers = []string{"error", "not found", "500", "502"}

// defaultLandmarks cover navigation bars, sidebars and main content containers.
var defaultLandmarks = []string{
	"nav",
	".navbar",
	".sidebar",
	".main-content",
	".page-content",
	"#content",
	"main",
}

// Landmarks returns the structural selectors tried for a service: the fixed
// set followed by any service-specific selectors.
func Landmarks(d domain.ServiceDescriptor) []string {
	out := make([]string, 0, len(defaultLandmarks)+len(d.Landmarks))
	out = append(out, defaultLandmarks...)
	for _, l := range d.Landmarks {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// MarkerSelectors returns the selectors that count as "marker present":
// visible text, an accessible label or a tooltip.
func MarkerSelectors(marker string) []string {
	quoted := strings.ReplaceAll(marker, `"`, `\"`)
	return []string{
		"text=" + marker,
		fmt.Sprintf(`[aria-label*="%s"]`, quoted),
		fmt.Sprintf(`[title*="%s"]`, quoted),
	}
}

// Evaluate turns one capture outcome into a Service Verdict. It is a pure
// function; status precedence is skipped, failed capture, error content,
// failed assertion, documented.
func Evaluate(d domain.ServiceDescriptor, o domain.CaptureOutcome, cfg domain.RuleConfig) domain.ServiceVerdict {
	v := domain.ServiceVerdict{
		ServiceName: d.Name,
		Verdicts:    []domain.CheckVerdict{},
		Metadata: domain.ServiceMetadata{
			Description: d.Description,
			Features:    d.Features,
			Address:     d.Address,
		},
	}

	if o.Skipped {
		v.Status = domain.StatusSkipped
		v.Reason = "no web interface"
		return v
	}

	var apiVerdict *domain.CheckVerdict
	if o.API != nil {
		cv := apiCheck(o.API, cfg.APIStatuses)
		apiVerdict = &cv
	}

	if o.Err != nil {
		v.Status = domain.StatusFailed
		v.Reason = o.Err.Message
		v.Verdicts = append(v.Verdicts, domain.CheckVerdict{
			CheckName: domain.CheckLoad,
			Passed:    false,
			Evidence:  map[string]any{"kind": string(o.Err.Kind), "error": o.Err.Message},
		})
		if apiVerdict != nil {
			v.Verdicts = append(v.Verdicts, *apiVerdict)
		}
		return v
	}

	var contentFailure, assertionFailure string

	if r := o.Result; r != nil {
		v.Title = r.Title
		v.FinalURL = r.FinalURL
		v.LoadTimeMs = r.LoadTimeMs
		v.Artifacts = append([]string(nil), r.Artifacts...)

		load := loadCheck(r, cfg.StrictLoad)
		v.Verdicts = append(v.Verdicts, load)
		if !load.Passed {
			assertionFailure = fmt.Sprintf("load: HTTP %d", r.Status)
		}

		content, matched, source := errorContentCheck(r)
		v.Verdicts = append(v.Verdicts, content)
		if !content.Passed {
			contentFailure = fmt.Sprintf("error_content: matched %q in %s", matched, source)
		}

		var structural []domain.CheckVerdict
		if cfg.CheckTitle {
			structural = append(structural, titleCheck(d, r))
		}
		if len(d.ExpectedMarkers) > 0 {
			structural = append(structural, elementsCheck(d, r, cfg.ElementThreshold))
		}
		structural = append(structural, navigationCheck(d, r))
		v.Verdicts = append(v.Verdicts, structural...)

		if cfg.RequireStructuralMatch && assertionFailure == "" {
			for _, cv := range structural {
				if !cv.Passed {
					assertionFailure = cv.CheckName + ": " + describe(cv)
					break
				}
			}
		}

		v.Verdicts = append(v.Verdicts, performanceCheck(r, cfg.PerformanceCeilingMs))
	}

	if apiVerdict != nil {
		v.Verdicts = append(v.Verdicts, *apiVerdict)
		if !apiVerdict.Passed && assertionFailure == "" {
			assertionFailure = domain.CheckAPI + ": " + describe(*apiVerdict)
		}
	}

	switch {
	case contentFailure != "":
		v.Status = domain.StatusError
		v.Reason = contentFailure
	case assertionFailure != "":
		v.Status = domain.StatusFailed
		v.Reason = assertionFailure
	default:
		v.Status = domain.StatusDocumented
	}
	return v
}

func loadCheck(r *domain.CaptureResult, strict bool) domain.CheckVerdict {
	passed := true
	if strict {
		passed = r.Status == 200
	}
	return domain.CheckVerdict{
		CheckName: domain.CheckLoad,
		Passed:    passed,
		Evidence:  map[string]any{"status": r.Status, "strict": strict, "loadTimeMs": r.LoadTimeMs},
	}
}

func errorContentCheck(r *domain.CaptureResult) (domain.CheckVerdict, string, string) {
	title := strings.ToLower(r.Title)
	body := strings.ToLower(r.RawText)
	for _, m := range errorMarkers {
		source := ""
		switch {
		case strings.Contains(title, m):
			source = "title"
		case strings.Contains(body, m):
			source = "body"
		default:
			continue
		}
		return domain.CheckVerdict{
			CheckName: domain.CheckErrorContent,
			Passed:    false,
			Evidence:  map[string]any{"matched": m, "source": source},
		}, m, source
	}
	return domain.CheckVerdict{CheckName: domain.CheckErrorContent, Passed: true}, "", ""
}

func titleCheck(d domain.ServiceDescriptor, r *domain.CaptureResult) domain.CheckVerdict {
	want := d.Label()
	return domain.CheckVerdict{
		CheckName: domain.CheckTitle,
		Passed:    strings.Contains(strings.ToLower(r.Title), strings.ToLower(want)),
		Evidence:  map[string]any{"title": r.Title, "expected": want},
	}
}

func elementsCheck(d domain.ServiceDescriptor, r *domain.CaptureResult, threshold float64) domain.CheckVerdict {
	if threshold <= 0 {
		threshold = domain.DefaultElementThreshold
	}
	found := make([]string, 0, len(d.ExpectedMarkers))
	var missing []string
	for _, m := range d.ExpectedMarkers {
		if r.MarkerHits[m] {
			found = append(found, m)
		} else {
			missing = append(missing, m)
		}
	}
	required := threshold * float64(len(d.ExpectedMarkers))
	return domain.CheckVerdict{
		CheckName: domain.CheckElements,
		Passed:    float64(len(found)) >= required,
		Evidence: map[string]any{
			"found":     len(found),
			"expected":  len(d.ExpectedMarkers),
			"threshold": threshold,
			"present":   found,
			"missing":   missing,
		},
	}
}

func navigationCheck(d domain.ServiceDescriptor, r *domain.CaptureResult) domain.CheckVerdict {
	for _, sel := range Landmarks(d) {
		if n := r.Landmarks[sel]; n > 0 {
			return domain.CheckVerdict{
				CheckName: domain.CheckNavigation,
				Passed:    true,
				Evidence:  map[string]any{"selector": sel, "count": n},
			}
		}
	}
	return domain.CheckVerdict{
		CheckName: domain.CheckNavigation,
		Passed:    false,
		Evidence:  map[string]any{"tried": len(Landmarks(d))},
	}
}

// performanceCheck is informational; it never changes the status.
func performanceCheck(r *domain.CaptureResult, ceilingMs int64) domain.CheckVerdict {
	if ceilingMs <= 0 {
		ceilingMs = domain.DefaultPerformanceCeilingMs
	}
	return domain.CheckVerdict{
		CheckName: domain.CheckPerformance,
		Passed:    r.LoadTimeMs < ceilingMs,
		Evidence:  map[string]any{"loadTimeMs": r.LoadTimeMs, "ceilingMs": ceilingMs},
	}
}

func apiCheck(res *domain.APIResult, accepted []int) domain.CheckVerdict {
	if len(accepted) == 0 {
		accepted = domain.DefaultAPIStatuses
	}
	evidence := map[string]any{"url": res.URL}
	if res.Err != "" {
		evidence["error"] = res.Err
		return domain.CheckVerdict{CheckName: domain.CheckAPI, Passed: false, Evidence: evidence}
	}
	evidence["status"] = res.Status
	passed := false
	for _, s := range accepted {
		if s == res.Status {
			passed = true
			break
		}
	}
	return domain.CheckVerdict{CheckName: domain.CheckAPI, Passed: passed, Evidence: evidence}
}

// describe renders the most useful piece of evidence for a failure line.
func describe(cv domain.CheckVerdict) string {
	e := cv.Evidence
	switch cv.CheckName {
	case domain.CheckTitle:
		return fmt.Sprintf("%q does not mention %q", e["title"], e["expected"])
	case domain.CheckElements:
		return fmt.Sprintf("found %v of %v expected markers", e["found"], e["expected"])
	case domain.CheckNavigation:
		return "no navigation landmark found"
	case domain.CheckAPI:
		if msg, ok := e["error"]; ok {
			return fmt.Sprint(msg)
		}
		return fmt.Sprintf("HTTP %v", e["status"])
	}
	return "failed"
}
