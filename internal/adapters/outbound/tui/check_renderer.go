package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stackshot/stackshot/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderVerdict renders every check of one service with its evidence.
func RenderVerdict(v domain.ServiceVerdict) string {
	var b strings.Builder

	header := titleStyle.Render(v.ServiceName) + "  " + statusTag(v.Status)
	sub := dimStyle.Render(v.Metadata.Address)
	if v.Title != "" {
		sub += "\n" + dimStyle.Render(fmt.Sprintf("%q", v.Title))
	}
	b.WriteString(boxStyle.Render(header + "\n" + sub))
	b.WriteString("\n")

	if v.Reason != "" {
		b.WriteString("\n  " + sectionHeaderStyle.Render("Reason") + "\n")
		b.WriteString("    " + v.Reason + "\n")
	}

	if len(v.Verdicts) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render("Checks"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(v.Verdicts))),
		)
		for _, cv := range v.Verdicts {
			icon := passStyle.Render("●")
			if !cv.Passed {
				icon = failStyle.Render("●")
			}
			fmt.Fprintf(&b, "    %s %s %s\n", icon, padRight(cv.CheckName, 14), faintStyle.Render(formatEvidence(cv.Evidence)))
		}
	}

	if len(v.Artifacts) > 0 {
		b.WriteString("\n  " + sectionHeaderStyle.Render("Artifacts") + "\n")
		for _, a := range v.Artifacts {
			b.WriteString("    " + dimStyle.Render(a) + "\n")
		}
	}

	if err := v.Err(); err != nil {
		b.WriteString("\n")
		b.WriteString("  " + hintStyle.Render(hint(err)+" Re-run with --only "+v.ServiceName+" after fixing it."))
		b.WriteString("\n")
	}
	return b.String()
}

func hint(err error) string {
	switch {
	case errors.Is(err, domain.ErrNavigationTimeout):
		return "The page did not settle in time; a longer --timeout may help."
	case errors.Is(err, domain.ErrNavigation):
		return "The service is unreachable; check that its container is running."
	case errors.Is(err, domain.ErrContentIndicatesError):
		return "The service answered with an error page."
	default:
		return "The page loaded but did not look like the service."
	}
}

// formatEvidence renders evidence as sorted key=value pairs.
func formatEvidence(e map[string]any) string {
	if len(e) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e[k]))
	}
	return truncate(strings.Join(parts, " "), 70)
}
