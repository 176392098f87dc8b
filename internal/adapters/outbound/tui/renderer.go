package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stackshot/stackshot/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderSummary formats a finished run for the terminal.
func RenderSummary(r *domain.RunReport, reportPath string) string {
	var b strings.Builder
	m := r.Metadata

	title := headerStyle.Render("stackshot")
	subtitle := dimStyle.Render(fmt.Sprintf("%s · %s suite", m.Mode, m.Suite))
	rate := lipgloss.NewStyle().
		Bold(true).
		Foreground(rateColor(m.SuccessRate)).
		Render(fmt.Sprintf("%d%% documented", m.SuccessRate))
	counts := dimStyle.Render(fmt.Sprintf("%d of %d services", m.DocumentedServices, m.TotalServices))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + rate + "  " + counts))
	b.WriteString("\n\n")

	for _, v := range r.Services {
		b.WriteString(RenderProgress(v))
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	b.WriteString("  " + coloredBar(m.SuccessRate, 40) + "\n\n")
	b.WriteString("  ")
	b.WriteString(passStyle.Render(fmt.Sprintf("%d documented", m.DocumentedServices)))
	if m.FailedServices > 0 {
		b.WriteString("  " + errorTagStyle.Render(fmt.Sprintf("%d failed", m.FailedServices)))
	}
	if m.ErrorServices > 0 {
		b.WriteString("  " + warnTagStyle.Render(fmt.Sprintf("%d error", m.ErrorServices)))
	}
	if m.SkippedServices > 0 {
		b.WriteString("  " + skipStyle.Render(fmt.Sprintf("%d skipped", m.SkippedServices)))
	}
	b.WriteString("\n")

	if failing := failingServices(r); len(failing) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render("Needs attention"), dimStyle.Render(fmt.Sprintf("(%d)", len(failing))))
		for i, v := range failing {
			fmt.Fprintf(&b, "    %d. %s  %s\n", i+1, nameStyle.Render(v.ServiceName), dimStyle.Render(v.Reason))
		}
	}

	b.WriteString("\n")
	if reportPath != "" {
		b.WriteString("  " + dimStyle.Render("report  ") + reportPath + "\n")
	}
	if m.Commit != "" {
		b.WriteString("  " + dimStyle.Render("commit  ") + faintStyle.Render(shortHash(m.Commit)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func failingServices(r *domain.RunReport) []domain.ServiceVerdict {
	var out []domain.ServiceVerdict
	for _, v := range r.Services {
		if !v.Status.Healthy() {
			out = append(out, v)
		}
	}
	return out
}

// RenderProgress formats one verdict as a single glyph-coded status line.
func RenderProgress(v domain.ServiceVerdict) string {
	name := nameStyle.Render(padRight(v.ServiceName, 16))
	line := fmt.Sprintf("  %s %s %s", statusIcon(v.Status), name, statusTag(v.Status))

	if v.LoadTimeMs > 0 {
		line += "  " + dimStyle.Render(fmt.Sprintf("%dms", v.LoadTimeMs))
	}
	if v.Reason != "" && v.Status != domain.StatusSkipped {
		line += "  " + faintStyle.Render(truncate(v.Reason, 60))
	}
	return line + "\n"
}

// RenderRegistry lists the configured services.
func RenderRegistry(services []domain.ServiceDescriptor) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Services") + "  " + dimStyle.Render(fmt.Sprintf("(%d)", len(services))) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, d := range services {
		name := padRight(d.Name, 16)
		if d.Skip {
			fmt.Fprintf(&b, "  %s %s %s\n", skipStyle.Render("○"), skipStyle.Render(name), skipStyle.Render("no web interface"))
			continue
		}
		line := fmt.Sprintf("  %s %s %s", passStyle.Render("●"), nameStyle.Render(name), dimStyle.Render(d.Address))
		if d.APICapable() {
			line += "  " + faintStyle.Render("api "+d.APIPath)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusDocumented:
		return passStyle.Render("✓")
	case domain.StatusError:
		return warnStyle.Render("!")
	case domain.StatusSkipped:
		return skipStyle.Render("-")
	default:
		return failStyle.Render("✗")
	}
}

func statusTag(s domain.Status) string {
	label := padRight(string(s), 10)
	switch s {
	case domain.StatusDocumented:
		return passStyle.Render(label)
	case domain.StatusError:
		return warnTagStyle.Render(label)
	case domain.StatusSkipped:
		return skipStyle.Render(label)
	default:
		return errorTagStyle.Render(label)
	}
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := rateColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func rateColor(rate int) lipgloss.Color {
	switch {
	case rate >= 80:
		return success
	case rate >= 60:
		return lipgloss.Color("#A3E635") // lime
	case rate >= 40:
		return warning
	default:
		return danger
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
