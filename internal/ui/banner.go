package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderModeBanner renders the console indicator's one-box summary of a
// device mode.
func RenderModeBanner(product, mode string, details ...Field) string {
	lines := []string{HeaderTitleStyle.Render(strings.ToUpper(product)) + "  " + ModeBadge(mode)}
	for _, d := range details {
		lines = append(lines, HeaderParamKeyStyle.Render(d.Key+":")+" "+HeaderParamValueStyle.Render(d.Value))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ModeColor(mode)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// RenderResetBanner renders the factory reset visual.
func RenderResetBanner(product string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Foreground(ErrorColor).
		Bold(true).
		Padding(1, 4).
		Render(strings.ToUpper(product) + "  ─  FACTORY RESET\nErasing stored configuration and restarting")
}
