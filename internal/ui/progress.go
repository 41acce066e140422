package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// Step represents a single step in a multi-step operation
type Step struct {
	Name    string
	Status  StepStatus
	Message string // e.g., "HTTP 200", "192.168.1.23"
}

// Progress is a bar plus a step list for operations such as
// `thermactl provision`.
type Progress struct {
	Label string
	Steps []Step
	Width int
	bar   progress.Model
}

// NewProgress creates a progress display with one pending step per name.
func NewProgress(label string, names ...string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Name: name}
	}
	p := &Progress{Label: label, Steps: steps}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// Update sets a step's status. Step numbers are 1-based; out-of-range
// numbers are ignored.
func (p *Progress) Update(step int, status StepStatus, message string) {
	if step < 1 || step > len(p.Steps) {
		return
	}
	p.Steps[step-1].Status = status
	p.Steps[step-1].Message = message
}

// Start marks a step as running
func (p *Progress) Start(step int, message string) { p.Update(step, StepRunning, message) }

// Complete marks a step as complete
func (p *Progress) Complete(step int, message string) { p.Update(step, StepComplete, message) }

// Fail marks a step as failed
func (p *Progress) Fail(step int, message string) { p.Update(step, StepFailed, message) }

// Skip marks a step as skipped
func (p *Progress) Skip(step int, message string) { p.Update(step, StepSkipped, message) }

// Percent is the share of steps that are complete or skipped.
func (p *Progress) Percent() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			done++
		}
	}
	return float64(done) / float64(len(p.Steps))
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(
		fmt.Sprintf("%s  %3.0f%%", p.bar.ViewAs(p.Percent()), p.Percent()*100)))
	b.WriteString("\n\n")

	lines := make([]string, 0, len(p.Steps))
	for i, s := range p.Steps {
		lines = append(lines, p.renderStep(i+1, s))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (p *Progress) renderStep(n int, step Step) string {
	marker, style := StepMarkerPending, StepPendingStyle
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker = StepMarkerSkipped
	}

	pad := 40 - lipgloss.Width(step.Name)
	if pad < 1 {
		pad = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", n, len(p.Steps))
	b.WriteString(style.Render(step.Name))
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(style.Render(marker))
	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}
