package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title   lipgloss.Style
	Intro   lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
	Metric  lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Sidebar lipgloss.Style
}

func DefaultStyles() Styles {
	primary := lipgloss.Color("#7D56F4")
	muted := lipgloss.Color("#6C6C6C")

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),
		Intro: lipgloss.NewStyle().
			Italic(true).
			MarginBottom(1),
		Label: lipgloss.NewStyle().
			Width(40),
		Focused: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Width(40),
		Metric: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 2).
			MarginRight(2),
		Value: lipgloss.NewStyle().
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#09AB3B")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF2B2B")),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(muted).
			PaddingLeft(2).
			MarginLeft(4),
	}
}

// RenderResult draws the two labeled outcomes side by side.
func (s Styles) RenderResult(sleepLabel, sleep, stressLabel, stress string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.Metric.Render(sleepLabel+"\n"+s.Value.Render(sleep)),
		s.Metric.Render(stressLabel+"\n"+s.Value.Render(stress)),
	)
}
