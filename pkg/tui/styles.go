package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/mimic/pkg/narrative"
	"github.com/dd0wney/mimic/pkg/simulation"
)

var (
	colorGreen  = lipgloss.Color("#00FF00")
	colorOrange = lipgloss.Color("#FFA500")
	colorRed    = lipgloss.Color("#FF0000")
	colorBlue   = lipgloss.Color("#00BFFF")
	colorGold   = lipgloss.Color("#FFD700")
	colorIdle   = lipgloss.Color("#1E90FF")
	colorDim    = lipgloss.Color("#555555")
	colorMuted  = lipgloss.Color("#AAAAAA")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorGreen).
			Padding(0, 1).
			MarginRight(1)

	graphBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1A1E24")).
			Padding(0, 1)

	actionOnStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	actionOffStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

var severityStyles = map[narrative.Severity]lipgloss.Style{
	narrative.System:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
	narrative.Info:    lipgloss.NewStyle().Foreground(colorBlue),
	narrative.Warning: lipgloss.NewStyle().Foreground(colorOrange),
	narrative.Success: lipgloss.NewStyle().Foreground(colorGreen),
	narrative.Error:   lipgloss.NewStyle().Foreground(colorRed),
}

func levelStyle(l simulation.Level) lipgloss.Style {
	switch l {
	case simulation.Elevated:
		return lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	case simulation.Active:
		return lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	}
}
