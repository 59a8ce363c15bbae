package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleHeader = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleReady = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	styleAlert = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Farm grid and side panel styles.
var (
	styleCell = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(cellInnerWidth).
			Height(cellInnerHeight)

	styleCellEmpty   = styleCell.BorderForeground(lipgloss.Color("238")).Foreground(lipgloss.Color("240"))
	styleCellGrowing = styleCell.BorderForeground(lipgloss.Color("34")).Foreground(lipgloss.Color("114"))
	styleCellReady   = styleCell.BorderForeground(lipgloss.Color("220")).Foreground(lipgloss.Color("228")).Bold(true)

	stylePanelHead = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleButton = lipgloss.NewStyle().
			Background(lipgloss.Color("94")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	styleButtonOff = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("245"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindReady
	kindSuccess
	kindAlert
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Pest attack!"),
		strings.HasPrefix(line, "Refining failed"):
		return kindAlert
	case strings.HasPrefix(line, "Refining succeeded"),
		strings.HasPrefix(line, "Harvested"):
		return kindSuccess
	case strings.Contains(line, "is ready for harvest"):
		return kindReady
	case strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You need"),
		strings.HasPrefix(line, "There is no"),
		strings.HasPrefix(line, "Unknown flame"),
		strings.HasPrefix(line, "I don't know"):
		return kindError
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindReady:
		return styleReady.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindAlert:
		return styleAlert.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
