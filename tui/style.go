package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleGain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleWelcome = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindPlain lineKind = iota
	kindSystem
	kindGain
	kindError
	kindWelcome
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return kindSystem
	case strings.HasPrefix(trimmed, "+"):
		return kindGain
	case strings.HasPrefix(trimmed, "Can't"),
		strings.HasPrefix(trimmed, "No such"),
		strings.HasPrefix(trimmed, "Bad "),
		strings.HasPrefix(trimmed, "Unknown command"):
		return kindError
	case strings.HasPrefix(trimmed, "Welcome back"):
		return kindWelcome
	default:
		return kindPlain
	}
}

func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindSystem:
		return styleSystem.Render(line)
	case kindGain:
		return styleGain.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindWelcome:
		return styleWelcome.Render(line)
	default:
		return stylePlain.Render(line)
	}
}
