package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/moolen/sparkmap/internal/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// severityStyle maps a severity to its terminal style.
func severityStyle(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityCritical:
		return criticalStyle
	case models.SeverityWarning:
		return warningStyle
	case models.SeverityInfo:
		return infoStyle
	default:
		return okStyle
	}
}
