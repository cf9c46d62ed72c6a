package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette of the evaluation form. Colors are ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	Star       lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Border     lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Accent:     lipgloss.Color("39"),
	Star:       lipgloss.Color("220"),
	Error:      lipgloss.Color("203"),
	Success:    lipgloss.Color("78"),
	Border:     lipgloss.Color("240"),
}

type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	faint    lipgloss.Style
	star     lipgloss.Style
	selected lipgloss.Style
	err      lipgloss.Style
	success  lipgloss.Style
	panel    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		label:    lipgloss.NewStyle().Foreground(t.NormalText),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		faint:    lipgloss.NewStyle().Foreground(t.FaintText),
		star:     lipgloss.NewStyle().Foreground(t.Star),
		selected: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(t.Accent),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		success:  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
	}
}
