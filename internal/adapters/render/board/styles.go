package board

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/gptgame/internal/domain"
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	question lipgloss.Style
	comment  lipgloss.Style
	pending  lipgloss.Style
	warning  lipgloss.Style
	reveal   lipgloss.Style
	empty    lipgloss.Style
	time     lipgloss.Style
	badges   map[domain.Verdict]lipgloss.Style
}

func newStyles() styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		question: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		comment:  lipgloss.NewStyle().Faint(true).Italic(true),
		pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		reveal:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		time:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		badges: map[domain.Verdict]lipgloss.Style{
			domain.VerdictYes:    badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("78")),
			domain.VerdictNo:     badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("203")),
			domain.VerdictUnable: badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("250")),
			domain.VerdictFinal:  badge.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("39")),
			domain.VerdictNotSet: badge.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
		},
	}
}

func (s styles) badge(verdict domain.Verdict) lipgloss.Style {
	if style, ok := s.badges[verdict]; ok {
		return style
	}

	return s.badges[domain.VerdictNotSet]
}
