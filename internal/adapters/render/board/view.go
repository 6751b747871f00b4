package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/gptgame/internal/domain"
)

type RenderOptions struct {
	// Token is shown in the header when set.
	Token          string
	ShowTimestamps bool
}

func renderView(game domain.Game, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Guess who I am"),
		s.header.Render(headerLine(game, opts)),
	}

	if len(game.Records) == 0 && game.Pending == nil {
		lines = append(lines, s.empty.Render("No questions yet."))
	}

	for i, record := range game.Records {
		lines = append(lines, recordLines(i+1, record, opts, s)...)
	}

	if game.Pending != nil {
		lines = append(lines, s.pending.Render(fmt.Sprintf("... waiting for an answer to %q", game.Pending.Text)))
	}

	if game.Error != "" {
		lines = append(lines, s.warning.Render("error: "+game.Error))
	}

	if game.Ended {
		lines = append(lines, s.reveal.Render(revealLine(game)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(game domain.Game, opts RenderOptions) string {
	language := game.Language
	if language == "" {
		language = domain.DefaultLanguage
	}

	parts := []string{
		"language: " + language.Name(),
		fmt.Sprintf("questions: %d", len(game.Records)),
	}
	if opts.Token != "" {
		parts = append(parts, "game: "+opts.Token)
	}

	return strings.Join(parts, " | ")
}

func recordLines(n int, record domain.Record, opts RenderOptions, s styles) []string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		fmt.Sprintf("%2d. ", n),
		s.badge(record.Answer.Verdict).Render(verdictLabel(record.Answer.Verdict)),
		" ",
		s.question.Render(record.Question.Text),
	)
	if opts.ShowTimestamps && !record.Answer.Timestamp.IsZero() {
		line += " " + s.time.Render(record.Answer.Timestamp.Format("15:04:05"))
	}

	lines := []string{line}
	if record.Answer.Comment != "" {
		lines = append(lines, "    "+s.comment.Render(record.Answer.Comment))
	}

	return lines
}

func verdictLabel(verdict domain.Verdict) string {
	if verdict == "" {
		verdict = domain.VerdictNotSet
	}

	return strings.ToUpper(strings.ReplaceAll(string(verdict), "_", " "))
}

func revealLine(game domain.Game) string {
	if game.Identity == "" {
		return "Game over."
	}

	return fmt.Sprintf("Game over. I was %s.", game.Identity)
}
