package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/gptgame/internal/adapters/gameapi"
	"github.com/bnema/gptgame/internal/adapters/render/board"
	"github.com/bnema/gptgame/internal/domain"
)

const pendingPollInterval = 200 * time.Millisecond

func newPlayCmd(app *app) *cobra.Command {
	var lang string
	var identity string
	var plain bool
	var timestamps bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game against a running server",
		Long:  "play starts a game and reads one question per line from stdin. Type quit to leave.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			language, err := domain.ParseLanguage(lang)
			if err != nil {
				return err
			}

			p := &player{
				client:     app.gameClient(),
				in:         cmd.InOrStdin(),
				out:        cmd.OutOrStdout(),
				spinnerOut: cmd.ErrOrStderr(),
				plain:      plain,
				render:     board.RenderOptions{ShowTimestamps: timestamps},
			}

			return p.run(cmd.Context(), language, identity)
		},
	}

	cmd.Flags().String("server", "", "Game server URL (default http://"+defaultAddress+")")
	_ = app.config.BindPFlag("play.server", cmd.Flags().Lookup("server"))
	cmd.Flags().StringVar(&lang, "lang", "en", "Game language (en|cs)")
	cmd.Flags().StringVar(&identity, "identity", "", "Play a custom game with this identity")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the wait spinner")
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "Show answer times")

	return cmd
}

type player struct {
	client     *gameapi.Client
	in         io.Reader
	out        io.Writer
	spinnerOut io.Writer
	plain      bool
	render     board.RenderOptions
}

func (p *player) run(ctx context.Context, language domain.Language, identity string) error {
	token, err := p.start(ctx, language, identity)
	if err != nil {
		return err
	}
	p.render.Token = token.String()

	if _, err := fmt.Fprintf(p.out, "New game in %s. Ask yes/no questions, one per line. Type quit to leave.\n", language.Name()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(p.in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if isQuit(text) {
			return nil
		}

		game, err := p.ask(ctx, token, text)
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			_, err = fmt.Fprintf(p.out, "invalid question: %v\n", err)
		case errors.Is(err, domain.ErrBusy):
			_, err = fmt.Fprintln(p.out, "the previous question is still being answered")
		case err != nil:
			return err
		default:
			err = p.show(game)
		}
		if err != nil {
			return err
		}
		if game.Ended {
			return nil
		}
	}

	return scanner.Err()
}

func (p *player) start(ctx context.Context, language domain.Language, identity string) (domain.Token, error) {
	if strings.TrimSpace(identity) != "" {
		return p.client.NewCustomGame(ctx, identity, language)
	}

	return p.client.NewGame(ctx, language)
}

func (p *player) ask(ctx context.Context, token domain.Token, text string) (domain.Game, error) {
	if err := p.client.Ask(ctx, token, text); err != nil {
		return domain.Game{}, err
	}

	var game domain.Game
	wait := func(ctx context.Context) error {
		var err error
		game, err = waitForAnswer(ctx, p.client, token)
		return err
	}

	if p.plain {
		return game, wait(ctx)
	}

	err := runWaitSpinner(ctx, p.spinnerOut, "Waiting for the answer...", wait)
	return game, err
}

func (p *player) show(game domain.Game) error {
	rendered, err := board.Render(game, p.render)
	if err != nil {
		return fmt.Errorf("render board: %w", err)
	}

	_, err = fmt.Fprintln(p.out, rendered)
	return err
}

// waitForAnswer long-polls until the game has no pending question.
func waitForAnswer(ctx context.Context, client *gameapi.Client, token domain.Token) (domain.Game, error) {
	for {
		state, err := client.State(ctx, token, true, false)
		if err != nil && !errors.Is(err, domain.ErrTimeout) {
			return domain.Game{}, err
		}
		if err == nil && state.Status == gameapi.StatusOK && state.Game != nil {
			return *state.Game, nil
		}

		select {
		case <-ctx.Done():
			return domain.Game{}, ctx.Err()
		case <-time.After(pendingPollInterval):
		}
	}
}

func isQuit(text string) bool {
	switch strings.ToLower(text) {
	case "quit", "exit", ":q":
		return true
	default:
		return false
	}
}
