package application

import (
	"strings"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

const (
	targetPlaceholder   = "{target}"
	languagePlaceholder = "{language}"
)

func buildOracleRequest(template, identity string, language domain.Language, question string) ports.OracleRequest {
	instructions := strings.NewReplacer(
		targetPlaceholder, identity,
		languagePlaceholder, language.Name(),
	).Replace(template)

	return ports.OracleRequest{
		Instructions: instructions,
		Input:        domain.WrapQuestion(question),
	}
}
