package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	MaxQuestionBytes    = 120
	MinQuestionNonSpace = 5
)

func ValidateQuestion(text string) error {
	if len(text) > MaxQuestionBytes {
		return fmt.Errorf("question longer than %d bytes: %w", MaxQuestionBytes, ErrInvalidInput)
	}

	nonSpace := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			nonSpace++
		}
	}
	if nonSpace < MinQuestionNonSpace {
		return fmt.Errorf("question needs at least %d non-space characters: %w", MinQuestionNonSpace, ErrInvalidInput)
	}

	return nil
}

// WrapQuestion frames player text for the AI service. Brackets are replaced so
// the player cannot close the frame early.
func WrapQuestion(text string) string {
	replaced := strings.NewReplacer("[", "/", "]", "/").Replace(text)
	return "question: [" + replaced + "]"
}
