package domain

import (
	"fmt"
	"strings"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageCzech   Language = "cs"

	DefaultLanguage = LanguageEnglish
)

func Languages() []Language {
	return []Language{LanguageEnglish, LanguageCzech}
}

// ParseLanguage accepts short codes and a few spelled-out names. An empty
// string selects DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLanguage, nil
	case "en", "english":
		return LanguageEnglish, nil
	case "cs", "czech", "česky", "cesky":
		return LanguageCzech, nil
	default:
		return "", fmt.Errorf("unsupported language %q: %w", s, ErrInvalidInput)
	}
}

// Name is the language name as it is written into AI instructions.
func (l Language) Name() string {
	switch l {
	case LanguageCzech:
		return "Czech"
	default:
		return "English"
	}
}

func (l Language) FinalAnswer(identity string) string {
	switch l {
	case LanguageCzech:
		return fmt.Sprintf("Jsem %s", identity)
	default:
		return fmt.Sprintf("I'm %s", identity)
	}
}

var giveUpPhrases = map[Language][]string{
	LanguageEnglish: {"IM LOSER", "I AM LOSER", "IM A LOSER"},
	LanguageCzech:   {"JSEM PORAŽENÝ", "JÁ JSEM PORAŽENÝ", "JSEM NEÚSPĚŠNÝ"},
}

// IsGiveUp reports whether text is one of the phrases a player types to end
// the game and reveal the identity. Case, punctuation and repeated spaces are
// ignored.
func (l Language) IsGiveUp(text string) bool {
	normalized := normalizePhrase(text)
	for _, phrase := range giveUpPhrases[l] {
		if normalized == phrase {
			return true
		}
	}

	return false
}

func normalizePhrase(text string) string {
	text = strings.ToUpper(text)
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\'', '’', '.', ',', '!', '?':
			return -1
		}
		return r
	}, text)

	return strings.Join(strings.Fields(text), " ")
}
