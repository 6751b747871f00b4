package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Language
	}{
		{input: "", want: LanguageEnglish},
		{input: "en", want: LanguageEnglish},
		{input: "English", want: LanguageEnglish},
		{input: "cs", want: LanguageCzech},
		{input: "czech", want: LanguageCzech},
		{input: "Česky", want: LanguageCzech},
		{input: "cesky", want: LanguageCzech},
	}

	for _, tc := range tests {
		got, err := ParseLanguage(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}

	_, err := ParseLanguage("klingon")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLanguageIsGiveUp(t *testing.T) {
	t.Parallel()

	assert.True(t, LanguageEnglish.IsGiveUp("I'm loser"))
	assert.True(t, LanguageEnglish.IsGiveUp("  i am   loser! "))
	assert.True(t, LanguageEnglish.IsGiveUp("IM A LOSER"))
	assert.False(t, LanguageEnglish.IsGiveUp("am I a loser?x"))
	assert.True(t, LanguageCzech.IsGiveUp("jsem poražený"))
	assert.False(t, LanguageCzech.IsGiveUp("I'm loser"))
}

func TestLanguageFinalAnswer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "I'm Whale", LanguageEnglish.FinalAnswer("Whale"))
	assert.Equal(t, "Jsem Velryba", LanguageCzech.FinalAnswer("Velryba"))
}
