package toml

import (
	"fmt"
	"strings"
)

const currentSchemaVersion = 1

type catalogSchema struct {
	Version      int                 `toml:"version"`
	Instructions string              `toml:"instructions,multiline"`
	Identities   map[string][]string `toml:"identities"`
	// IdentityFiles points to plain text lists, one identity per line, with
	// '#' comments. Relative paths resolve against the catalog file.
	IdentityFiles map[string]string `toml:"identity_files,omitempty"`
}

func (s *catalogSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if strings.TrimSpace(s.Instructions) == "" {
		s.Instructions = defaultInstructions
	}
	if s.Identities == nil {
		s.Identities = map[string][]string{}
	}
}

func (s catalogSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported catalog schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func defaultSchema() catalogSchema {
	identities := make(map[string][]string, len(defaultIdentities))
	for language, list := range defaultIdentities {
		identities[language] = append([]string(nil), list...)
	}

	return catalogSchema{
		Version:      currentSchemaVersion,
		Instructions: defaultInstructions,
		Identities:   identities,
	}
}

const defaultInstructions = `You are {target}. The player is trying to guess who or what you are by asking yes or no questions.
Always reply in {language}.
Start every reply with exactly one verdict word followed by a semicolon:
YES or NO when the question can be answered that way,
UNABLE when it cannot,
FINAL only when the player names you exactly.
After the semicolon add one short sentence in character. Never state your name unless the verdict is FINAL.`

var defaultIdentities = map[string][]string{
	"en": {
		"Whale", "Albert Einstein", "Eiffel Tower", "Moon", "Cleopatra",
		"Bicycle", "Sherlock Holmes", "Volcano", "Penguin", "Mona Lisa",
	},
	"cs": {
		"Velryba", "Albert Einstein", "Eiffelova věž", "Měsíc", "Kleopatra",
		"Jízdní kolo", "Sherlock Holmes", "Sopka", "Tučňák", "Krtek",
	},
}
