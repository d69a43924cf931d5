// Package moderation censors chat text before it is fanned out to a room.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"conquest/errors"
)

// Moderator masks forbidden words in relayed chat messages. Matching is
// case-insensitive; the match is replaced rune for rune so the message
// keeps its length and spacing.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton over the lowered word
// list. An empty list is an error: callers that want no moderation pass a
// nil *Moderator instead.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}

	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = lower([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every occurrence of a forbidden word with the
// replacement rune.
func (m *Moderator) Censor(original string) string {
	runes := []rune(original)
	if len(runes) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(lower(runes), false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(runes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}

func lower(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
