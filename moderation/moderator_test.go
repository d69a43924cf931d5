package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"conquest/errors"
)

const replacementChar = '*'

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name:     "Case insensitive match",
			input:    "A BaDgEr and a SNAKE",
			expected: "A ****** and a *****",
		},
		{
			name:     "No match leaves the text untouched",
			input:    "nothing forbidden here",
			expected: "nothing forbidden here",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "Multibyte text around a match",
			input:    "été du badger été",
			expected: "été du ****** été",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestNewModerator_EmptyWordList(t *testing.T) {
	req := require.New(t)

	_, err := NewModerator(nil, replacementChar)

	req.ErrorIs(err, errors.ErrEmptyWords)
}
