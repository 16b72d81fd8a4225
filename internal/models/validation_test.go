package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunValidatorAlias(t *testing.T) {
	v := newRunValidator()

	tests := []struct {
		name    string
		players []string
		valid   bool
	}{
		{
			name:    "plain aliases",
			players: []string{"dupont", "martin"},
			valid:   true,
		},
		{
			name:    "accented alias",
			players: []string{"müller"},
			valid:   true,
		},
		{
			name:    "empty entry",
			players: []string{"dupont", ""},
			valid:   false,
		},
		{
			name:    "blank entry",
			players: []string{"   "},
			valid:   false,
		},
		{
			name:    "path separator",
			players: []string{"eleves/dupont"},
			valid:   false,
		},
		{
			name:    "parent traversal",
			players: []string{"../base"},
			valid:   false,
		},
		{
			name:    "backslash",
			players: []string{`group\dupont`},
			valid:   false,
		},
		{
			name:    "over length",
			players: []string{strings.Repeat("a", 65)},
			valid:   false,
		},
		{
			name:    "no players",
			players: nil,
			valid:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&RunRequest{Players: tt.players})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRunValidatorUsesJSONFieldNames(t *testing.T) {
	v := newRunValidator()

	err := v.Struct(&RunRequest{Concurrency: 100})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}
