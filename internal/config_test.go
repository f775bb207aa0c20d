package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)

	// Multi-rune and empty values are rejected
	_, err = CharacterRune("**")
	req.Error(err)
	_, err = CharacterRune("")
	req.Error(err)

	// A single non-ASCII rune is fine
	r, err = CharacterRune("█")
	req.NoError(err)
	req.Equal('█', r)
}
