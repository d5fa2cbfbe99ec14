package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("contraseña123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "contraseña123", hash)

	assert.True(t, CheckPasswordHash("contraseña123", hash))
	assert.False(t, CheckPasswordHash("otra-cosa", hash))
}

func TestCheckPasswordHash_EmptyHash(t *testing.T) {
	// Usuario invitado que aún no ha fijado contraseña
	assert.False(t, CheckPasswordHash("cualquiera", ""))
}
