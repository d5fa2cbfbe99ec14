package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")

	token, err := GenerateToken("123e4567-e89b-12d3-a456-426614174000", "ana@upm.es", "professor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", claims.UserID)
	assert.Equal(t, "ana@upm.es", claims.Email)
	assert.Equal(t, "professor", claims.Role)
	assert.Equal(t, claims.UserID, claims.Subject)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-uno")
	token, err := GenerateToken("id", "a@b.es", "admin")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secreto-dos")
	_, err = VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")

	claims := SessionClaims{
		UserID: "id",
		Email:  "a@b.es",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secreto-de-test"))
	require.NoError(t, err)

	_, err = VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")

	_, err := VerifyToken("no-es-un-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDownloadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")

	fileID := "f0e1d2c3-0000-0000-0000-000000000001"
	token, err := GenerateDownloadToken(fileID)
	require.NoError(t, err)

	assert.NoError(t, VerifyDownloadToken(token, fileID))

	// El token está ligado a un único fichero
	assert.ErrorIs(t, VerifyDownloadToken(token, "otro-fichero"), ErrInvalidToken)
}

func TestDownloadToken_SessionTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")

	// Un JWT de sesión no vale como token de descarga aunque la firma sea válida
	session, err := GenerateToken("id", "a@b.es", "admin")
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyDownloadToken(session, "cualquiera"), ErrInvalidToken)
}

func TestGenerateRandomToken(t *testing.T) {
	token, err := GenerateRandomToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64) // 32 bytes en hex

	other, err := GenerateRandomToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashToken(t *testing.T) {
	hash := HashToken("abc123")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken("abc123"))
	assert.NotEqual(t, hash, HashToken("abc124"))
	assert.NotEqual(t, "abc123", hash)
}
