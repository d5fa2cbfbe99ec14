package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("token inválido o expirado")

type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET no está definido")
	}
	return []byte(secret), nil
}

func sessionTTL() time.Duration {
	if v := os.Getenv("JWT_EXPIRES_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			return time.Duration(h) * time.Hour
		}
	}
	return 7 * 24 * time.Hour
}

// GenerateToken emite el JWT de sesión tras un login correcto.
func GenerateToken(userID, email, role string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken valida firma y expiración del JWT de sesión.
func VerifyToken(tokenString string) (*SessionClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("método de firma inesperado")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DownloadClaims es el token de propósito único para descargas de ficheros.
type DownloadClaims struct {
	FileID string `json:"file_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateDownloadToken emite un token corto ligado a un único fichero, para
// enlaces de descarga navegables sin cabecera Authorization.
func GenerateDownloadToken(fileID string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	claims := DownloadClaims{
		FileID: fileID,
		Type:   "download",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyDownloadToken comprueba firma, expiración y que el token pertenece al
// fichero solicitado.
func VerifyDownloadToken(tokenString, fileID string) error {
	secret, err := jwtSecret()
	if err != nil {
		return err
	}

	claims := &DownloadClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("método de firma inesperado")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	if claims.Type != "download" || claims.FileID != fileID {
		return ErrInvalidToken
	}
	return nil
}

// GenerateRandomToken genera un token aleatorio hex de `length` bytes de entropía.
// El token en claro se envía por email; en base de datos solo se guarda su hash.
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// HashToken devuelve el SHA-256 hex del token en claro. Es lo único que se
// persiste de los tokens de invitación y de reseteo.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
