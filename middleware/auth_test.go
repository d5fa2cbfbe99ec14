package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drosell271/aiquiz-manager/utils"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protegida", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/solo-admin", AuthMiddleware(), RequireRoles("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	r := newAuthRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Falta el token")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	r := newAuthRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer basura")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido o expirado")
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	r := newAuthRouter()

	token, err := utils.GenerateToken("uid-1", "ana@upm.es", "professor")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uid-1")
	assert.Contains(t, w.Body.String(), "professor")
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	r := newAuthRouter()

	token, err := utils.GenerateToken("uid-2", "ana@upm.es", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uid-2")
}

func TestAuthMiddleware_MalformedHeaderIgnoresCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	r := newAuthRouter()

	token, err := utils.GenerateToken("uid-3", "ana@upm.es", "admin")
	require.NoError(t, err)

	// Con cabecera Authorization presente pero mal formada, la cookie no se usa
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Token "+token)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	r := newAuthRouter()

	adminToken, err := utils.GenerateToken("uid-admin", "admin@upm.es", "admin")
	require.NoError(t, err)
	professorToken, err := utils.GenerateToken("uid-prof", "prof@upm.es", "professor")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/solo-admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/solo-admin", nil)
	req.Header.Set("Authorization", "Bearer "+professorToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "No tienes permisos")
}
