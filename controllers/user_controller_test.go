package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/middleware"
	"github.com/drosell271/aiquiz-manager/models"
	"github.com/drosell271/aiquiz-manager/utils"
)

func newUsersRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	users := r.Group("/api/manager/users")
	users.Use(middleware.DBMiddleware(db), middleware.AuthMiddleware(), middleware.RequireRoles("admin"))
	users.POST("", InviteProfessor)
	users.GET("", GetUsers)
	users.POST("/:id/resend-invitation", ResendInvitation)
	users.DELETE("/:id", DeleteUser)

	return r
}

func adminHeaders(t *testing.T, admin models.User) map[string]string {
	t.Helper()
	token, err := utils.GenerateToken(admin.ID.String(), admin.Email, string(admin.Role))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestInviteProfessor(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newUsersRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	headers := adminHeaders(t, admin)

	w := postJSON(r, "/api/manager/users", gin.H{"name": "Nueva Profesora", "email": "Nueva@UPM.es", "faculty": "ETSIT"}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	require.NoError(t, db.First(&created, "email = ?", "nueva@upm.es").Error)
	assert.Equal(t, models.RoleProfessor, created.Role)
	assert.False(t, created.IsActive)
	assert.NotEmpty(t, created.InvitationTokenHash)
	assert.NotNil(t, created.InvitationExpires)

	// Email duplicado
	w = postJSON(r, "/api/manager/users", gin.H{"name": "Otra", "email": "nueva@upm.es"}, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInviteProfessor_RequiresAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newUsersRouter(db)

	professor := createActiveUser(t, db, "prof@upm.es", "contraseña123", models.RoleProfessor)
	token, err := utils.GenerateToken(professor.ID.String(), professor.Email, string(professor.Role))
	require.NoError(t, err)

	w := postJSON(r, "/api/manager/users", gin.H{"name": "Alguien", "email": "alguien@upm.es"},
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResendInvitation(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newUsersRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	headers := adminHeaders(t, admin)

	w := postJSON(r, "/api/manager/users", gin.H{"name": "Pendiente", "email": "pendiente@upm.es"}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	var invited models.User
	require.NoError(t, db.First(&invited, "email = ?", "pendiente@upm.es").Error)
	firstHash := invited.InvitationTokenHash

	w = postJSON(r, fmt.Sprintf("/api/manager/users/%s/resend-invitation", invited.ID), nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	// Reenviar genera un token nuevo que sustituye al anterior
	require.NoError(t, db.First(&invited, "id = ?", invited.ID).Error)
	assert.NotEqual(t, firstHash, invited.InvitationTokenHash)

	// Una cuenta ya activada no admite reenvío
	w = postJSON(r, fmt.Sprintf("/api/manager/users/%s/resend-invitation", admin.ID), nil, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUsers_Filters(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newUsersRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	createActiveUser(t, db, "ana@upm.es", "contraseña123", models.RoleProfessor)
	createActiveUser(t, db, "berta@upm.es", "contraseña123", models.RoleProfessor)
	headers := adminHeaders(t, admin)

	req := httptest.NewRequest(http.MethodGet, "/api/manager/users?role=professor", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.NotContains(t, w.Body.String(), "admin@upm.es")
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newUsersRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	other := createActiveUser(t, db, "otra@upm.es", "contraseña123", models.RoleProfessor)
	headers := adminHeaders(t, admin)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/manager/users/%s", admin.ID), nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/manager/users/%s", other.ID), nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.User{}).Where("id = ?", other.ID).Count(&count)
	assert.Zero(t, count)
}
