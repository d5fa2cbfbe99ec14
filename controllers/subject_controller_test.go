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

func newContentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	content := r.Group("/api/manager")
	content.Use(middleware.DBMiddleware(db), middleware.AuthMiddleware(), middleware.RequireRoles("admin", "professor"))
	content.POST("/subjects", CreateSubject)
	content.GET("/subjects", GetSubjects)
	content.GET("/subjects/:id", GetSubjectDetail)
	content.PUT("/subjects/:id", UpdateSubject)
	content.DELETE("/subjects/:id", DeleteSubject)
	content.PATCH("/subjects/:id/toggle-status", ToggleSubjectStatus)

	return r
}

func bearerFor(t *testing.T, user models.User) map[string]string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID.String(), user.Email, string(user.Role))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSubject(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newContentRouter(db)

	professor := createActiveUser(t, db, "prof@upm.es", "contraseña123", models.RoleProfessor)
	headers := bearerFor(t, professor)

	w := postJSON(r, "/api/manager/subjects", gin.H{"name": "Redes de Computadores", "acronym": "RC"}, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	var subject models.Subject
	require.NoError(t, db.First(&subject, "acronym = ?", "RC").Error)
	assert.Equal(t, "Redes de Computadores", subject.Name)
	assert.Equal(t, "redes-de-computadores", subject.Slug)
	assert.True(t, subject.Status)
	require.NotNil(t, subject.CreatedBy)
	assert.Equal(t, professor.ID, *subject.CreatedBy)

	// El nombre es único sin distinguir mayúsculas
	w = postJSON(r, "/api/manager/subjects", gin.H{"name": "REDES DE COMPUTADORES"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSubjects_ProfessorSeesOnlyOwn(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newContentRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	ana := createActiveUser(t, db, "ana@upm.es", "contraseña123", models.RoleProfessor)
	berta := createActiveUser(t, db, "berta@upm.es", "contraseña123", models.RoleProfessor)

	w := postJSON(r, "/api/manager/subjects", gin.H{"name": "Asignatura de Ana"}, bearerFor(t, ana))
	require.Equal(t, http.StatusCreated, w.Code)
	w = postJSON(r, "/api/manager/subjects", gin.H{"name": "Asignatura de Berta"}, bearerFor(t, berta))
	require.Equal(t, http.StatusCreated, w.Code)

	type listResp struct {
		Data  []models.Subject `json:"data"`
		Total int64            `json:"total"`
	}

	// Cada profesora ve solo lo suyo
	w = doRequest(r, http.MethodGet, "/api/manager/subjects", bearerFor(t, ana))
	require.Equal(t, http.StatusOK, w.Code)
	var resp listResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Asignatura de Ana", resp.Data[0].Name)

	// El admin lo ve todo
	w = doRequest(r, http.MethodGet, "/api/manager/subjects", bearerFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Total)
}

func TestGetSubjects_SearchFilter(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newContentRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	headers := bearerFor(t, admin)

	postJSON(r, "/api/manager/subjects", gin.H{"name": "Redes de Computadores", "acronym": "RC"}, headers)
	postJSON(r, "/api/manager/subjects", gin.H{"name": "Bases de Datos", "acronym": "BD"}, headers)

	w := doRequest(r, http.MethodGet, "/api/manager/subjects?search=redes", headers)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Subject `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "RC", resp.Data[0].Acronym)
}

func TestUpdateSubject_DuplicateName(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newContentRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	headers := bearerFor(t, admin)

	postJSON(r, "/api/manager/subjects", gin.H{"name": "Redes de Computadores"}, headers)
	postJSON(r, "/api/manager/subjects", gin.H{"name": "Bases de Datos"}, headers)

	var subject models.Subject
	require.NoError(t, db.First(&subject, "name = ?", "Bases de Datos").Error)

	w := postPut(r, fmt.Sprintf("/api/manager/subjects/%s", subject.ID), gin.H{"name": "Redes de Computadores"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Renombrarse a sí misma sí está permitido
	w = postPut(r, fmt.Sprintf("/api/manager/subjects/%s", subject.ID), gin.H{"name": "Bases de Datos"}, headers)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestToggleSubjectStatus(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newContentRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	headers := bearerFor(t, admin)

	postJSON(r, "/api/manager/subjects", gin.H{"name": "Redes de Computadores"}, headers)
	var subject models.Subject
	require.NoError(t, db.First(&subject).Error)
	require.True(t, subject.Status)

	w := doRequest(r, http.MethodPatch, fmt.Sprintf("/api/manager/subjects/%s/toggle-status", subject.ID), headers)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&subject, "id = ?", subject.ID).Error)
	assert.False(t, subject.Status)
}

func TestDeleteSubject_NotFound(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newContentRouter(db)

	admin := createActiveUser(t, db, "admin@upm.es", "contraseña123", models.RoleAdmin)
	headers := bearerFor(t, admin)

	w := doRequest(r, http.MethodDelete, "/api/manager/subjects/00000000-0000-0000-0000-000000000000", headers)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/manager/subjects/no-es-un-uuid", headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
