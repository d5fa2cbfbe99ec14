package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/middleware"
	"github.com/drosell271/aiquiz-manager/models"
)

func newTopicsRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	content := r.Group("/api/manager")
	content.Use(middleware.DBMiddleware(db), middleware.AuthMiddleware(), middleware.RequireRoles("admin", "professor"))
	content.POST("/topics", CreateTopic)
	content.GET("/subjects/:id/topics", GetTopicsBySubject)
	content.PUT("/topics/:id", UpdateTopic)
	content.DELETE("/topics/:id", DeleteTopic)
	content.POST("/subtopics", CreateSubtopic)
	content.DELETE("/subtopics/:id", DeleteSubtopic)

	return r
}

func TestCreateTopic_SortOrder(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newTopicsRouter(db)

	professor := createActiveUser(t, db, "prof@upm.es", "contraseña123", models.RoleProfessor)
	headers := bearerFor(t, professor)

	subject := models.Subject{ID: uuid.New(), Name: "Redes", Slug: "redes", Status: true}
	require.NoError(t, db.Create(&subject).Error)

	for _, name := range []string{"Capa física", "Capa de enlace", "Capa de red"} {
		w := postJSON(r, "/api/manager/topics", gin.H{"subject_id": subject.ID.String(), "name": name}, headers)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Cada tema nuevo se coloca al final
	w := doRequest(r, http.MethodGet, fmt.Sprintf("/api/manager/subjects/%s/topics", subject.ID), headers)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Topic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "Capa física", resp.Data[0].Name)
	assert.Equal(t, 1, resp.Data[0].SortOrder)
	assert.Equal(t, 3, resp.Data[2].SortOrder)

	// Nombre duplicado dentro de la misma asignatura
	w = postJSON(r, "/api/manager/topics", gin.H{"subject_id": subject.ID.String(), "name": "capa física"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteSubtopic_BlockedByQuestions(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	db := newTestDB(t)
	r := newTopicsRouter(db)

	professor := createActiveUser(t, db, "prof@upm.es", "contraseña123", models.RoleProfessor)
	subtopic := seedSubtopic(t, db)
	headers := bearerFor(t, professor)

	question := models.Question{ID: uuid.New(), SubtopicID: subtopic.ID, Text: "Pregunta", Difficulty: "medium"}
	require.NoError(t, db.Create(&question).Error)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/manager/subtopics/%s", subtopic.ID), headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "preguntas asociadas")

	// Sin preguntas ya se puede borrar
	require.NoError(t, db.Delete(&question).Error)
	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/manager/subtopics/%s", subtopic.ID), headers)
	assert.Equal(t, http.StatusOK, w.Code)
}
