package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
)

type CreateQuestionnaireInput struct {
	SubjectID   string   `json:"subject_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	QuestionIDs []string `json:"question_ids"`
}

func resolveQuestions(db *gorm.DB, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		qid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("id de pregunta no válido: %s", id)
		}
		parsed = append(parsed, qid)
	}

	var questions []models.Question
	if err := db.Where("id IN ?", parsed).Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) != len(parsed) {
		return nil, fmt.Errorf("alguna pregunta no existe")
	}
	return questions, nil
}

// POST /api/manager/questionnaires
func CreateQuestionnaire(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateQuestionnaireInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Asignatura y título son obligatorios"})
		return
	}

	subjectUUID, err := uuid.Parse(input.SubjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "subject_id no válido"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asignatura no encontrada"})
		return
	}

	questions, err := resolveQuestions(db, input.QuestionIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var userUUID *uuid.UUID
	if parsed, err := uuid.Parse(c.GetString("user_id")); err == nil {
		userUUID = &parsed
	}

	questionnaire := models.Questionnaire{
		ID:          uuid.New(),
		SubjectID:   subjectUUID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		CreatedBy:   userUUID,
		Questions:   questions,
	}

	if err := db.Create(&questionnaire).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo crear el cuestionario"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       "Cuestionario creado",
		"questionnaire": questionnaire,
	})
}

// GET /api/manager/subjects/:id/questionnaires
func GetQuestionnairesBySubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var questionnaires []models.Questionnaire
	if err := db.Where("subject_id = ?", subjectUUID).
		Order("created_at DESC").
		Find(&questionnaires).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo obtener la lista de cuestionarios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": questionnaires})
}

// GET /api/manager/questionnaires/:id
func GetQuestionnaireDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var questionnaire models.Questionnaire
	if err := db.
		Preload("Questions").
		Preload("Questions.Choices").
		First(&questionnaire, "id = ?", questionnaireID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cuestionario no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "questionnaire": questionnaire})
}

type UpdateQuestionnaireInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	QuestionIDs []string `json:"question_ids"`
}

// PUT /api/manager/questionnaires/:id
func UpdateQuestionnaire(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input UpdateQuestionnaireInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}

	var questionnaire models.Questionnaire
	if err := db.First(&questionnaire, "id = ?", questionnaireID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cuestionario no encontrado"})
		return
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		questionnaire.Title = title
	}
	if input.Description != "" {
		questionnaire.Description = input.Description
	}

	if err := db.Save(&questionnaire).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar el cuestionario"})
		return
	}

	// Si llega una lista de preguntas se reemplaza la asociación completa
	if input.QuestionIDs != nil {
		questions, err := resolveQuestions(db, input.QuestionIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		if err := db.Model(&questionnaire).Association("Questions").Replace(questions); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudieron actualizar las preguntas"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Cuestionario actualizado",
		"questionnaire": questionnaire,
	})
}

// DELETE /api/manager/questionnaires/:id
func DeleteQuestionnaire(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var questionnaire models.Questionnaire
	if err := db.First(&questionnaire, "id = ?", questionnaireID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cuestionario no encontrado"})
		return
	}

	if err := db.Select("Questions").Delete(&questionnaire).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar el cuestionario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cuestionario eliminado"})
}

// GET /api/manager/questionnaires/:id/export
//
// Exporta el cuestionario como JSON plano, sin marcar la opción correcta en
// los metadatos visibles para el alumno.
func ExportQuestionnaire(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var questionnaire models.Questionnaire
	if err := db.
		Preload("Questions").
		Preload("Questions.Choices").
		First(&questionnaire, "id = ?", questionnaireID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cuestionario no encontrado"})
		return
	}

	type exportChoice struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	}
	type exportQuestion struct {
		Text       string         `json:"text"`
		Difficulty string         `json:"difficulty"`
		Choices    []exportChoice `json:"choices"`
	}

	export := struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Questions   []exportQuestion `json:"questions"`
	}{
		Title:       questionnaire.Title,
		Description: questionnaire.Description,
	}
	for _, q := range questionnaire.Questions {
		eq := exportQuestion{Text: q.Text, Difficulty: q.Difficulty}
		for _, ch := range q.Choices {
			eq.Choices = append(eq.Choices, exportChoice{Text: ch.Text, IsCorrect: ch.IsCorrect})
		}
		export.Questions = append(export.Questions, eq)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", questionnaire.Title+".json"))
	c.JSON(http.StatusOK, export)
}
