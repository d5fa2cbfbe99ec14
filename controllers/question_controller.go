package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
	"github.com/drosell271/aiquiz-manager/services"
)

type ChoiceInput struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type CreateQuestionInput struct {
	Text       string        `json:"text" binding:"required"`
	Difficulty string        `json:"difficulty"`
	Choices    []ChoiceInput `json:"choices" binding:"required,min=2"`
}

func validDifficulty(d string) bool {
	switch d {
	case "easy", "medium", "hard":
		return true
	}
	return false
}

// POST /api/manager/subtopics/:id/questions
func CreateQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Enunciado y al menos dos opciones son obligatorios"})
		return
	}

	// Exactamente una opción correcta
	correct := 0
	for _, ch := range input.Choices {
		if ch.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Debe haber exactamente una opción correcta"})
		return
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	if !validDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dificultad no válida (easy, medium, hard)"})
		return
	}

	var subtopic models.Subtopic
	if err := db.First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	var userUUID *uuid.UUID
	if parsed, err := uuid.Parse(c.GetString("user_id")); err == nil {
		userUUID = &parsed
	}

	question := models.Question{
		ID:         uuid.New(),
		SubtopicID: subtopicID,
		CreatedBy:  userUUID,
		Text:       strings.TrimSpace(input.Text),
		Difficulty: difficulty,
		Generated:  false,
		Verified:   true, // escrita a mano por un profesor
	}
	for _, ch := range input.Choices {
		question.Choices = append(question.Choices, models.Choice{
			ID:        uuid.New(),
			Text:      strings.TrimSpace(ch.Text),
			IsCorrect: ch.IsCorrect,
		})
	}

	if err := db.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo crear la pregunta"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Pregunta creada",
		"question": question,
	})
}

// GET /api/manager/subtopics/:id/questions
func GetQuestionsBySubtopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	query := db.Model(&models.Question{}).
		Preload("Choices").
		Where("subtopic_id = ?", subtopicID)

	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if generated := c.Query("generated"); generated != "" {
		query = query.Where("generated = ?", generated == "true")
	}

	var questions []models.Question
	if err := query.Order("created_at DESC").Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo obtener la lista de preguntas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": questions})
}

type UpdateQuestionInput struct {
	Text       string        `json:"text"`
	Difficulty string        `json:"difficulty"`
	Verified   *bool         `json:"verified"`
	Choices    []ChoiceInput `json:"choices"`
}

// PUT /api/manager/questions/:id
func UpdateQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input UpdateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}

	var question models.Question
	if err := db.Preload("Choices").First(&question, "id = ?", questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Pregunta no encontrada"})
		return
	}

	if text := strings.TrimSpace(input.Text); text != "" {
		question.Text = text
	}
	if input.Difficulty != "" {
		if !validDifficulty(input.Difficulty) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dificultad no válida (easy, medium, hard)"})
			return
		}
		question.Difficulty = input.Difficulty
	}
	if input.Verified != nil {
		question.Verified = *input.Verified
	}

	// Si llegan opciones nuevas se reemplazan todas
	if len(input.Choices) > 0 {
		correct := 0
		for _, ch := range input.Choices {
			if ch.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Debe haber exactamente una opción correcta"})
			return
		}

		if err := db.Where("question_id = ?", questionID).Delete(&models.Choice{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudieron actualizar las opciones"})
			return
		}
		question.Choices = nil
		for _, ch := range input.Choices {
			question.Choices = append(question.Choices, models.Choice{
				ID:         uuid.New(),
				QuestionID: questionID,
				Text:       strings.TrimSpace(ch.Text),
				IsCorrect:  ch.IsCorrect,
			})
		}
	}

	if err := db.Save(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar la pregunta"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Pregunta actualizada",
		"question": question,
	})
}

// DELETE /api/manager/questions/:id
func DeleteQuestion(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var question models.Question
	if err := db.First(&question, "id = ?", questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Pregunta no encontrada"})
		return
	}

	if err := db.Delete(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar la pregunta"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pregunta eliminada"})
}

type GenerateQuestionsInput struct {
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

type generatedQuestion struct {
	Text    string `json:"text"`
	Choices []struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"choices"`
}

// POST /api/manager/subtopics/:id/questions/generate
//
// Genera preguntas tipo test con Gemini usando como contexto la descripción
// del subtema y, si hay ficheros indexados, los fragmentos más relevantes
// del índice RAG.
func GenerateQuestions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	rag := c.MustGet("rag").(services.Engine)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input GenerateQuestionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}
	if input.Count <= 0 {
		input.Count = 5
	}
	if input.Count > 20 {
		input.Count = 20
	}
	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	if !validDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dificultad no válida (easy, medium, hard)"})
		return
	}

	var subtopic models.Subtopic
	if err := db.Preload("Topic").First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	// Contexto RAG: fragmentos más cercanos al nombre del subtema
	var ragContext string
	chunks, err := rag.Search(context.Background(), subtopicID.String(), subtopic.Name, 5)
	if err == nil && len(chunks) > 0 {
		var sb strings.Builder
		for _, chunk := range chunks {
			sb.WriteString(chunk.Text)
			sb.WriteString("\n---\n")
		}
		ragContext = sb.String()
	}

	prompt := fmt.Sprintf(`Eres un profesor universitario. Genera %d preguntas tipo test en español
sobre el subtema "%s" (tema "%s"), dificultad %s.
Descripción del subtema: %s
%s
Responde ÚNICAMENTE con un array JSON con este formato, sin texto adicional:
[{"text": "...", "choices": [{"text": "...", "is_correct": true}, {"text": "...", "is_correct": false}, {"text": "...", "is_correct": false}, {"text": "...", "is_correct": false}]}]
Cada pregunta debe tener exactamente 4 opciones y una sola correcta.`,
		input.Count, subtopic.Name, subtopicTopicName(subtopic), difficulty, subtopic.Description,
		ragContextBlock(ragContext))

	raw, err := services.GeminiGenerateText(prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudieron generar las preguntas"})
		return
	}

	// Gemini a veces envuelve el JSON en un bloque markdown
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &generated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "La respuesta del modelo no es válida"})
		return
	}

	var userUUID *uuid.UUID
	if parsed, err := uuid.Parse(c.GetString("user_id")); err == nil {
		userUUID = &parsed
	}

	var saved []models.Question
	for _, g := range generated {
		if strings.TrimSpace(g.Text) == "" || len(g.Choices) < 2 {
			continue
		}
		question := models.Question{
			ID:         uuid.New(),
			SubtopicID: subtopicID,
			CreatedBy:  userUUID,
			Text:       strings.TrimSpace(g.Text),
			Difficulty: difficulty,
			Generated:  true,
			Verified:   false, // pendiente de revisión del profesor
		}
		for _, ch := range g.Choices {
			question.Choices = append(question.Choices, models.Choice{
				ID:        uuid.New(),
				Text:      strings.TrimSpace(ch.Text),
				IsCorrect: ch.IsCorrect,
			})
		}
		if err := db.Create(&question).Error; err != nil {
			continue
		}
		saved = append(saved, question)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Se han generado %d preguntas", len(saved)),
		"questions": saved,
	})
}

func subtopicTopicName(s models.Subtopic) string {
	if s.Topic != nil {
		return s.Topic.Name
	}
	return ""
}

func ragContextBlock(ctx string) string {
	if ctx == "" {
		return ""
	}
	return "Material de referencia extraído de los documentos de la asignatura:\n" + ctx
}
