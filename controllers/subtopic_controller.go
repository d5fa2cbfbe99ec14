package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
)

type CreateSubtopicInput struct {
	TopicID     string `json:"topic_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /api/manager/subtopics
func CreateSubtopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateSubtopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Tema y nombre son obligatorios"})
		return
	}

	topicUUID, err := uuid.Parse(input.TopicID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "topic_id no válido"})
		return
	}

	var topic models.Topic
	if err := db.First(&topic, "id = ?", topicUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tema no encontrado"})
		return
	}

	var count int64
	db.Model(&models.Subtopic{}).
		Where("topic_id = ? AND LOWER(name) = LOWER(?)", topicUUID, input.Name).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ya existe un subtema con ese nombre en el tema"})
		return
	}

	var maxOrder int
	db.Model(&models.Subtopic{}).Where("topic_id = ?", topicUUID).
		Select("COALESCE(MAX(sort_order),0)").Scan(&maxOrder)

	subtopic := models.Subtopic{
		ID:          uuid.New(),
		TopicID:     topicUUID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		SortOrder:   maxOrder + 1,
	}

	if err := db.Create(&subtopic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo crear el subtema"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Subtema creado",
		"subtopic": subtopic,
	})
}

// GET /api/manager/subtopics/:id
func GetSubtopicDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subtopic models.Subtopic
	if err := db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Questions.Choices").
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subtopic": subtopic})
}

type UpdateSubtopicInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order"`
}

// PUT /api/manager/subtopics/:id
func UpdateSubtopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input UpdateSubtopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}

	var subtopic models.Subtopic
	if err := db.First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		var count int64
		db.Model(&models.Subtopic{}).
			Where("topic_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", subtopic.TopicID, name, subtopicID).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ya existe un subtema con ese nombre en el tema"})
			return
		}
		subtopic.Name = name
	}
	if input.Description != "" {
		subtopic.Description = input.Description
	}
	if input.SortOrder != nil {
		subtopic.SortOrder = *input.SortOrder
	}

	if err := db.Save(&subtopic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar el subtema"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Subtema actualizado",
		"subtopic": subtopic,
	})
}

// DELETE /api/manager/subtopics/:id
func DeleteSubtopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subtopic models.Subtopic
	if err := db.First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	// No se borra un subtema con preguntas asociadas
	var questionCount int64
	db.Model(&models.Question{}).Where("subtopic_id = ?", subtopicID).Count(&questionCount)
	if questionCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "El subtema tiene preguntas asociadas; elimínalas primero"})
		return
	}

	if err := db.Delete(&subtopic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar el subtema"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subtema eliminado"})
}
