package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
)

type CreateTopicInput struct {
	SubjectID   string `json:"subject_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /api/manager/topics
func CreateTopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateTopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Asignatura y nombre son obligatorios"})
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

	// Nombre único dentro de la asignatura
	var count int64
	db.Model(&models.Topic{}).
		Where("subject_id = ? AND LOWER(name) = LOWER(?)", subjectUUID, input.Name).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ya existe un tema con ese nombre en la asignatura"})
		return
	}

	var maxOrder int
	db.Model(&models.Topic{}).Where("subject_id = ?", subjectUUID).
		Select("COALESCE(MAX(sort_order),0)").Scan(&maxOrder)

	topic := models.Topic{
		ID:          uuid.New(),
		SubjectID:   subjectUUID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      true,
		Slug:        slug.Make(input.Name),
		SortOrder:   maxOrder + 1,
	}

	if err := db.Create(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo crear el tema"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Tema creado",
		"topic":   topic,
	})
}

// GET /api/manager/subjects/:id/topics
func GetTopicsBySubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var topics []models.Topic
	if err := db.Where("subject_id = ?", subjectUUID).
		Order("sort_order ASC, created_at ASC").
		Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo obtener la lista de temas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": topics})
}

// GET /api/manager/topics/:id
func GetTopicDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var topic models.Topic
	if err := db.
		Preload("Subtopics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		First(&topic, "id = ?", topicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tema no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "topic": topic})
}

type UpdateTopicInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      *bool  `json:"status"`
	SortOrder   *int   `json:"sort_order"`
}

// PUT /api/manager/topics/:id
func UpdateTopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input UpdateTopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}

	var topic models.Topic
	if err := db.First(&topic, "id = ?", topicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tema no encontrado"})
		return
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		var count int64
		db.Model(&models.Topic{}).
			Where("subject_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", topic.SubjectID, name, topicID).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ya existe un tema con ese nombre en la asignatura"})
			return
		}
		topic.Name = name
		topic.Slug = slug.Make(name)
	}
	if input.Description != "" {
		topic.Description = input.Description
	}
	if input.Status != nil {
		topic.Status = *input.Status
	}
	if input.SortOrder != nil {
		topic.SortOrder = *input.SortOrder
	}

	if err := db.Save(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar el tema"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tema actualizado",
		"topic":   topic,
	})
}

// DELETE /api/manager/topics/:id
func DeleteTopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var topic models.Topic
	if err := db.First(&topic, "id = ?", topicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tema no encontrado"})
		return
	}

	if err := db.Delete(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar el tema"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Tema eliminado"})
}

// PATCH /api/manager/topics/:id/toggle-status
func ToggleTopicStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var topic models.Topic
	if err := db.First(&topic, "id = ?", topicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Tema no encontrado"})
		return
	}

	topic.Status = !topic.Status
	if err := db.Save(&topic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo cambiar el estado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Estado actualizado",
		"topic":   topic,
	})
}
