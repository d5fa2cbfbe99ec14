package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
)

type CreateSubjectInput struct {
	Name        string `json:"name" binding:"required"`
	Acronym     string `json:"acronym"`
	Description string `json:"description"`
}

// POST /api/manager/subjects
func CreateSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "El nombre de la asignatura es obligatorio"})
		return
	}

	var userUUID *uuid.UUID
	if userIDStr := c.GetString("user_id"); userIDStr != "" {
		parsed, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user_id no válido"})
			return
		}
		userUUID = &parsed
	}

	// Comprobar nombre duplicado
	var count int64
	db.Model(&models.Subject{}).Where("LOWER(name) = LOWER(?)", input.Name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ya existe una asignatura con ese nombre"})
		return
	}

	subject := models.Subject{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Acronym:     strings.TrimSpace(input.Acronym),
		Description: input.Description,
		CreatedBy:   userUUID,
		Status:      true,
		Slug:        slug.Make(input.Name),
	}

	if err := db.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo crear la asignatura"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Asignatura creada",
		"subject": subject,
	})
}

// GET /api/manager/subjects
func GetSubjects(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	role := c.GetString("role")
	userIDStr := c.GetString("user_id")

	query := db.Model(&models.Subject{}).
		Preload("Topics").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, email")
		})

	// Los profesores solo ven sus asignaturas
	if role == string(models.RoleProfessor) {
		query = query.Where("subjects.created_by = ?", userIDStr)
	}

	if status := c.Query("status"); status != "" {
		switch status {
		case "true":
			query = query.Where("subjects.status = ?", true)
		case "false":
			query = query.Where("subjects.status = ?", false)
		}
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(subjects.name) LIKE ? OR LOWER(subjects.acronym) LIKE ?", pattern, pattern)
	}

	// Filtro por fecha de creación
	const layout = "2006-01-02"
	if fromStr := c.Query("from_date"); fromStr != "" {
		if from, err := time.Parse(layout, fromStr); err == nil {
			query = query.Where("subjects.created_at >= ?", from)
		}
	}
	if toStr := c.Query("to_date"); toStr != "" {
		if to, err := time.Parse(layout, toStr); err == nil {
			query = query.Where("subjects.created_at < ?", to.Add(24*time.Hour))
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo contar las asignaturas"})
		return
	}

	var subjects []models.Subject
	if err := query.
		Order("subjects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo obtener la lista de asignaturas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    subjects,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GET /api/manager/subjects/:id
func GetSubjectDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subject models.Subject
	if err := db.
		Preload("Topics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Topics.Subtopics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, email")
		}).
		First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asignatura no encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subject": subject})
}

type UpdateSubjectInput struct {
	Name        string `json:"name"`
	Acronym     string `json:"acronym"`
	Description string `json:"description"`
	Status      *bool  `json:"status"`
}

// PUT /api/manager/subjects/:id
func UpdateSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var input UpdateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asignatura no encontrada"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "El nombre no puede estar vacío"})
		return
	}

	slugValue := slug.Make(name)
	var count int64
	db.Model(&models.Subject{}).
		Where("(LOWER(TRIM(name)) = ? OR slug = ?) AND id <> ?", strings.ToLower(name), slugValue, subjectID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ya existe una asignatura con ese nombre"})
		return
	}

	subject.Name = name
	subject.Slug = slugValue
	subject.Acronym = strings.TrimSpace(input.Acronym)
	subject.Description = input.Description
	if input.Status != nil {
		subject.Status = *input.Status
	}

	if err := db.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar la asignatura"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asignatura actualizada",
		"subject": subject,
	})
}

// DELETE /api/manager/subjects/:id
func DeleteSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asignatura no encontrada"})
		return
	}

	if err := db.Delete(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar la asignatura"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Asignatura eliminada"})
}

// PATCH /api/manager/subjects/:id/toggle-status
func ToggleSubjectStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Asignatura no encontrada"})
		return
	}

	subject.Status = !subject.Status
	if err := db.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo cambiar el estado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Estado actualizado",
		"subject": subject,
	})
}
