package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
	"github.com/drosell271/aiquiz-manager/utils"
)

const invitationTTL = 7 * 24 * time.Hour

type InviteProfessorInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Faculty string `json:"faculty"`
}

// issueInvitation genera un token nuevo para el usuario y persiste su hash.
// Reemitir invalida cualquier token anterior.
func issueInvitation(db *gorm.DB, user *models.User) (string, error) {
	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(invitationTTL)
	updates := map[string]interface{}{
		"invitation_token_hash": utils.HashToken(token),
		"invitation_expires":    &expires,
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return "", err
	}
	return token, nil
}

// POST /api/manager/users — solo admin
func InviteProfessor(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input InviteProfessorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nombre y email son obligatorios"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Ya existe un usuario con ese email"})
		return
	}

	newUser := models.User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Faculty:  strings.TrimSpace(input.Faculty),
		Role:     models.RoleProfessor,
		IsActive: false,
	}
	if err := db.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo crear el usuario"})
		return
	}

	token, err := issueInvitation(db, &newUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo generar la invitación"})
		return
	}

	// Envío en segundo plano; el fallo solo queda en el log
	go utils.SendInvitationEmail(newUser.Email, newUser.Name, token)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Invitación enviada",
		"user":    userJSON(newUser),
	})
}

// POST /api/manager/users/:id/resend-invitation — solo admin
func ResendInvitation(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
		return
	}

	if user.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La cuenta ya está activada"})
		return
	}

	token, err := issueInvitation(db, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo regenerar la invitación"})
		return
	}

	go utils.SendInvitationEmail(user.Email, user.Name, token)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Invitación reenviada"})
}

// GET /api/manager/users — solo admin
func GetUsers(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
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
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo contar los usuarios"})
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo obtener la lista de usuarios"})
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		item := userJSON(u)
		item["is_active"] = u.IsActive
		item["last_login"] = u.LastLogin
		list = append(list, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// DELETE /api/manager/users/:id — solo admin
func DeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	// Un admin no puede borrarse a sí mismo
	if c.GetString("user_id") == userID.String() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No puedes eliminar tu propia cuenta"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar el usuario"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Usuario eliminado"})
}
