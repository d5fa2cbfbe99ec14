package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
	"github.com/drosell271/aiquiz-manager/utils"
)

// ====== INPUT STRUCTS ======
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AcceptInvitationInput struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RecoveryInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type ValidateResetTokenInput struct {
	Token string `json:"token" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

const minPasswordLen = 8

func userJSON(user models.User) gin.H {
	return gin.H{
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
		"faculty": user.Faculty,
	}
}

// POST /api/manager/auth/login
func Login(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email y contraseña son obligatorios"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Credenciales inválidas"})
		return
	}

	// Una cuenta sin activar no puede autenticarse aunque la contraseña
	// coincidiera
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Credenciales inválidas"})
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Credenciales inválidas"})
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo generar el token"})
		return
	}

	now := time.Now()
	db.Model(&user).Update("last_login", &now)

	// Cookie httpOnly para el manager, además del token en el cuerpo
	c.SetCookie("aiquiz_token", token, int(7*24*time.Hour/time.Second), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    userJSON(user),
	})
}

// POST /api/manager/auth/accept-invitation
func AcceptInvitation(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input AcceptInvitationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Token y contraseña son obligatorios"})
		return
	}

	if len(input.Password) < minPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La contraseña debe tener al menos 8 caracteres"})
		return
	}

	// La búsqueda no distingue entre token inexistente y expirado
	tokenHash := utils.HashToken(input.Token)
	var user models.User
	if err := db.Where("invitation_token_hash = ? AND invitation_expires > ?", tokenHash, time.Now()).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Token inválido o expirado"})
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo procesar la contraseña"})
		return
	}

	// Activación y limpieza del token en una sola escritura
	updates := map[string]interface{}{
		"password":              hashed,
		"is_active":             true,
		"invitation_token_hash": "",
		"invitation_expires":    nil,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo activar la cuenta"})
		return
	}

	user.IsActive = true
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cuenta activada correctamente",
		"user":    userJSON(user),
	})
}

// POST /api/manager/auth/recovery
//
// Responde siempre igual, exista o no la cuenta, para no revelar qué emails
// están registrados.
func Recovery(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input RecoveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "El email es obligatorio"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err == nil {
		token, tokenErr := utils.GenerateRandomToken(32)
		if tokenErr == nil {
			expires := time.Now().Add(1 * time.Hour)
			updates := map[string]interface{}{
				"reset_token_hash": utils.HashToken(token),
				"reset_expires":    &expires,
			}
			if dbErr := db.Model(&user).Updates(updates).Error; dbErr == nil {
				go utils.SendPasswordResetEmail(user.Email, token)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Si el email está registrado, recibirás un enlace de recuperación",
	})
}

// POST /api/manager/auth/reset-password
func ResetPassword(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Token y nueva contraseña son obligatorios"})
		return
	}

	if len(input.NewPassword) < minPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La contraseña debe tener al menos 8 caracteres"})
		return
	}

	tokenHash := utils.HashToken(input.Token)
	var user models.User
	if err := db.Where("reset_token_hash = ? AND reset_expires > ?", tokenHash, time.Now()).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Token inválido o expirado"})
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo procesar la contraseña"})
		return
	}

	// El token se consume en la misma escritura que fija la contraseña
	updates := map[string]interface{}{
		"password":         hashed,
		"reset_token_hash": "",
		"reset_expires":    nil,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar la contraseña"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contraseña restablecida correctamente",
	})
}

// POST /api/manager/auth/validate-reset-token
func ValidateResetToken(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input ValidateResetTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "El token es obligatorio"})
		return
	}

	tokenHash := utils.HashToken(input.Token)
	var user models.User
	if err := db.Where("reset_token_hash = ? AND reset_expires > ?", tokenHash, time.Now()).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Token inválido o expirado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "valid": true})
}

// PUT /api/manager/account/password
func ChangePassword(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Contraseña actual y nueva son obligatorias"})
		return
	}

	if len(input.NewPassword) < minPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La contraseña debe tener al menos 8 caracteres"})
		return
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
		return
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "La contraseña actual no es correcta"})
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo procesar la contraseña"})
		return
	}

	if err := db.Model(&user).Update("password", hashed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar la contraseña"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contraseña actualizada correctamente"})
}

// GET /api/manager/account
func GetAccount(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userJSON(user)})
}

type UpdateAccountInput struct {
	Name    string `json:"name"`
	Faculty string `json:"faculty"`
}

// PUT /api/manager/account
func UpdateAccount(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var input UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Datos no válidos"})
		return
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Usuario no encontrado"})
		return
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	user.Faculty = strings.TrimSpace(input.Faculty)

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo actualizar el perfil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userJSON(user)})
}
