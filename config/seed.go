package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
	"github.com/drosell271/aiquiz-manager/utils"
)

// SeedAdmin crea el administrador inicial si no existe ningún usuario.
// Lee ADMIN_EMAIL y ADMIN_PASSWORD del entorno.
func SeedAdmin(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Println("No se pudo comprobar los usuarios existentes:", err)
		return
	}
	if count > 0 {
		return
	}

	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD no definidos; no se crea el admin inicial")
		return
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		log.Println("No se pudo crear el admin inicial:", err)
		return
	}

	now := time.Now()
	admin := models.User{
		ID:        uuid.New(),
		Name:      "Administrador",
		Email:     email,
		Password:  hashed,
		Role:      models.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Println("No se pudo crear el admin inicial:", err)
		return
	}
	log.Println("Admin inicial creado:", email)
}
