package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"     // Administrador del sistema
	RoleProfessor UserRole = "professor" // Profesor (gestiona contenido)
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:150;not null" json:"name"`
	Email    string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:text" json:"-"`
	Role     UserRole  `gorm:"type:varchar(20);not null;default:'professor'" json:"role"`
	Faculty  string    `gorm:"size:150" json:"faculty,omitempty"`

	// Inactivo hasta aceptar la invitación
	IsActive bool `gorm:"default:false;not null" json:"is_active"`

	// Tokens de un solo uso: se guarda el hash SHA-256, nunca el token en claro
	InvitationTokenHash string     `gorm:"size:64;index" json:"-"`
	InvitationExpires   *time.Time `json:"-"`
	ResetTokenHash      string     `gorm:"size:64;index" json:"-"`
	ResetExpires        *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relaciones
	Subjects []Subject `gorm:"foreignKey:CreatedBy" json:"subjects,omitempty"`
}
