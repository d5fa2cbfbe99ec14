package models

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Acronym     string     `gorm:"size:20" json:"acronym"`
	Description string     `gorm:"type:text" json:"description"`
	Status      bool       `gorm:"default:true;not null" json:"status"` // true: activa, false: archivada
	Slug        string     `gorm:"size:255;uniqueIndex" json:"slug"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid;default:null" json:"created_by"`
	User        *User      `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Topics []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}
