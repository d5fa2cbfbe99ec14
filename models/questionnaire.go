package models

import (
	"time"

	"github.com/google/uuid"
)

type Questionnaire struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject   *Subject  `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE;" json:"-"`

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid;default:null" json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Questions []Question `gorm:"many2many:questionnaire_questions" json:"questions,omitempty"`
}
