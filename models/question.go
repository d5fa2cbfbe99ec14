package models

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubtopicID uuid.UUID `gorm:"type:uuid;not null;index" json:"subtopic_id"`
	Subtopic   *Subtopic `gorm:"foreignKey:SubtopicID;constraint:OnDelete:CASCADE;" json:"-"`

	CreatedBy     *uuid.UUID `gorm:"type:uuid;default:null" json:"created_by"`
	CreatedByUser *User      `gorm:"foreignKey:CreatedBy" json:"created_by_user,omitempty"`

	Text       string `gorm:"type:text;not null" json:"text"`
	Difficulty string `gorm:"size:20;default:'medium'" json:"difficulty"` // easy|medium|hard
	// true si la generó el modelo, false si la escribió un profesor
	Generated bool       `gorm:"default:false" json:"generated"`
	Verified  bool       `gorm:"default:false" json:"verified"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Choices   []Choice   `gorm:"foreignKey:QuestionID" json:"choices"`
}

type Choice struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE;" json:"-"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"default:false" json:"is_correct"`
}
