package models

import (
	"time"

	"github.com/google/uuid"
)

type Subtopic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID     uuid.UUID `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic       *Topic    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE;" json:"-"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Questions []Question `gorm:"foreignKey:SubtopicID" json:"questions,omitempty"`
	Files     []File     `gorm:"foreignKey:SubtopicID" json:"files,omitempty"`
}
