package models

import (
	"time"

	"github.com/google/uuid"
)

// Estados del procesado de un fichero subido
const (
	FileStatusUploaded   = "uploaded"
	FileStatusExtracting = "extracting"
	FileStatusIndexing   = "indexing"
	FileStatusReady      = "ready"
	FileStatusError      = "error"
)

type File struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubtopicID uuid.UUID `gorm:"type:uuid;not null;index" json:"subtopic_id"`
	Subtopic   *Subtopic `gorm:"foreignKey:SubtopicID;constraint:OnDelete:CASCADE;" json:"-"`

	UploadedBy *uuid.UUID `gorm:"type:uuid;default:null" json:"uploaded_by"`
	User       *User      `gorm:"foreignKey:UploadedBy" json:"user,omitempty"`

	OriginalName  string     `gorm:"size:255;not null" json:"original_name"`
	FilePath      string     `gorm:"type:text;not null" json:"file_path"`
	FileType      string     `gorm:"size:50" json:"file_type"`
	FileSize      int64      `json:"file_size"` // bytes
	ExtractedText string     `gorm:"type:text" json:"-"`
	Status        string     `gorm:"size:30;default:'uploaded'" json:"status"`
	StatusError   string     `gorm:"type:text" json:"status_error,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
