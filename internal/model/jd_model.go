package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type JD struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobTitle      string          `gorm:"type:varchar(255)" json:"job_title"`
	ProjectCode   string          `gorm:"type:varchar(100)" json:"project_code"`
	UploadedBy    string          `gorm:"type:varchar(255)" json:"uploaded_by"`
	FilePath      string          `gorm:"type:varchar(512)" json:"file_path"`
	ExtractedText string          `gorm:"type:text" json:"-"`
	Embedding     pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	EmbeddingJSON string          `gorm:"type:text" json:"-"`
	Compared      bool            `gorm:"default:false" json:"compared"`
	Ranked        bool            `gorm:"default:false" json:"ranked"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (j *JD) TableName() string {
	return "jds"
}
