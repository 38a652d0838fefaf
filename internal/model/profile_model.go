package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Profile struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EmpID           string          `gorm:"type:varchar(50);uniqueIndex" json:"emp_id"`
	Name            string          `gorm:"type:varchar(255)" json:"name"`
	Vertical        string          `gorm:"type:varchar(100)" json:"vertical"`
	Skills          string          `gorm:"type:text" json:"skills"`
	ExperienceYears float64         `gorm:"type:float" json:"experience_years"`
	ResumePath      string          `gorm:"type:varchar(512)" json:"resume_path"`
	ExtractedText   string          `gorm:"type:text" json:"-"`
	Embedding       pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	EmbeddingJSON   string          `gorm:"type:text" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Profile) TableName() string {
	return "profiles"
}
