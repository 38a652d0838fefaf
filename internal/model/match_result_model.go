package model

import (
	"time"

	"github.com/google/uuid"
)

type MatchResult struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JDID        uuid.UUID `gorm:"type:uuid;index" json:"jd_id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;index" json:"profile_id"`
	Score       float64   `gorm:"type:float" json:"score"`
	Label       string    `gorm:"type:varchar(50)" json:"label"`
	Explanation string    `gorm:"type:jsonb" json:"explanation"`
	MatchType   string    `gorm:"type:varchar(20);index" json:"match_type"` // jd-to-resume, resume-to-jd, one-to-one
	Latency     float64   `gorm:"type:float" json:"latency"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *MatchResult) TableName() string {
	return "match_results"
}
