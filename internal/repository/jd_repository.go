package repository

import (
	"github.com/pgvector/pgvector-go"
	"github.com/talentbridge/profile-matcher/internal/model"
	"gorm.io/gorm"
)

type JDRepository struct {
	db *gorm.DB
}

func NewJDRepository(db *gorm.DB) *JDRepository {
	return &JDRepository{db}
}

func (r *JDRepository) FindByID(id string) (*model.JD, error) {
	var jd model.JD
	err := r.db.First(&jd, "id = ?", id).Error
	return &jd, err
}

func (r *JDRepository) GetAll() ([]model.JD, error) {
	var jds []model.JD
	err := r.db.Find(&jds).Error
	return jds, err
}

func (r *JDRepository) Update(jd *model.JD) error {
	return r.db.Save(jd).Error
}

// SearchByEmbedding returns the JDs closest to the given vector, nearest
// first (pgvector cosine distance).
func (r *JDRepository) SearchByEmbedding(embedding pgvector.Vector, topK int) ([]model.JD, error) {
	var jds []model.JD
	err := r.db.Raw(`
        SELECT *, embedding <=> ? AS distance
        FROM jds
        ORDER BY embedding <=> ?
        LIMIT ?
    `, embedding, embedding, topK).Scan(&jds).Error
	return jds, err
}

func (r *JDRepository) CountJDs() (int64, error) {
	var count int64
	err := r.db.Model(&model.JD{}).Count(&count).Error
	return count, err
}
