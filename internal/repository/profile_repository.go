package repository

import (
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/talentbridge/profile-matcher/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db}
}

func (r *ProfileRepository) FindByID(id string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *ProfileRepository) GetAll() ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) Update(profile *model.Profile) error {
	return r.db.Save(profile).Error
}

// ProfileFilter narrows the attribute search. Zero values mean "any".
type ProfileFilter struct {
	EmpID    string
	Name     string
	Vertical string
	Skills   []string
	MinExp   float64
	MaxExp   float64
}

func (r *ProfileRepository) Search(filter ProfileFilter, page, pageSize int) ([]model.Profile, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query := r.db.Model(&model.Profile{})

	if filter.EmpID != "" {
		query = query.Where("emp_id ILIKE ?", "%"+filter.EmpID+"%")
	}
	if filter.Name != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Vertical != "" {
		query = query.Where("vertical ILIKE ?", "%"+filter.Vertical+"%")
	}
	for _, skill := range filter.Skills {
		skill = strings.TrimSpace(strings.ToLower(skill))
		if skill != "" {
			query = query.Where("skills ILIKE ?", "%"+skill+"%")
		}
	}
	if filter.MinExp > 0 {
		query = query.Where("experience_years >= ?", filter.MinExp)
	}
	if filter.MaxExp > 0 {
		query = query.Where("experience_years <= ?", filter.MaxExp)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []model.Profile
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&profiles).Error
	return profiles, total, err
}

// SearchByEmbedding returns the profiles closest to the given vector,
// nearest first.
func (r *ProfileRepository) SearchByEmbedding(embedding pgvector.Vector, topK int) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.Raw(`
        SELECT *, embedding <=> ? AS distance
        FROM profiles
        ORDER BY embedding <=> ?
        LIMIT ?
    `, embedding, embedding, topK).Scan(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) CountProfiles() (int64, error) {
	var count int64
	err := r.db.Model(&model.Profile{}).Count(&count).Error
	return count, err
}
