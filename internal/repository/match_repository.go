package repository

import (
	"errors"
	"fmt"

	"github.com/talentbridge/profile-matcher/internal/model"
	"gorm.io/gorm"
)

// ErrCommitFailed marks a batch persistence failure. The batch is rolled
// back as a whole; per-candidate results already surfaced in memory are not
// stored.
var ErrCommitFailed = errors.New("match batch commit failed")

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db}
}

// SaveBatch persists all records of one match run and flags the JD as
// compared and ranked inside the same transaction. Any failure rolls the
// whole batch back and reports ErrCommitFailed.
func (r *MatchRepository) SaveBatch(records []model.MatchResult, jd *model.JD) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}
		if jd != nil {
			jd.Compared = true
			jd.Ranked = true
			if err := tx.Save(jd).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}
	return nil
}

func (r *MatchRepository) FindByJD(jdID string) ([]model.MatchResult, error) {
	var results []model.MatchResult
	err := r.db.Where("jd_id = ?", jdID).Order("score DESC").Find(&results).Error
	return results, err
}

// MatchStats are the aggregates behind the agent health endpoint.
type MatchStats struct {
	TotalMatches int64
	CountByType  map[string]int64
	AvgLatency   map[string]float64
	AvgScore     float64
}

func (r *MatchRepository) Stats() (*MatchStats, error) {
	stats := &MatchStats{
		CountByType: make(map[string]int64),
		AvgLatency:  make(map[string]float64),
	}

	if err := r.db.Model(&model.MatchResult{}).Count(&stats.TotalMatches).Error; err != nil {
		return nil, err
	}

	type typeRow struct {
		MatchType  string
		Count      int64
		AvgLatency float64
	}
	var rows []typeRow
	err := r.db.Model(&model.MatchResult{}).
		Select("match_type, COUNT(*) AS count, COALESCE(AVG(latency), 0) AS avg_latency").
		Group("match_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.CountByType[row.MatchType] = row.Count
		stats.AvgLatency[row.MatchType] = row.AvgLatency
	}

	err = r.db.Model(&model.MatchResult{}).
		Select("COALESCE(AVG(score), 0)").
		Scan(&stats.AvgScore).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
