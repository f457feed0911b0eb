package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algoprep/backend/internal/domain"
)

// statsRepository implements domain.StatsRepository using GORM
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new user stats repository
func NewStatsRepository(db *gorm.DB) domain.StatsRepository {
	return &statsRepository{db: db}
}

// FindByUser returns the user's stats row, or nil when the user has never
// solved a problem
func (r *statsRepository) FindByUser(userID uuid.UUID) (*domain.UserStats, error) {
	var stats domain.UserStats
	result := r.db.Where("user_id = ?", userID).First(&stats)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &stats, nil
}

// Save inserts or updates a stats row
func (r *statsRepository) Save(stats *domain.UserStats) error {
	return r.db.Save(stats).Error
}

// WithContext returns a repository with the given context for tracing
func (r *statsRepository) WithContext(ctx context.Context) domain.StatsRepository {
	return &statsRepository{db: r.db.WithContext(ctx)}
}
