package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algoprep/backend/internal/domain"
)

// progressRepository implements domain.ProgressRepository using GORM
type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *gorm.DB) domain.ProgressRepository {
	return &progressRepository{db: db}
}

// FindByUser returns all progress entries for a user
func (r *progressRepository) FindByUser(userID uuid.UUID) ([]domain.ProgressEntry, error) {
	var entries []domain.ProgressEntry
	result := r.db.Where("user_id = ?", userID).Find(&entries)
	return entries, result.Error
}

// FindByUserAndProblem finds the unique progress entry for a (user, problem)
// pair, or nil when the user has never submitted to the problem
func (r *progressRepository) FindByUserAndProblem(userID, problemID uuid.UUID) (*domain.ProgressEntry, error) {
	var entry domain.ProgressEntry
	result := r.db.
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &entry, nil
}

// Save inserts or updates a progress entry
func (r *progressRepository) Save(entry *domain.ProgressEntry) error {
	return r.db.Save(entry).Error
}

// StatusByProblem returns the user's progress status keyed by problem ID,
// used to annotate catalog listings in one query
func (r *progressRepository) StatusByProblem(userID uuid.UUID) (map[uuid.UUID]domain.ProgressStatus, error) {
	var entries []domain.ProgressEntry
	result := r.db.
		Select("problem_id", "status").
		Where("user_id = ?", userID).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	statuses := make(map[uuid.UUID]domain.ProgressStatus, len(entries))
	for _, entry := range entries {
		statuses[entry.ProblemID] = entry.Status
	}
	return statuses, nil
}

// WithContext returns a repository with the given context for tracing
func (r *progressRepository) WithContext(ctx context.Context) domain.ProgressRepository {
	return &progressRepository{db: r.db.WithContext(ctx)}
}
