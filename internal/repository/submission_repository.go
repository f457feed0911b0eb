package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algoprep/backend/internal/domain"
)

// submissionRepository implements domain.SubmissionRepository using GORM.
// Submissions are append-only: there are no update or delete paths.
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *gorm.DB) domain.SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create appends a new submission record
func (r *submissionRepository) Create(submission *domain.Submission) error {
	return r.db.Create(submission).Error
}

// FindByID finds a submission by its ID
func (r *submissionRepository) FindByID(id uuid.UUID) (*domain.Submission, error) {
	var submission domain.Submission
	result := r.db.Where("id = ?", id).First(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, result.Error
	}
	return &submission, nil
}

// FindRecentByUser returns the user's submissions, most recent first
func (r *submissionRepository) FindRecentByUser(userID uuid.UUID, limit int) ([]domain.Submission, error) {
	var submissions []domain.Submission
	result := r.db.
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&submissions)
	return submissions, result.Error
}

// FindRecentByUserAndProblem returns the user's submissions for one problem,
// most recent first
func (r *submissionRepository) FindRecentByUserAndProblem(userID, problemID uuid.UUID, limit int) ([]domain.Submission, error) {
	var submissions []domain.Submission
	result := r.db.
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&submissions)
	return submissions, result.Error
}

// WithContext returns a repository with the given context for tracing
func (r *submissionRepository) WithContext(ctx context.Context) domain.SubmissionRepository {
	return &submissionRepository{db: r.db.WithContext(ctx)}
}
