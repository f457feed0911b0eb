package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProgressStatus is a user's furthest-reached state on a problem
type ProgressStatus string

const (
	ProgressAttempted ProgressStatus = "attempted"
	ProgressSolved    ProgressStatus = "solved"
)

// ProgressEntry is the durable per-(user, problem) progress record. Status is
// monotonic: once solved it never regresses to attempted. LastAttempted is
// refreshed on every submission regardless of verdict; BestSubmissionID is
// only set or overwritten by an Accepted submission.
type ProgressEntry struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_progress_user_problem"`
	ProblemID        uuid.UUID      `json:"problem_id" gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_problem"`
	Status           ProgressStatus `json:"status" gorm:"type:varchar(10);not null"`
	LastAttempted    time.Time      `json:"last_attempted" gorm:"not null"`
	BestSubmissionID *uuid.UUID     `json:"best_submission_id" gorm:"type:uuid"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Problem Problem `json:"-" gorm:"foreignKey:ProblemID"`
}

// TableName specifies the table name for GORM
func (ProgressEntry) TableName() string {
	return "user_progress"
}

// ProgressRepository defines the interface for progress data access
type ProgressRepository interface {
	FindByUser(userID uuid.UUID) ([]ProgressEntry, error)
	FindByUserAndProblem(userID, problemID uuid.UUID) (*ProgressEntry, error)
	Save(entry *ProgressEntry) error
	StatusByProblem(userID uuid.UUID) (map[uuid.UUID]ProgressStatus, error)
}

// ProgressResponse is a progress entry joined with its problem summary
type ProgressResponse struct {
	ProblemID        uuid.UUID      `json:"problem_id"`
	Status           ProgressStatus `json:"status"`
	LastAttempted    time.Time      `json:"last_attempted"`
	BestSubmissionID *uuid.UUID     `json:"best_submission_id"`
	Problem          ProblemSummary `json:"problem"`
}
