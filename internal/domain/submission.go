package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the aggregate verdict of running a submission against
// all of a problem's test cases
type SubmissionStatus string

const (
	StatusAccepted          SubmissionStatus = "Accepted"
	StatusWrongAnswer       SubmissionStatus = "Wrong Answer"
	StatusRuntimeError      SubmissionStatus = "Runtime Error"
	StatusTimeLimitExceeded SubmissionStatus = "Time Limit Exceeded"
)

// Submission is an append-only record of a single evaluation attempt.
// Rows are never mutated or deleted once created.
type Submission struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index;index:idx_submissions_user_problem"`
	ProblemID       uuid.UUID        `json:"problem_id" gorm:"type:uuid;not null;index;index:idx_submissions_user_problem"`
	Code            string           `json:"code" gorm:"type:text;not null"`
	Language        Language         `json:"language" gorm:"type:varchar(20);not null"`
	Status          SubmissionStatus `json:"status" gorm:"type:varchar(20);not null"`
	TestCasesPassed int              `json:"test_cases_passed" gorm:"not null"`
	TotalTestCases  int              `json:"total_test_cases" gorm:"not null"`
	SubmittedAt     time.Time        `json:"submitted_at" gorm:"not null;index"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Problem Problem `json:"-" gorm:"foreignKey:ProblemID"`
}

// TableName specifies the table name for GORM
func (Submission) TableName() string {
	return "submissions"
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	Create(submission *Submission) error
	FindByID(id uuid.UUID) (*Submission, error)
	FindRecentByUser(userID uuid.UUID, limit int) ([]Submission, error)
	FindRecentByUserAndProblem(userID, problemID uuid.UUID, limit int) ([]Submission, error)
}

// SubmissionResponse represents a submission in API responses
type SubmissionResponse struct {
	ID              uuid.UUID        `json:"id"`
	ProblemID       uuid.UUID        `json:"problem_id"`
	Code            string           `json:"code"`
	Language        Language         `json:"language"`
	Status          SubmissionStatus `json:"status"`
	TestCasesPassed int              `json:"test_cases_passed"`
	TotalTestCases  int              `json:"total_test_cases"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

// ToResponse converts a Submission to a SubmissionResponse
func (s *Submission) ToResponse() SubmissionResponse {
	return SubmissionResponse{
		ID:              s.ID,
		ProblemID:       s.ProblemID,
		Code:            s.Code,
		Language:        s.Language,
		Status:          s.Status,
		TestCasesPassed: s.TestCasesPassed,
		TotalTestCases:  s.TotalTestCases,
		SubmittedAt:     s.SubmittedAt,
	}
}

// SubmitRequest is the body of a code submission
type SubmitRequest struct {
	ProblemID uuid.UUID `json:"problem_id" binding:"required"`
	Code      string    `json:"code" binding:"required"`
	Language  Language  `json:"language" binding:"required"`
}

// TestCaseDetail is the per-test-case outcome reported back to the caller
type TestCaseDetail struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}

// SubmitResult is the verdict payload returned from a submission
type SubmitResult struct {
	SubmissionID    uuid.UUID        `json:"submission_id"`
	Status          SubmissionStatus `json:"status"`
	TestCasesPassed int              `json:"test_cases_passed"`
	TotalTestCases  int              `json:"total_test_cases"`
	Details         []TestCaseDetail `json:"details"`
}
