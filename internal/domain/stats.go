package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStats is the per-user rollup of solve counters and daily streaks.
// Counters are monotonically non-decreasing and advance exactly once per
// distinct problem, on its first Accepted submission. Streaks count
// consecutive calendar days with at least one Accepted submission.
type UserStats struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	TotalSolved    int        `json:"total_solved" gorm:"not null;default:0"`
	EasySolved     int        `json:"easy_solved" gorm:"not null;default:0"`
	MediumSolved   int        `json:"medium_solved" gorm:"not null;default:0"`
	HardSolved     int        `json:"hard_solved" gorm:"not null;default:0"`
	CurrentStreak  int        `json:"current_streak" gorm:"not null;default:0"`
	MaxStreak      int        `json:"max_streak" gorm:"not null;default:0"`
	LastSolvedDate *time.Time `json:"last_solved_date"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (UserStats) TableName() string {
	return "user_stats"
}

// StatsRepository defines the interface for user stats data access
type StatsRepository interface {
	FindByUser(userID uuid.UUID) (*UserStats, error)
	Save(stats *UserStats) error
}

// StatsResponse represents user stats in API responses. A user with no stats
// row gets all-zero defaults.
type StatsResponse struct {
	TotalSolved    int        `json:"total_solved"`
	EasySolved     int        `json:"easy_solved"`
	MediumSolved   int        `json:"medium_solved"`
	HardSolved     int        `json:"hard_solved"`
	CurrentStreak  int        `json:"current_streak"`
	MaxStreak      int        `json:"max_streak"`
	LastSolvedDate *time.Time `json:"last_solved_date,omitempty"`
}

// ToResponse converts UserStats to a StatsResponse
func (s *UserStats) ToResponse() StatsResponse {
	return StatsResponse{
		TotalSolved:    s.TotalSolved,
		EasySolved:     s.EasySolved,
		MediumSolved:   s.MediumSolved,
		HardSolved:     s.HardSolved,
		CurrentStreak:  s.CurrentStreak,
		MaxStreak:      s.MaxStreak,
		LastSolvedDate: s.LastSolvedDate,
	}
}

// AddSolve applies an Accepted submission for a newly solved problem to the
// difficulty counters
func (s *UserStats) AddSolve(difficulty Difficulty) {
	s.TotalSolved++
	switch difficulty {
	case DifficultyEasy:
		s.EasySolved++
	case DifficultyMedium:
		s.MediumSolved++
	case DifficultyHard:
		s.HardSolved++
	}
}
