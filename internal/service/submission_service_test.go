package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algoprep/backend/internal/domain"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, time.March, d, hour, 0, 0, 0, time.UTC)
}

func TestAdvanceStreakFirstSolve(t *testing.T) {
	stats := &domain.UserStats{}

	advanceStreak(stats, day(1, 10))

	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.MaxStreak)
	require.NotNil(t, stats.LastSolvedDate)
	assert.Equal(t, day(1, 10), *stats.LastSolvedDate)
}

func TestAdvanceStreakConsecutiveDays(t *testing.T) {
	stats := &domain.UserStats{}

	advanceStreak(stats, day(1, 10))
	advanceStreak(stats, day(2, 8))

	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.MaxStreak)
}

func TestAdvanceStreakSameDayDoesNotDoubleCount(t *testing.T) {
	stats := &domain.UserStats{}

	advanceStreak(stats, day(1, 10))
	advanceStreak(stats, day(1, 23))

	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.MaxStreak)
	assert.Equal(t, day(1, 23), *stats.LastSolvedDate)
}

func TestAdvanceStreakGapResetsButKeepsMax(t *testing.T) {
	stats := &domain.UserStats{}

	advanceStreak(stats, day(1, 10))
	advanceStreak(stats, day(2, 10))
	// Day 3 skipped, solve again on day 4
	advanceStreak(stats, day(4, 10))

	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.MaxStreak)
}

func TestAdvanceStreakCrossesMidnight(t *testing.T) {
	stats := &domain.UserStats{}

	advanceStreak(stats, day(1, 23))
	advanceStreak(stats, day(2, 0))

	assert.Equal(t, 2, stats.CurrentStreak)
}

func submission(status domain.SubmissionStatus, at time.Time) *domain.Submission {
	return &domain.Submission{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ProblemID:   uuid.New(),
		Status:      status,
		SubmittedAt: at,
	}
}

func TestApplySubmissionFirstAttempt(t *testing.T) {
	entry := &domain.ProgressEntry{Status: domain.ProgressAttempted}
	sub := submission(domain.StatusWrongAnswer, day(1, 10))

	newlySolved := applySubmission(entry, sub)

	assert.False(t, newlySolved)
	assert.Equal(t, domain.ProgressAttempted, entry.Status)
	assert.Equal(t, day(1, 10), entry.LastAttempted)
	assert.Nil(t, entry.BestSubmissionID)
}

func TestApplySubmissionAcceptedPromotes(t *testing.T) {
	entry := &domain.ProgressEntry{Status: domain.ProgressAttempted}
	sub := submission(domain.StatusAccepted, day(1, 10))

	newlySolved := applySubmission(entry, sub)

	assert.True(t, newlySolved)
	assert.Equal(t, domain.ProgressSolved, entry.Status)
	require.NotNil(t, entry.BestSubmissionID)
	assert.Equal(t, sub.ID, *entry.BestSubmissionID)
}

func TestApplySubmissionNeverDemotesSolved(t *testing.T) {
	accepted := submission(domain.StatusAccepted, day(1, 10))
	entry := &domain.ProgressEntry{Status: domain.ProgressAttempted}
	applySubmission(entry, accepted)

	// A later failure refreshes the attempt timestamp but keeps the solve
	failed := submission(domain.StatusRuntimeError, day(2, 9))
	newlySolved := applySubmission(entry, failed)

	assert.False(t, newlySolved)
	assert.Equal(t, domain.ProgressSolved, entry.Status)
	assert.Equal(t, day(2, 9), entry.LastAttempted)
	assert.Equal(t, accepted.ID, *entry.BestSubmissionID)
}

func TestApplySubmissionResolveUpdatesBestSubmission(t *testing.T) {
	first := submission(domain.StatusAccepted, day(1, 10))
	entry := &domain.ProgressEntry{Status: domain.ProgressAttempted}
	require.True(t, applySubmission(entry, first))

	// Solving again is not a new solve but retains the fresh accepted run
	second := submission(domain.StatusAccepted, day(3, 12))
	newlySolved := applySubmission(entry, second)

	assert.False(t, newlySolved)
	assert.Equal(t, second.ID, *entry.BestSubmissionID)
}

func TestAddSolveCounters(t *testing.T) {
	stats := &domain.UserStats{}

	stats.AddSolve(domain.DifficultyEasy)
	stats.AddSolve(domain.DifficultyEasy)
	stats.AddSolve(domain.DifficultyMedium)
	stats.AddSolve(domain.DifficultyHard)

	assert.Equal(t, 4, stats.TotalSolved)
	assert.Equal(t, 2, stats.EasySolved)
	assert.Equal(t, 1, stats.MediumSolved)
	assert.Equal(t, 1, stats.HardSolved)
}
