package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/algoprep/backend/internal/domain"
	"github.com/algoprep/backend/internal/infrastructure"
	"github.com/algoprep/backend/internal/judge"
	"github.com/algoprep/backend/internal/repository"
)

// submissionListLimit caps submission history listings
const submissionListLimit = 50

// SubmissionService owns the submit pipeline: evaluate the candidate code,
// append the submission, upsert the progress entry and conditionally advance
// the user's stats and streak - all persisted in one transaction.
type SubmissionService struct {
	db          *gorm.DB
	problemRepo domain.ProblemRepository
	judge       *judge.Service
	metrics     *infrastructure.TelemetryMetrics
	tracer      trace.Tracer
	logger      *zap.Logger

	// userLocks serializes submissions per user so concurrent Accepted
	// submissions cannot double-increment counters or corrupt the streak.
	// Different users never contend.
	userLocks sync.Map
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	db *gorm.DB,
	problemRepo domain.ProblemRepository,
	judgeService *judge.Service,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		db:          db,
		problemRepo: problemRepo,
		judge:       judgeService,
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
	}
}

// Submit evaluates code against the problem's test cases and records the
// attempt. The caller must be authenticated; the identity is passed in
// explicitly, never read from ambient state.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, req *domain.SubmitRequest) (*domain.SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "SubmissionService.Submit")
	defer span.End()

	if userID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if !req.Language.Valid() {
		return nil, domain.ErrUnsupportedLanguage
	}

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("problem.id", req.ProblemID.String()),
		attribute.String("submission.language", string(req.Language)),
	)

	// Resolve the problem before any evaluation work begins
	problem, err := s.problemRepo.FindByID(req.ProblemID)
	if err != nil {
		return nil, err
	}

	s.metrics.ActiveEvaluations.Add(ctx, 1)
	start := time.Now()
	verdict := s.judge.Evaluate(ctx, req.Code, req.Language, problem.TestCases)
	s.metrics.ActiveEvaluations.Add(ctx, -1)
	s.metrics.EvaluationDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("language", string(req.Language))),
	)

	submission := &domain.Submission{
		ID:              uuid.New(),
		UserID:          userID,
		ProblemID:       problem.ID,
		Code:            req.Code,
		Language:        req.Language,
		Status:          verdict.Status,
		TestCasesPassed: verdict.Passed,
		TotalTestCases:  len(problem.TestCases),
		SubmittedAt:     time.Now(),
	}

	newlySolved, err := s.record(ctx, submission, problem.Difficulty)
	if err != nil {
		s.logger.Error("Failed to record submission",
			zap.String("user_id", userID.String()),
			zap.String("problem_id", problem.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.SubmissionsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(verdict.Status))),
	)
	if newlySolved {
		s.metrics.ProblemsSolved.Add(ctx, 1,
			metric.WithAttributes(attribute.String("difficulty", string(problem.Difficulty))),
		)
	}

	s.logger.Info("Submission recorded",
		zap.String("user_id", userID.String()),
		zap.String("problem_id", problem.ID.String()),
		zap.String("status", string(verdict.Status)),
		zap.Int("passed", verdict.Passed),
		zap.Int("total", len(problem.TestCases)),
	)

	span.SetAttributes(attribute.String("submission.status", string(verdict.Status)))

	return &domain.SubmitResult{
		SubmissionID:    submission.ID,
		Status:          verdict.Status,
		TestCasesPassed: verdict.Passed,
		TotalTestCases:  len(problem.TestCases),
		Details:         verdict.Details,
	}, nil
}

// record persists the submission, progress and stats updates as one atomic
// unit, serialized per user. Returns whether this submission solved the
// problem for the first time.
func (s *SubmissionService) record(ctx context.Context, submission *domain.Submission, difficulty domain.Difficulty) (bool, error) {
	lock := s.lockFor(submission.UserID)
	lock.Lock()
	defer lock.Unlock()

	newlySolved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubmissionRepository(tx).Create(submission); err != nil {
			return err
		}

		solved, err := s.upsertProgress(tx, submission)
		if err != nil {
			return err
		}
		newlySolved = solved

		if submission.Status == domain.StatusAccepted {
			if err := s.updateStats(tx, submission, difficulty, solved); err != nil {
				return err
			}
		}
		return nil
	})
	return newlySolved, err
}

// upsertProgress refreshes the (user, problem) progress entry. Status is
// monotonic: an Accepted verdict promotes to solved and a later failure
// never demotes it. BestSubmissionID tracks the most recent Accepted
// submission only.
func (s *SubmissionService) upsertProgress(tx *gorm.DB, submission *domain.Submission) (bool, error) {
	progressRepo := repository.NewProgressRepository(tx)

	entry, err := progressRepo.FindByUserAndProblem(submission.UserID, submission.ProblemID)
	if err != nil {
		return false, err
	}
	if entry == nil {
		entry = &domain.ProgressEntry{
			ID:        uuid.New(),
			UserID:    submission.UserID,
			ProblemID: submission.ProblemID,
			Status:    domain.ProgressAttempted,
		}
	}

	newlySolved := applySubmission(entry, submission)
	return newlySolved, progressRepo.Save(entry)
}

// applySubmission folds one submission into a progress entry and reports
// whether it solved the problem for the first time
func applySubmission(entry *domain.ProgressEntry, submission *domain.Submission) bool {
	entry.LastAttempted = submission.SubmittedAt

	if submission.Status != domain.StatusAccepted {
		return false
	}

	newlySolved := entry.Status != domain.ProgressSolved
	entry.Status = domain.ProgressSolved
	id := submission.ID
	entry.BestSubmissionID = &id
	return newlySolved
}

// updateStats advances the user's rollup for an Accepted submission.
// Counters and streaks are decoupled: counters advance exactly once per
// distinct problem (on its first solve), while the streak advances at most
// once per calendar day, on any Accepted submission.
func (s *SubmissionService) updateStats(tx *gorm.DB, submission *domain.Submission, difficulty domain.Difficulty, newlySolved bool) error {
	statsRepo := repository.NewStatsRepository(tx)

	stats, err := statsRepo.FindByUser(submission.UserID)
	if err != nil {
		return err
	}
	if stats == nil {
		stats = &domain.UserStats{
			ID:     uuid.New(),
			UserID: submission.UserID,
		}
	}

	if newlySolved {
		stats.AddSolve(difficulty)
	}
	advanceStreak(stats, submission.SubmittedAt)

	return statsRepo.Save(stats)
}

// advanceStreak applies the daily streak rules for an Accepted submission at
// now: a day already counted leaves the streak untouched, a solve the day
// after the last one extends it, anything else resets it to 1.
func advanceStreak(stats *domain.UserStats, now time.Time) {
	today := calendarDate(now)
	switch {
	case stats.LastSolvedDate == nil:
		stats.CurrentStreak = 1
	case calendarDate(*stats.LastSolvedDate).Equal(today):
		// Streak already counted today
	case calendarDate(*stats.LastSolvedDate).Equal(today.AddDate(0, 0, -1)):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}

	if stats.CurrentStreak > stats.MaxStreak {
		stats.MaxStreak = stats.CurrentStreak
	}
	solvedAt := now
	stats.LastSolvedDate = &solvedAt
}

// calendarDate truncates a timestamp to its local calendar date
func calendarDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// GetSubmissions returns the caller's submission history, most recent first,
// capped at 50, optionally narrowed to one problem.
func (s *SubmissionService) GetSubmissions(ctx context.Context, userID uuid.UUID, problemID *uuid.UUID) ([]domain.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "SubmissionService.GetSubmissions")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID.String()))

	submissionRepo := repository.NewSubmissionRepository(s.db.WithContext(ctx))
	if problemID != nil {
		return submissionRepo.FindRecentByUserAndProblem(userID, *problemID, submissionListLimit)
	}
	return submissionRepo.FindRecentByUser(userID, submissionListLimit)
}

// lockFor returns the per-user submission mutex
func (s *SubmissionService) lockFor(userID uuid.UUID) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
