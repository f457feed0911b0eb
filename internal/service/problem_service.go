package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/algoprep/backend/internal/domain"
)

const (
	problemCacheSize = 256
	problemCacheTTL  = 10 * time.Minute
)

// ProblemService handles catalog-related business logic. The catalog is
// immutable after seeding, so individual problems are cached in-process.
type ProblemService struct {
	problemRepo  domain.ProblemRepository
	progressRepo domain.ProgressRepository
	tracer       trace.Tracer
	logger       *zap.Logger
	cache        *lru.LRU[uuid.UUID, *domain.Problem]
}

// NewProblemService creates a new problem service
func NewProblemService(
	problemRepo domain.ProblemRepository,
	progressRepo domain.ProgressRepository,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo:  problemRepo,
		progressRepo: progressRepo,
		tracer:       tracer,
		logger:       logger,
		cache:        lru.NewLRU[uuid.UUID, *domain.Problem](problemCacheSize, nil, problemCacheTTL),
	}
}

// ListProblems returns the catalog filtered per filter rules, ordered by
// sheet position, each entry annotated with the caller's progress status.
// userID is uuid.Nil for anonymous callers; their status is always null.
func (s *ProblemService) ListProblems(ctx context.Context, filter domain.ProblemFilter, userID uuid.UUID) ([]domain.ProblemResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.ListProblems")
	defer span.End()

	span.SetAttributes(
		attribute.String("filter.category", filter.Category),
		attribute.String("filter.difficulty", string(filter.Difficulty)),
		attribute.String("filter.search", filter.Search),
	)

	// Category takes precedence over difficulty; only one indexed filter
	// applies per query.
	var problems []domain.Problem
	var err error
	switch {
	case filter.Category != "":
		problems, err = s.problemRepo.FindByCategory(filter.Category)
	case filter.Difficulty != "":
		if !filter.Difficulty.Valid() {
			return nil, domain.ErrInvalidDifficulty
		}
		problems, err = s.problemRepo.FindByDifficulty(filter.Difficulty)
	default:
		problems, err = s.problemRepo.FindAll()
	}
	if err != nil {
		return nil, err
	}

	if filter.Search != "" {
		problems = filterBySearch(problems, filter.Search)
	}

	statuses, err := s.userStatuses(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.ProblemResponse, len(problems))
	for i, problem := range problems {
		responses[i] = problem.ToResponse(statusFor(statuses, problem.ID))
	}
	return responses, nil
}

// GetProblemByID returns a single problem annotated with the caller's status
func (s *ProblemService) GetProblemByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.ProblemResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetProblemByID")
	defer span.End()

	span.SetAttributes(attribute.String("problem.id", id.String()))

	problem, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	status, err := s.userStatusFor(userID, id)
	if err != nil {
		return nil, err
	}

	response := problem.ToResponse(status)
	return &response, nil
}

// GetProblemBySlug returns a single problem by its URL slug
func (s *ProblemService) GetProblemBySlug(ctx context.Context, slug string, userID uuid.UUID) (*domain.ProblemResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetProblemBySlug")
	defer span.End()

	span.SetAttributes(attribute.String("problem.slug", slug))

	problem, err := s.problemRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	s.cache.Add(problem.ID, problem)

	status, err := s.userStatusFor(userID, problem.ID)
	if err != nil {
		return nil, err
	}

	response := problem.ToResponse(status)
	return &response, nil
}

// GetCategories returns the distinct category names, sorted alphabetically
func (s *ProblemService) GetCategories(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetCategories")
	defer span.End()

	return s.problemRepo.Categories()
}

// GetCatalogStats returns live counts over the seeded catalog
func (s *ProblemService) GetCatalogStats(ctx context.Context) (*domain.CatalogStats, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetCatalogStats")
	defer span.End()

	problems, err := s.problemRepo.FindAll()
	if err != nil {
		return nil, err
	}

	stats := &domain.CatalogStats{
		Total:        len(problems),
		ByDifficulty: make(map[domain.Difficulty]int),
		ByCategory:   make(map[string]int),
	}
	for _, p := range problems {
		stats.ByDifficulty[p.Difficulty]++
		stats.ByCategory[p.Category]++
	}
	return stats, nil
}

// lookup fetches a problem through the in-process cache. Safe because the
// catalog never changes after seeding.
func (s *ProblemService) lookup(id uuid.UUID) (*domain.Problem, error) {
	if problem, ok := s.cache.Get(id); ok {
		return problem, nil
	}
	problem, err := s.problemRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, problem)
	return problem, nil
}

// userStatuses loads the caller's full progress map, or nil for anonymous
func (s *ProblemService) userStatuses(userID uuid.UUID) (map[uuid.UUID]domain.ProgressStatus, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.progressRepo.StatusByProblem(userID)
}

// userStatusFor loads the caller's status on one problem, or nil
func (s *ProblemService) userStatusFor(userID, problemID uuid.UUID) (*domain.ProgressStatus, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	entry, err := s.progressRepo.FindByUserAndProblem(userID, problemID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	status := entry.Status
	return &status, nil
}

func statusFor(statuses map[uuid.UUID]domain.ProgressStatus, problemID uuid.UUID) *domain.ProgressStatus {
	if statuses == nil {
		return nil
	}
	status, ok := statuses[problemID]
	if !ok {
		return nil
	}
	return &status
}

// filterBySearch keeps problems whose title or any tag contains the search
// term, case-insensitively
func filterBySearch(problems []domain.Problem, search string) []domain.Problem {
	needle := strings.ToLower(search)
	matched := make([]domain.Problem, 0, len(problems))
	for _, p := range problems {
		if matchesSearch(&p, needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

func matchesSearch(p *domain.Problem, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
