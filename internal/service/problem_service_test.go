package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/algoprep/backend/internal/data"
	"github.com/algoprep/backend/internal/domain"
)

// stubProblemRepo serves a fixed in-memory catalog
type stubProblemRepo struct {
	problems []domain.Problem
}

func (r *stubProblemRepo) Create(problem *domain.Problem) error {
	r.problems = append(r.problems, *problem)
	return nil
}

func (r *stubProblemRepo) CreateBatch(problems []domain.Problem) error {
	r.problems = append(r.problems, problems...)
	return nil
}

func (r *stubProblemRepo) FindByID(id uuid.UUID) (*domain.Problem, error) {
	for i := range r.problems {
		if r.problems[i].ID == id {
			return &r.problems[i], nil
		}
	}
	return nil, domain.ErrProblemNotFound
}

func (r *stubProblemRepo) FindBySlug(slug string) (*domain.Problem, error) {
	for i := range r.problems {
		if r.problems[i].Slug == slug {
			return &r.problems[i], nil
		}
	}
	return nil, domain.ErrProblemNotFound
}

func (r *stubProblemRepo) FindAll() ([]domain.Problem, error) {
	return r.problems, nil
}

func (r *stubProblemRepo) FindByCategory(category string) ([]domain.Problem, error) {
	var matched []domain.Problem
	for _, p := range r.problems {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *stubProblemRepo) FindByDifficulty(difficulty domain.Difficulty) ([]domain.Problem, error) {
	var matched []domain.Problem
	for _, p := range r.problems {
		if p.Difficulty == difficulty {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *stubProblemRepo) Categories() ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range r.problems {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *stubProblemRepo) Count() (int64, error) {
	return int64(len(r.problems)), nil
}

// stubProgressRepo serves fixed progress entries keyed by problem ID
type stubProgressRepo struct {
	entries map[uuid.UUID]domain.ProgressEntry
}

func (r *stubProgressRepo) FindByUser(userID uuid.UUID) ([]domain.ProgressEntry, error) {
	var entries []domain.ProgressEntry
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *stubProgressRepo) FindByUserAndProblem(userID, problemID uuid.UUID) (*domain.ProgressEntry, error) {
	if entry, ok := r.entries[problemID]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (r *stubProgressRepo) Save(entry *domain.ProgressEntry) error {
	r.entries[entry.ProblemID] = *entry
	return nil
}

func (r *stubProgressRepo) StatusByProblem(userID uuid.UUID) (map[uuid.UUID]domain.ProgressStatus, error) {
	statuses := make(map[uuid.UUID]domain.ProgressStatus, len(r.entries))
	for problemID, entry := range r.entries {
		statuses[problemID] = entry.Status
	}
	return statuses, nil
}

func newCatalogService(t *testing.T) (*ProblemService, *stubProblemRepo, *stubProgressRepo) {
	t.Helper()

	problems, err := data.EmbeddedProblems()
	require.NoError(t, err)

	problemRepo := &stubProblemRepo{problems: problems}
	progressRepo := &stubProgressRepo{entries: make(map[uuid.UUID]domain.ProgressEntry)}
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewProblemService(problemRepo, progressRepo, tracer, zap.NewNop()), problemRepo, progressRepo
}

func titles(responses []domain.ProblemResponse) []string {
	out := make([]string, len(responses))
	for i, r := range responses {
		out[i] = r.Title
	}
	return out
}

func TestListProblemsReturnsFullCatalog(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	responses, err := svc.ListProblems(context.Background(), domain.ProblemFilter{}, uuid.Nil)
	require.NoError(t, err)

	assert.Len(t, responses, 8)
	for _, r := range responses {
		assert.Nil(t, r.UserStatus)
	}
}

func TestListProblemsSearchMatchesTags(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	// "stack" is a tag on Valid Parentheses and Binary Tree Inorder Traversal,
	// not part of either title
	responses, err := svc.ListProblems(context.Background(), domain.ProblemFilter{Search: "stack"}, uuid.Nil)
	require.NoError(t, err)

	matched := titles(responses)
	assert.Contains(t, matched, "Valid Parentheses")
	assert.Contains(t, matched, "Binary Tree Inorder Traversal")
	assert.Len(t, matched, 2)
}

func TestListProblemsSearchMatchesTitle(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	responses, err := svc.ListProblems(context.Background(), domain.ProblemFilter{Search: "two sum"}, uuid.Nil)
	require.NoError(t, err)

	require.Len(t, responses, 1)
	assert.Equal(t, "Two Sum", responses[0].Title)
}

func TestListProblemsByCategory(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	responses, err := svc.ListProblems(context.Background(), domain.ProblemFilter{Category: "Arrays"}, uuid.Nil)
	require.NoError(t, err)

	assert.Len(t, responses, 5)
	for _, r := range responses {
		assert.Equal(t, "Arrays", r.Category)
	}
}

func TestListProblemsByDifficulty(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	responses, err := svc.ListProblems(context.Background(), domain.ProblemFilter{Difficulty: domain.DifficultyMedium}, uuid.Nil)
	require.NoError(t, err)

	assert.Len(t, responses, 2)
}

func TestListProblemsInvalidDifficulty(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	_, err := svc.ListProblems(context.Background(), domain.ProblemFilter{Difficulty: "Impossible"}, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)
}

func TestListProblemsAnnotatesUserStatus(t *testing.T) {
	svc, problemRepo, progressRepo := newCatalogService(t)

	userID := uuid.New()
	solved := problemRepo.problems[0]
	progressRepo.entries[solved.ID] = domain.ProgressEntry{
		UserID:    userID,
		ProblemID: solved.ID,
		Status:    domain.ProgressSolved,
	}

	responses, err := svc.ListProblems(context.Background(), domain.ProblemFilter{}, userID)
	require.NoError(t, err)

	annotated := 0
	for _, r := range responses {
		if r.ID == solved.ID {
			require.NotNil(t, r.UserStatus)
			assert.Equal(t, domain.ProgressSolved, *r.UserStatus)
			annotated++
		} else {
			assert.Nil(t, r.UserStatus)
		}
	}
	assert.Equal(t, 1, annotated)
}

func TestGetProblemBySlug(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	problem, err := svc.GetProblemBySlug(context.Background(), "two-sum", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", problem.Title)

	_, err = svc.GetProblemBySlug(context.Background(), "no-such-problem", uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrProblemNotFound)
}

func TestGetCategoriesSorted(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	categories, err := svc.GetCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Arrays", "Binary Tree", "Linked List", "Stack"}, categories)
}

func TestGetCatalogStatsLiveCounts(t *testing.T) {
	svc, problemRepo, _ := newCatalogService(t)

	stats, err := svc.GetCatalogStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 6, stats.ByDifficulty[domain.DifficultyEasy])
	assert.Equal(t, 2, stats.ByDifficulty[domain.DifficultyMedium])

	// Counts track the catalog, they are not hard-coded
	extra := domain.Problem{
		ID:         uuid.New(),
		Title:      "Climbing Stairs",
		Slug:       "climbing-stairs",
		Difficulty: domain.DifficultyEasy,
		Category:   "Dynamic Programming",
		SheetIndex: 9,
	}
	require.NoError(t, problemRepo.Create(&extra))

	stats, err = svc.GetCatalogStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 7, stats.ByDifficulty[domain.DifficultyEasy])
}

func TestMatchesSearchCaseInsensitive(t *testing.T) {
	problem := domain.Problem{
		Title: "Two Sum",
		Tags:  []string{"Array", "Hash Table"},
	}

	assert.True(t, matchesSearch(&problem, strings.ToLower("HASH")))
	assert.True(t, matchesSearch(&problem, "two"))
	assert.False(t, matchesSearch(&problem, "graph"))
}
