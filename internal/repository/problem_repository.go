package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algoprep/backend/internal/domain"
)

// problemRepository implements domain.ProblemRepository using GORM
type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository creates a new problem repository
func NewProblemRepository(db *gorm.DB) domain.ProblemRepository {
	return &problemRepository{db: db}
}

// Create creates a new problem in the database
func (r *problemRepository) Create(problem *domain.Problem) error {
	return r.db.Create(problem).Error
}

// CreateBatch creates multiple problems in a single transaction
func (r *problemRepository) CreateBatch(problems []domain.Problem) error {
	return r.db.CreateInBatches(problems, 50).Error
}

// FindByID finds a problem by its ID
func (r *problemRepository) FindByID(id uuid.UUID) (*domain.Problem, error) {
	var problem domain.Problem
	result := r.db.Where("id = ?", id).First(&problem)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProblemNotFound
		}
		return nil, result.Error
	}
	return &problem, nil
}

// FindBySlug finds a problem by its slug
func (r *problemRepository) FindBySlug(slug string) (*domain.Problem, error) {
	var problem domain.Problem
	result := r.db.Where("slug = ?", slug).First(&problem)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProblemNotFound
		}
		return nil, result.Error
	}
	return &problem, nil
}

// FindAll returns all problems ordered by their sheet position
func (r *problemRepository) FindAll() ([]domain.Problem, error) {
	var problems []domain.Problem
	result := r.db.Order("sheet_index ASC").Find(&problems)
	return problems, result.Error
}

// FindByCategory returns all problems in the given category
func (r *problemRepository) FindByCategory(category string) ([]domain.Problem, error) {
	var problems []domain.Problem
	result := r.db.Where("category = ?", category).Order("sheet_index ASC").Find(&problems)
	return problems, result.Error
}

// FindByDifficulty returns all problems with the specified difficulty
func (r *problemRepository) FindByDifficulty(difficulty domain.Difficulty) ([]domain.Problem, error) {
	var problems []domain.Problem
	result := r.db.Where("difficulty = ?", difficulty).Order("sheet_index ASC").Find(&problems)
	return problems, result.Error
}

// Categories returns the distinct category names, sorted alphabetically
func (r *problemRepository) Categories() ([]string, error) {
	var categories []string
	result := r.db.Model(&domain.Problem{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories)
	return categories, result.Error
}

// Count returns the total number of problems
func (r *problemRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&domain.Problem{}).Count(&count)
	return count, result.Error
}

// WithContext returns a repository with the given context for tracing
func (r *problemRepository) WithContext(ctx context.Context) domain.ProblemRepository {
	return &problemRepository{db: r.db.WithContext(ctx)}
}
