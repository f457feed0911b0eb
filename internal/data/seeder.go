package data

import (
	_ "embed"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/algoprep/backend/internal/domain"
)

//go:embed problems.json
var sheetData []byte

// problemJSON represents the JSON structure for seeded problems
type problemJSON struct {
	Title       string                            `json:"title"`
	Description string                            `json:"description"`
	Difficulty  string                            `json:"difficulty"`
	Category    string                            `json:"category"`
	Tags        []string                          `json:"tags"`
	Examples    []domain.Example                  `json:"examples"`
	Constraints []string                          `json:"constraints"`
	StarterCode map[domain.Language]string        `json:"starterCode"`
	TestCases   []domain.TestCase                 `json:"testCases"`
	SheetIndex  int                               `json:"sheetIndex"`
}

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new database seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

// SeedProblems seeds the problems table with the embedded practice sheet.
// Idempotent: it no-ops when any problem already exists.
func (s *Seeder) SeedProblems() error {
	s.logger.Info("Starting to seed problems...")

	var count int64
	if err := s.db.Model(&domain.Problem{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.logger.Info("Problems already seeded, skipping",
			zap.Int64("count", count),
		)
		return nil
	}

	problems, err := EmbeddedProblems()
	if err != nil {
		return err
	}

	if err := s.db.CreateInBatches(problems, 50).Error; err != nil {
		return err
	}

	s.logger.Info("Successfully seeded problems",
		zap.Int("count", len(problems)),
	)

	return nil
}

// EmbeddedProblems returns the embedded practice sheet as domain models.
// Useful for testing or direct access.
func EmbeddedProblems() ([]domain.Problem, error) {
	var problemsJSON []problemJSON
	if err := json.Unmarshal(sheetData, &problemsJSON); err != nil {
		return nil, err
	}

	problems := make([]domain.Problem, len(problemsJSON))
	for i, p := range problemsJSON {
		problems[i] = domain.Problem{
			ID:          uuid.New(),
			Title:       p.Title,
			Slug:        slug.Make(p.Title),
			Description: p.Description,
			Difficulty:  domain.Difficulty(p.Difficulty),
			Category:    p.Category,
			Tags:        p.Tags,
			Examples:    p.Examples,
			Constraints: p.Constraints,
			StarterCode: p.StarterCode,
			TestCases:   p.TestCases,
			SheetIndex:  p.SheetIndex,
		}
	}

	return problems, nil
}
