package domain

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Difficulty represents the difficulty level of a problem
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the three known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Language identifies one of the supported submission languages
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
)

// SupportedLanguages is the fixed set of languages problems carry starter code for
var SupportedLanguages = []Language{LanguageJavaScript, LanguagePython, LanguageJava, LanguageCPP}

// Valid reports whether l is a supported language
func (l Language) Valid() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

// Example is a worked example shown in the problem statement
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// TestCase is a single input/expected-output pair the judge runs a submission against
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Problem represents a coding problem from the practice sheet.
// Problems are immutable after seeding.
type Problem struct {
	ID          uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string              `json:"title" gorm:"not null"`
	Slug        string              `json:"slug" gorm:"uniqueIndex;not null"`
	Description string              `json:"description" gorm:"type:text;not null"`
	Difficulty  Difficulty          `json:"difficulty" gorm:"type:varchar(10);index;not null"`
	Category    string              `json:"category" gorm:"index;not null"`
	Tags        pq.StringArray      `json:"tags" gorm:"type:text[]"`
	Examples    []Example           `json:"examples" gorm:"serializer:json;type:jsonb"`
	Constraints pq.StringArray      `json:"constraints" gorm:"type:text[]"`
	StarterCode map[Language]string `json:"starter_code" gorm:"serializer:json;type:jsonb"`
	TestCases   []TestCase          `json:"-" gorm:"serializer:json;type:jsonb"`
	SheetIndex  int                 `json:"sheet_index" gorm:"uniqueIndex;not null"` // Curriculum ordering key

	// Relationships
	Submissions []Submission `json:"-" gorm:"foreignKey:ProblemID"`
}

// TableName specifies the table name for GORM
func (Problem) TableName() string {
	return "problems"
}

// ProblemRepository defines the interface for problem data access
type ProblemRepository interface {
	Create(problem *Problem) error
	CreateBatch(problems []Problem) error
	FindByID(id uuid.UUID) (*Problem, error)
	FindBySlug(slug string) (*Problem, error)
	FindAll() ([]Problem, error)
	FindByCategory(category string) ([]Problem, error)
	FindByDifficulty(difficulty Difficulty) ([]Problem, error)
	Categories() ([]string, error)
	Count() (int64, error)
}

// ProblemResponse represents a problem in API responses. UserStatus is the
// caller's progress on the problem ("solved"/"attempted") or null when the
// caller is anonymous or has never submitted to it.
type ProblemResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Difficulty  Difficulty          `json:"difficulty"`
	Category    string              `json:"category"`
	Tags        []string            `json:"tags"`
	Examples    []Example           `json:"examples"`
	Constraints []string            `json:"constraints"`
	StarterCode map[Language]string `json:"starter_code"`
	SheetIndex  int                 `json:"sheet_index"`
	UserStatus  *ProgressStatus     `json:"user_status"`
}

// ToResponse converts a Problem to a ProblemResponse with the given user status
func (p *Problem) ToResponse(status *ProgressStatus) ProblemResponse {
	return ProblemResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Difficulty:  p.Difficulty,
		Category:    p.Category,
		Tags:        p.Tags,
		Examples:    p.Examples,
		Constraints: p.Constraints,
		StarterCode: p.StarterCode,
		SheetIndex:  p.SheetIndex,
		UserStatus:  status,
	}
}

// ProblemSummary is the compact problem shape embedded in progress listings
type ProblemSummary struct {
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Category   string     `json:"category"`
}

// Summary converts a Problem to its compact form
func (p *Problem) Summary() ProblemSummary {
	return ProblemSummary{
		Title:      p.Title,
		Difficulty: p.Difficulty,
		Category:   p.Category,
	}
}

// CatalogStats represents live statistics about the seeded problem set
type CatalogStats struct {
	Total        int                `json:"total"`
	ByDifficulty map[Difficulty]int `json:"by_difficulty"`
	ByCategory   map[string]int     `json:"by_category"`
}

// ProblemFilter represents filtering options for catalog listings.
// Category takes precedence over Difficulty when both are set; Search is a
// case-insensitive substring match over title and tags applied after the
// indexed filter.
type ProblemFilter struct {
	Category   string
	Difficulty Difficulty
	Search     string
}
