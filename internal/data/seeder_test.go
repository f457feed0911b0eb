package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algoprep/backend/internal/domain"
)

func TestEmbeddedProblems(t *testing.T) {
	problems, err := EmbeddedProblems()
	require.NoError(t, err)
	require.Len(t, problems, 8)

	slugs := make(map[string]bool)
	for i, p := range problems {
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Description)
		assert.NotEmpty(t, p.Category)
		assert.True(t, p.Difficulty.Valid(), "problem %q has difficulty %q", p.Title, p.Difficulty)
		assert.Equal(t, i+1, p.SheetIndex)
		assert.NotEmpty(t, p.TestCases, "problem %q has no test cases", p.Title)
		assert.NotEmpty(t, p.Examples, "problem %q has no examples", p.Title)

		assert.False(t, slugs[p.Slug], "duplicate slug %q", p.Slug)
		slugs[p.Slug] = true

		for _, language := range domain.SupportedLanguages {
			assert.Contains(t, p.StarterCode, language, "problem %q is missing %s starter code", p.Title, language)
		}
	}
}

func TestEmbeddedProblemsTwoSum(t *testing.T) {
	problems, err := EmbeddedProblems()
	require.NoError(t, err)

	twoSum := problems[0]
	assert.Equal(t, "Two Sum", twoSum.Title)
	assert.Equal(t, "two-sum", twoSum.Slug)
	assert.Equal(t, domain.DifficultyEasy, twoSum.Difficulty)
	assert.Equal(t, "Arrays", twoSum.Category)
	assert.Len(t, twoSum.TestCases, 3)
	assert.Contains(t, twoSum.Tags, "Hash Table")
}
