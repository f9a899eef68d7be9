package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debugtutor/backend/models"
)

func TestChecker_Check_EmptyInput(t *testing.T) {
	checker := NewChecker()

	tests := []struct {
		name     string
		code     string
		language string
	}{
		{name: "empty python", code: "", language: "python"},
		{name: "whitespace python", code: "   \n\t\n", language: "python"},
		{name: "empty javascript", code: "", language: "javascript"},
		{name: "whitespace go", code: "  \n  ", language: "go"},
		{name: "empty unsupported", code: "", language: "ruby"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(tt.code, tt.language)

			require.NotNil(t, result)
			assert.Equal(t, tt.language, result.Language)
			assert.Equal(t, 0, result.LineCount)
			assert.Empty(t, result.SyntaxErrors)
			assert.Empty(t, result.Warnings)
			assert.False(t, result.HasErrors())
		})
	}
}

func TestChecker_Check_UnsupportedLanguage(t *testing.T) {
	checker := NewChecker()

	result := checker.Check("puts 'hello'\nputs 'world'", "ruby")

	require.NotNil(t, result)
	assert.Equal(t, "ruby", result.Language)
	assert.Equal(t, 2, result.LineCount)
	require.Len(t, result.SyntaxErrors, 1)
	assert.Equal(t, models.KindUnsupportedLanguage, result.SyntaxErrors[0].Kind)
	assert.Equal(t, 1, result.SyntaxErrors[0].Line)
	assert.Contains(t, result.SyntaxErrors[0].Message, "ruby")
	assert.True(t, result.HasErrors())
}

func TestChecker_Check_LanguageNormalization(t *testing.T) {
	checker := NewChecker()

	tests := []struct {
		name     string
		language string
		want     string
	}{
		{name: "uppercase", language: "PYTHON", want: "python"},
		{name: "mixed case", language: "JavaScript", want: "javascript"},
		{name: "typescript keeps its name", language: "TypeScript", want: "typescript"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check("x = 1;", tt.language)

			require.NotNil(t, result)
			assert.Equal(t, tt.want, result.Language)
			assert.Empty(t, result.SyntaxErrors)
		})
	}
}

func TestChecker_Check_NonNilSlices(t *testing.T) {
	checker := NewChecker()

	result := checker.Check("fn main() {}", "rust")

	require.NotNil(t, result)
	assert.NotNil(t, result.SyntaxErrors)
	assert.NotNil(t, result.Warnings)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 1, countLines("x"))
	assert.Equal(t, 2, countLines("x\ny"))
	// A trailing newline starts one more (empty) line.
	assert.Equal(t, 3, countLines("x\ny\n"))
}
