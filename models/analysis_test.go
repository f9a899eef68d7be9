package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_LineLabel(t *testing.T) {
	assert.Equal(t, "3", Diagnostic{Line: 3}.LineLabel())
	assert.Equal(t, "Unknown", Diagnostic{Line: 0}.LineLabel())
	assert.Equal(t, "Unknown", Diagnostic{Line: -1}.LineLabel())
}

func TestAnalysisResult_HasErrorsAndWarnings(t *testing.T) {
	result := &AnalysisResult{
		SyntaxErrors: []Diagnostic{},
		Warnings:     []Diagnostic{},
	}
	assert.False(t, result.HasErrors())
	assert.False(t, result.HasWarnings())

	result.SyntaxErrors = append(result.SyntaxErrors, Diagnostic{Line: 1, Message: "bad"})
	result.Warnings = append(result.Warnings, Diagnostic{Line: 2, Message: "meh"})
	assert.True(t, result.HasErrors())
	assert.True(t, result.HasWarnings())
}

func TestAnalysisResult_ASTNotSerialized(t *testing.T) {
	result := &AnalysisResult{
		Language:     "python",
		LineCount:    1,
		SyntaxErrors: []Diagnostic{},
		Warnings:     []Diagnostic{},
		AST:          struct{ Secret string }{Secret: "opaque"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "opaque")
	// Empty diagnostic lists serialize as arrays, not null.
	assert.Contains(t, string(data), `"syntax_errors":[]`)
	assert.Contains(t, string(data), `"warnings":[]`)
}
