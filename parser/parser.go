package parser

import (
	"fmt"
	"strings"

	"github.com/debugtutor/backend/models"
)

// checkFunc is one per-language scan routine. Routines are independent and
// stateless so languages can be added or removed without touching the rest.
type checkFunc func(code string) *models.AnalysisResult

// Checker scans raw source text and produces a structured list of syntax
// errors and warnings per language. It performs no I/O and holds no mutable
// state, so a single instance is safe for concurrent use.
type Checker struct {
	languages map[string]checkFunc
}

// NewChecker creates a checker with the full language dispatch table.
func NewChecker() *Checker {
	c := &Checker{}
	c.languages = map[string]checkFunc{
		"python":     c.checkPython,
		"javascript": c.checkJavaScript,
		"typescript": c.checkJavaScript,
		"cpp":        c.checkCPP,
		"java":       c.checkJava,
		"go":         c.checkGo,
		"rust":       c.checkRust,
	}
	return c
}

// Check analyzes code for the given language. It is a total function:
// malformed or unsupported input is reported inside the result, never as an
// error or panic. Empty or whitespace-only input short-circuits to an
// all-empty result with a line count of zero.
func (c *Checker) Check(code, language string) (result *models.AnalysisResult) {
	language = strings.ToLower(language)

	if strings.TrimSpace(code) == "" {
		r := newResult(language)
		r.LineCount = 0
		return r
	}

	defer func() {
		if r := recover(); r != nil {
			result = newResult(language)
			result.LineCount = countLines(code)
			result.SyntaxErrors = append(result.SyntaxErrors, models.Diagnostic{
				Line:    1,
				Message: fmt.Sprintf("Parser error: %v", r),
				Kind:    models.KindParseError,
			})
		}
	}()

	check, ok := c.languages[language]
	if !ok {
		r := newResult(language)
		r.LineCount = countLines(code)
		r.SyntaxErrors = append(r.SyntaxErrors, models.Diagnostic{
			Line:    1,
			Message: fmt.Sprintf("Unsupported language: %s", language),
			Kind:    models.KindUnsupportedLanguage,
		})
		return r
	}

	r := check(code)
	// The javascript routine is shared with typescript; report the language
	// that was actually requested.
	r.Language = language
	return r
}

// newResult returns a well-formed empty result. Error and warning slices
// are non-nil so they serialize as [] rather than null.
func newResult(language string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Language:     language,
		SyntaxErrors: []models.Diagnostic{},
		Warnings:     []models.Diagnostic{},
	}
}

// countLines matches the raw newline-split line count used across all
// routines: a trailing newline counts as starting one more line.
func countLines(code string) int {
	return len(strings.Split(code, "\n"))
}

// hasAnySuffix reports whether s ends with any of the given suffixes.
func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// hasAnyPrefix reports whether s starts with any of the given prefixes.
func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
