package parser

import (
	"fmt"
	"strings"

	"github.com/debugtutor/backend/models"
)

// checkJavaScript is the shared javascript/typescript routine: a single
// forward scan tracking brace, parenthesis and bracket nesting outside of
// string literals, plus a per-line missing-semicolon heuristic.
func (c *Checker) checkJavaScript(code string) *models.AnalysisResult {
	result := newResult("javascript")
	lines := strings.Split(code, "\n")
	result.LineCount = len(lines)

	braceCount := 0
	parenCount := 0
	bracketCount := 0
	inString := false
	var stringChar byte

	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			ch := line[j]
			if !inString {
				switch ch {
				case '"', '\'', '`':
					inString = true
					stringChar = ch
				case '{':
					braceCount++
				case '}':
					braceCount--
				case '(':
					parenCount++
				case ')':
					parenCount--
				case '[':
					bracketCount++
				case ']':
					bracketCount--
				}
			} else if ch == stringChar && (j == 0 || line[j-1] != '\\') {
				inString = false
				stringChar = 0
			}
		}

		stripped := strings.TrimSpace(line)
		if stripped != "" &&
			!hasAnySuffix(stripped, ";", "{", "}", ")", ",") &&
			!hasAnyPrefix(stripped, "if", "for", "while", "function", "class", "//", "/*") &&
			strings.Contains(stripped, "=") {
			result.Warnings = append(result.Warnings, models.Diagnostic{
				Line:    i + 1,
				Message: "Consider adding semicolon at end of statement",
				Kind:    models.KindMissingSemicolon,
			})
		}
	}

	// One diagnostic per nonzero counter, reported at the final line with
	// the excess count and direction.
	if braceCount != 0 {
		result.SyntaxErrors = append(result.SyntaxErrors, unmatchedDiagnostic(
			len(lines), braceCount, "braces", models.KindUnmatchedBraces))
	}
	if parenCount != 0 {
		result.SyntaxErrors = append(result.SyntaxErrors, unmatchedDiagnostic(
			len(lines), parenCount, "parentheses", models.KindUnmatchedParentheses))
	}
	if bracketCount != 0 {
		result.SyntaxErrors = append(result.SyntaxErrors, unmatchedDiagnostic(
			len(lines), bracketCount, "brackets", models.KindUnmatchedBrackets))
	}

	return result
}

func unmatchedDiagnostic(lastLine, count int, what, kind string) models.Diagnostic {
	direction := "opening"
	if count < 0 {
		direction = "closing"
	}
	return models.Diagnostic{
		Line:    lastLine,
		Message: fmt.Sprintf("Unmatched %s: %d extra %s", what, count, direction),
		Kind:    kind,
	}
}
