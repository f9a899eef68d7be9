package models

import "fmt"

// Diagnostic kinds reported by the static checker.
const (
	KindSyntaxError          = "SyntaxError"
	KindParseError           = "ParseError"
	KindUnsupportedLanguage  = "UnsupportedLanguage"
	KindUnmatchedBraces      = "UnmatchedBraces"
	KindUnmatchedParentheses = "UnmatchedParentheses"
	KindUnmatchedBrackets    = "UnmatchedBrackets"
	KindMissingSemicolon     = "MissingSemicolon"
	KindUnusedImport         = "UnusedImport"
	KindUndefinedVariable    = "UndefinedVariable"
	KindPrintStatement       = "PrintStatement"
	KindNoMainFunction       = "NoMainFunction"
	KindNoClass              = "NoClass"
	KindMissingPackage       = "MissingPackage"
)

// SupportedLanguages is the fixed set of language identifiers the static
// checker dispatches on. Anything else yields an UnsupportedLanguage error.
var SupportedLanguages = []string{
	"python", "javascript", "typescript", "cpp", "java", "go", "rust",
}

// Diagnostic represents one issue found in a code submission. Line is
// 1-based; a non-positive value means the location is unknown.
type Diagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// LineLabel renders the line number for prompt text, falling back to the
// "Unknown" sentinel when no location was recorded.
func (d Diagnostic) LineLabel() string {
	if d.Line <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d", d.Line)
}

// AnalysisResult is the full structured output of checking one submission.
// SyntaxErrors indicate the code would fail to run or compile; Warnings are
// advisory only. Both slices are always non-nil.
type AnalysisResult struct {
	Language     string       `json:"language"`
	LineCount    int          `json:"line_count"`
	SyntaxErrors []Diagnostic `json:"syntax_errors"`
	Warnings     []Diagnostic `json:"warnings"`

	// Includes holds the #include lines collected for C++ input.
	Includes []string `json:"includes,omitempty"`

	// AST is the parsed-program handle for the python path only. It is
	// opaque to callers and never serialized into responses or prompts.
	AST any `json:"-"`
}

// HasErrors reports whether any syntax error was detected.
func (r *AnalysisResult) HasErrors() bool {
	return len(r.SyntaxErrors) > 0
}

// HasWarnings reports whether any advisory warning was detected.
func (r *AnalysisResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}
