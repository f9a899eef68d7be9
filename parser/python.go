package parser

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/debugtutor/backend/models"
)

var pythonLanguage = sitter.NewLanguage(tree_sitter_python.Language())

var (
	printStatementRe = regexp.MustCompile(`\bprint\s+[^(]`)
	identifierRe     = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)
)

// pythonBuiltins are skipped by the undefined-variable heuristic. The check
// is textual, not scope-aware, and would otherwise flag every builtin call.
var pythonBuiltins = map[string]struct{}{
	"print": {}, "len": {}, "str": {}, "int": {}, "float": {},
	"list": {}, "dict": {}, "True": {}, "False": {}, "None": {},
}

// checkPython runs a full structural parse and, when the parse is clean,
// a set of textual heuristic passes over the raw source.
func (c *Checker) checkPython(code string) *models.AnalysisResult {
	result := newResult("python")
	result.LineCount = countLines(code)

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(pythonLanguage)

	tree := p.Parse([]byte(code), nil)
	if tree == nil {
		result.SyntaxErrors = append(result.SyntaxErrors, models.Diagnostic{
			Line:    1,
			Message: "Parse error: parser produced no tree",
			Kind:    models.KindParseError,
		})
		return result
	}

	root := tree.RootNode()
	if root.HasError() {
		// Exactly one diagnostic for the first structural error found.
		result.SyntaxErrors = append(result.SyntaxErrors, syntaxErrorDiagnostic(root))
		tree.Close()
		return result
	}

	// The tree is handed to the caller as an opaque parsed-program handle.
	// Warning passes below deliberately work on the raw text instead.
	result.AST = tree
	result.Warnings = append(result.Warnings, pythonWarnings(code)...)
	return result
}

// syntaxErrorDiagnostic locates the first ERROR or MISSING node and turns
// its position into a 1-based diagnostic.
func syntaxErrorDiagnostic(root *sitter.Node) models.Diagnostic {
	node := firstErrorNode(root)
	if node == nil {
		node = root
	}

	message := "invalid syntax"
	if node.IsMissing() {
		message = fmt.Sprintf("invalid syntax: missing %q", node.Kind())
	}

	pos := node.StartPosition()
	return models.Diagnostic{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: message,
		Kind:    models.KindSyntaxError,
	}
}

// firstErrorNode walks the tree depth-first and returns the first node that
// is an ERROR or MISSING node, or nil when none exists.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// pythonWarnings runs the heuristic passes over the raw source: unused
// imports, Python-2 style print statements, and potentially undefined
// variables. All three are known-imprecise by design.
func pythonWarnings(code string) []models.Diagnostic {
	var warnings []models.Diagnostic
	lines := strings.Split(code, "\n")

	for i, line := range lines {
		lineNo := i + 1
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			if name := extractImportName(stripped); name != "" && !moduleUsed(code, name) {
				warnings = append(warnings, models.Diagnostic{
					Line:    lineNo,
					Message: fmt.Sprintf("Potentially unused import: %s", name),
					Kind:    models.KindUnusedImport,
				})
			}
		}

		if printStatementRe.MatchString(stripped) {
			warnings = append(warnings, models.Diagnostic{
				Line:    lineNo,
				Message: "Consider using print() with parentheses",
				Kind:    models.KindPrintStatement,
			})
		}

		if strings.Contains(stripped, "=") && !strings.HasPrefix(stripped, "#") {
			for _, name := range undefinedVariables(stripped, code) {
				warnings = append(warnings, models.Diagnostic{
					Line:    lineNo,
					Message: fmt.Sprintf("Potentially undefined variable: %s", name),
					Kind:    models.KindUndefinedVariable,
				})
			}
		}
	}

	return warnings
}

// extractImportName pulls the bound module name out of an import line:
// the root package for "import a.b as c", the source module for "from".
func extractImportName(importLine string) string {
	if strings.HasPrefix(importLine, "import ") {
		name := strings.TrimPrefix(importLine, "import ")
		name = strings.SplitN(name, ".", 2)[0]
		name = strings.SplitN(name, " as ", 2)[0]
		return strings.TrimSpace(name)
	}
	if strings.HasPrefix(importLine, "from ") {
		parts := strings.Fields(importLine)
		if len(parts) >= 2 {
			return strings.SplitN(parts[1], ".", 2)[0]
		}
	}
	return ""
}

// moduleUsed reports whether the module name appears anywhere outside of
// import lines. Substring match only; aliased usage is not resolved.
func moduleUsed(code, moduleName string) bool {
	for _, line := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			continue
		}
		if strings.Contains(line, moduleName) {
			return true
		}
	}
	return false
}

// undefinedVariables scans the right-hand side of an assignment for names
// with no `name =` assignment earlier in the source. It false-positives on
// parameters and attribute access; the builtin list trims the worst of it.
func undefinedVariables(line, fullCode string) []string {
	var undefined []string

	eq := strings.Index(line, "=")
	if eq < 0 {
		return nil
	}
	rightSide := strings.TrimSpace(line[eq+1:])

	preceding := fullCode
	if idx := strings.Index(fullCode, line); idx >= 0 {
		preceding = fullCode[:idx]
	}

	for _, name := range identifierRe.FindAllString(rightSide, -1) {
		if _, builtin := pythonBuiltins[name]; builtin {
			continue
		}
		if !strings.Contains(preceding, name+" =") {
			undefined = append(undefined, name)
		}
	}

	return undefined
}
