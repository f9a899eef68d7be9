package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/debugtutor/backend/models"
)

// followUpContextTurns bounds how much conversation history is rendered
// into a follow-up prompt.
const followUpContextTurns = 6

const errorAnalysisPrompt = `You are DebugTutor, an expert programming tutor that helps students debug code.

TASK: Analyze the following code and explain any errors in simple, educational terms.

CODE LANGUAGE: %[1]s
CODE:
` + "```%[1]s\n%[2]s\n```" + `

SYNTAX ANALYSIS RESULTS:
%[3]s

Please provide:
1. **Error Identification**: What specific errors exist?
2. **Simple Explanation**: Explain each error in beginner-friendly terms
3. **Why It Happens**: Common reasons this error occurs
4. **Learning Tips**: How to avoid this error in the future

Be encouraging and educational. Act like a patient tutor, not just a code analyzer.`

const fixSuggestionPrompt = `You are DebugTutor, an expert programming tutor that helps students fix their code.

TASK: Provide a corrected version of the code with detailed explanations.

CODE LANGUAGE: %[1]s
CODE:
` + "```%[1]s\n%[2]s\n```" + `

SYNTAX ANALYSIS RESULTS:
%[3]s

Please provide:
1. **Corrected Code**: The fixed version with proper formatting
2. **Step-by-Step Explanation**: Explain each change you made
3. **Reasoning**: Why each change fixes the issue
4. **Best Practices**: Additional improvements for better code quality

Format the corrected code in a code block and explain your reasoning clearly.`

const codeAnalysisPrompt = `You are DebugTutor, an expert programming tutor that analyzes code quality.

TASK: Analyze the following code for potential improvements and best practices.

CODE LANGUAGE: %[1]s
CODE:
` + "```%[1]s\n%[2]s\n```" + `

SYNTAX ANALYSIS RESULTS:
%[3]s

Please provide:
1. **Code Quality Assessment**: Overall quality and structure
2. **Potential Issues**: Any logic errors, inefficiencies, or bad practices
3. **Improvement Suggestions**: Specific recommendations
4. **Best Practices**: How to make the code more maintainable and readable

Be constructive and educational in your feedback.`

const followUpPrompt = `You are DebugTutor, continuing a conversation about debugging code.

CONVERSATION HISTORY:
%[1]s

CURRENT CODE:
` + "```%[2]s\n%[3]s\n```" + `

USER QUESTION: %[4]s

Please answer the user's question in the context of the ongoing conversation. Be helpful, educational, and encouraging. Reference the code and previous discussion as needed.`

const stepByStepPrompt = `You are DebugTutor. Provide a detailed, step-by-step explanation for debugging this specific error.

CODE LANGUAGE: %[1]s
CODE:
` + "```%[1]s\n%[2]s\n```" + `

SPECIFIC ERROR: %[3]s

Please provide:
1. **Step 1**: Identify the exact location of the error
2. **Step 2**: Understand what the code is trying to do
3. **Step 3**: Explain why the error occurs
4. **Step 4**: Show how to fix it
5. **Step 5**: Verify the fix works
6. **Step 6**: Prevent similar errors in the future

Make each step clear and educational, as if teaching a beginner.`

const conceptPrompt = `You are DebugTutor. Explain the programming concept "%[1]s" in simple terms.

PROGRAMMING LANGUAGE: %[2]s

CODE CONTEXT (if relevant):
` + "```%[2]s\n%[3]s\n```" + `

Please provide:
1. **Simple Definition**: What is %[1]s?
2. **Why It Matters**: Why is this concept important?
3. **Common Examples**: Show simple examples
4. **In This Context**: How it relates to the user's code (if applicable)
5. **Common Mistakes**: What beginners often get wrong

Keep the explanation beginner-friendly and encouraging.`

// formatSyntaxAnalysis renders an analysis result as the two-section text
// block embedded into prompts. Only diagnostics are rendered; the parsed
// AST handle is never serialized.
func formatSyntaxAnalysis(result *models.AnalysisResult) string {
	if result == nil {
		return "No syntax analysis available."
	}

	var sections []string

	if len(result.SyntaxErrors) > 0 {
		sections = append(sections, "SYNTAX ERRORS:")
		for _, diag := range result.SyntaxErrors {
			sections = append(sections, fmt.Sprintf("- Line %s: %s", diag.LineLabel(), diag.Message))
		}
	} else {
		sections = append(sections, "SYNTAX ERRORS: None detected")
	}

	if len(result.Warnings) > 0 {
		sections = append(sections, "\nWARNINGS:")
		for _, diag := range result.Warnings {
			sections = append(sections, fmt.Sprintf("- Line %s: %s", diag.LineLabel(), diag.Message))
		}
	} else {
		sections = append(sections, "\nWARNINGS: None detected")
	}

	return strings.Join(sections, "\n")
}

// formatConversationHistory renders the bounded suffix of the conversation
// as alternating role-prefixed lines. The caller's slice is never mutated.
func formatConversationHistory(history []models.ConversationTurn) string {
	if len(history) > followUpContextTurns {
		history = history[len(history)-followUpContextTurns:]
	}

	var out strings.Builder
	for _, turn := range history {
		role := "DebugTutor"
		if turn.Role == "user" {
			role = "User"
		}
		out.WriteString(fmt.Sprintf("%s: %s\n\n", role, turn.Content))
	}
	return out.String()
}

func tutorMessages(system, prompt string) []models.ConversationTurn {
	return []models.ConversationTurn{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
}

func explainErrorMessages(code, language string, analysis *models.AnalysisResult) []models.ConversationTurn {
	prompt := fmt.Sprintf(errorAnalysisPrompt, language, code, formatSyntaxAnalysis(analysis))
	return tutorMessages(
		"You are DebugTutor, an expert programming tutor focused on helping students learn through debugging.",
		prompt)
}

func suggestFixMessages(code, language string, analysis *models.AnalysisResult) []models.ConversationTurn {
	prompt := fmt.Sprintf(fixSuggestionPrompt, language, code, formatSyntaxAnalysis(analysis))
	return tutorMessages(
		"You are DebugTutor, an expert programming tutor who provides clear, corrected code with educational explanations.",
		prompt)
}

func analyzeCodeMessages(code, language string, analysis *models.AnalysisResult) []models.ConversationTurn {
	prompt := fmt.Sprintf(codeAnalysisPrompt, language, code, formatSyntaxAnalysis(analysis))
	return tutorMessages(
		"You are DebugTutor, an expert programming tutor who analyzes code quality and provides constructive feedback.",
		prompt)
}

func followUpMessages(question, code string, history []models.ConversationTurn) []models.ConversationTurn {
	// Language defaults to python here; follow-ups carry no language field.
	prompt := fmt.Sprintf(followUpPrompt, formatConversationHistory(history), "python", code, question)
	return tutorMessages(
		"You are DebugTutor, continuing an educational conversation about debugging code.",
		prompt)
}

// ExplainError explains the errors in a submission in tutoring terms.
func (c *Client) ExplainError(ctx context.Context, code, language string, analysis *models.AnalysisResult) (string, error) {
	return c.complete(ctx, explainErrorMessages(code, language, analysis))
}

// ExplainErrorStream is the incrementally streamed variant of ExplainError.
func (c *Client) ExplainErrorStream(ctx context.Context, code, language string, analysis *models.AnalysisResult) (*CompletionStream, error) {
	return c.stream(ctx, explainErrorMessages(code, language, analysis))
}

// SuggestFix produces a corrected version of the code with explanations.
func (c *Client) SuggestFix(ctx context.Context, code, language string, analysis *models.AnalysisResult) (string, error) {
	return c.complete(ctx, suggestFixMessages(code, language, analysis))
}

// SuggestFixStream is the incrementally streamed variant of SuggestFix.
func (c *Client) SuggestFixStream(ctx context.Context, code, language string, analysis *models.AnalysisResult) (*CompletionStream, error) {
	return c.stream(ctx, suggestFixMessages(code, language, analysis))
}

// AnalyzeCode reviews code quality and suggests improvements.
func (c *Client) AnalyzeCode(ctx context.Context, code, language string, analysis *models.AnalysisResult) (string, error) {
	return c.complete(ctx, analyzeCodeMessages(code, language, analysis))
}

// AnalyzeCodeStream is the incrementally streamed variant of AnalyzeCode.
func (c *Client) AnalyzeCodeStream(ctx context.Context, code, language string, analysis *models.AnalysisResult) (*CompletionStream, error) {
	return c.stream(ctx, analyzeCodeMessages(code, language, analysis))
}

// ProcessFollowUp answers a follow-up question in the context of the last
// turns of the conversation. The history is read-only to the client.
func (c *Client) ProcessFollowUp(ctx context.Context, question, code string, history []models.ConversationTurn) (string, error) {
	return c.complete(ctx, followUpMessages(question, code, history))
}

// ProcessFollowUpStream is the incrementally streamed variant of
// ProcessFollowUp.
func (c *Client) ProcessFollowUpStream(ctx context.Context, question, code string, history []models.ConversationTurn) (*CompletionStream, error) {
	return c.stream(ctx, followUpMessages(question, code, history))
}

// StepByStepExplanation walks through one specific error in detail.
func (c *Client) StepByStepExplanation(ctx context.Context, code, language, specificError string) (string, error) {
	prompt := fmt.Sprintf(stepByStepPrompt, language, code, specificError)
	return c.complete(ctx, tutorMessages(
		"You are DebugTutor, providing step-by-step debugging guidance.",
		prompt))
}

// ExplainConcept explains a programming concept, optionally in the context
// of the user's code.
func (c *Client) ExplainConcept(ctx context.Context, concept, language, codeContext string) (string, error) {
	prompt := fmt.Sprintf(conceptPrompt, concept, language, codeContext)
	return c.complete(ctx, tutorMessages(
		"You are DebugTutor, explaining programming concepts in an educational way.",
		prompt))
}
