package models

// ConversationTurn is one message in a tutoring conversation. The history
// is owned by the caller; the completion client only reads a bounded suffix
// of it and never mutates it.
type ConversationTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AnalyzeRequest asks for a static check of a code submission. Language is
// deliberately not restricted here: unsupported identifiers flow through the
// checker and come back as an UnsupportedLanguage diagnostic, not a 400.
type AnalyzeRequest struct {
	Code     string `json:"code" validate:"required,min=1"`
	Language string `json:"language" validate:"required"`
}

// TutorRequest asks for an LLM-backed tutoring action over a submission.
type TutorRequest struct {
	Code     string `json:"code" validate:"required,min=1"`
	Language string `json:"language" validate:"required"`
}

// FollowUpRequest continues an existing tutoring conversation.
type FollowUpRequest struct {
	Question string             `json:"question" validate:"required,min=1"`
	Code     string             `json:"code"`
	History  []ConversationTurn `json:"conversation_history" validate:"dive"`
}

// ConceptRequest asks for an explanation of a programming concept,
// optionally in the context of the user's code.
type ConceptRequest struct {
	Concept     string `json:"concept" validate:"required,min=1"`
	Language    string `json:"language" validate:"required"`
	CodeContext string `json:"code_context"`
}

// StepByStepRequest asks for a step-by-step walkthrough of one specific
// error in the submission.
type StepByStepRequest struct {
	Code      string `json:"code" validate:"required,min=1"`
	Language  string `json:"language" validate:"required"`
	ErrorText string `json:"error" validate:"required,min=1"`
}

// TutorResponse carries a buffered tutoring answer together with the static
// analysis that informed the prompt.
type TutorResponse struct {
	Answer   string          `json:"answer"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
}
