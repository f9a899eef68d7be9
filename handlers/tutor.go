package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/debugtutor/backend/config"
	"github.com/debugtutor/backend/models"
	"github.com/debugtutor/backend/observability"
	"github.com/debugtutor/backend/parser"
	"github.com/debugtutor/backend/services"
	"github.com/debugtutor/backend/utils"
)

// Tutoring actions exposed over the HTTP surface.
const (
	actionExplain = "explain"
	actionFix     = "fix"
	actionQuality = "quality"
)

// TutorHandler serves the LLM-backed tutoring endpoints. Every code-bearing
// action runs the static checker first and feeds the diagnostic report into
// the prompt, so the tutor sees what the checker saw.
type TutorHandler struct {
	checker   *parser.Checker
	llm       *services.Client
	cfg       *config.Config
	validator *validator.Validate
	logger    *utils.Logger
}

// NewTutorHandler creates a new tutor handler
func NewTutorHandler(checker *parser.Checker, llm *services.Client, cfg *config.Config, logger *utils.Logger) *TutorHandler {
	return &TutorHandler{
		checker:   checker,
		llm:       llm,
		cfg:       cfg,
		validator: validator.New(),
		logger:    logger,
	}
}

// ExplainError handles POST /api/tutor/explain
func (h *TutorHandler) ExplainError(c *fiber.Ctx) error {
	return h.runAction(c, actionExplain)
}

// SuggestFix handles POST /api/tutor/fix
func (h *TutorHandler) SuggestFix(c *fiber.Ctx) error {
	return h.runAction(c, actionFix)
}

// AnalyzeQuality handles POST /api/tutor/quality
func (h *TutorHandler) AnalyzeQuality(c *fiber.Ctx) error {
	return h.runAction(c, actionQuality)
}

// ExplainErrorStream handles POST /api/tutor/explain/stream
func (h *TutorHandler) ExplainErrorStream(c *fiber.Ctx) error {
	return h.streamAction(c, actionExplain)
}

// SuggestFixStream handles POST /api/tutor/fix/stream
func (h *TutorHandler) SuggestFixStream(c *fiber.Ctx) error {
	return h.streamAction(c, actionFix)
}

// AnalyzeQualityStream handles POST /api/tutor/quality/stream
func (h *TutorHandler) AnalyzeQualityStream(c *fiber.Ctx) error {
	return h.streamAction(c, actionQuality)
}

// parseTutorRequest binds and validates a tutoring request, enforcing the
// submission size limit. A nil request means the response was already sent.
func (h *TutorHandler) parseTutorRequest(c *fiber.Ctx) (*models.TutorRequest, error) {
	var req models.TutorRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, utils.BadRequestResponse(c, "Invalid request format", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return nil, utils.ValidationErrorResponse(c, validationErrorMap(err))
	}

	if len(req.Code) > h.cfg.MaxCodeLength {
		return nil, utils.BadRequestResponse(c, "Code exceeds maximum length", map[string]string{
			"max_length": strconv.Itoa(h.cfg.MaxCodeLength),
		})
	}

	return &req, nil
}

func (h *TutorHandler) runAction(c *fiber.Ctx, action string) error {
	req, err := h.parseTutorRequest(c)
	if req == nil {
		return err
	}

	start := time.Now()
	analysis := h.checker.Check(req.Code, req.Language)
	observability.ObserveCheck(analysis.Language, time.Since(start).Seconds(),
		len(analysis.SyntaxErrors), len(analysis.Warnings))

	ctx := context.Background()
	var answer string
	switch action {
	case actionExplain:
		answer, err = h.llm.ExplainError(ctx, req.Code, req.Language, analysis)
	case actionFix:
		answer, err = h.llm.SuggestFix(ctx, req.Code, req.Language, analysis)
	case actionQuality:
		answer, err = h.llm.AnalyzeCode(ctx, req.Code, req.Language, analysis)
	default:
		return utils.BadRequestResponse(c, "Unknown tutoring action", nil)
	}

	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues(action, "error").Inc()
		return h.respondCompletionError(c, action, err)
	}
	observability.CompletionRequestsTotal.WithLabelValues(action, "success").Inc()

	return utils.SuccessResponse(c, "Tutoring completed", models.TutorResponse{
		Answer:   answer,
		Analysis: analysis,
	})
}

func (h *TutorHandler) streamAction(c *fiber.Ctx, action string) error {
	if !h.cfg.EnableStreaming {
		return utils.BadRequestResponse(c, "Streaming is disabled", nil)
	}

	req, err := h.parseTutorRequest(c)
	if req == nil {
		return err
	}

	analysis := h.checker.Check(req.Code, req.Language)

	// The stream writer runs after this handler returns, so the upstream
	// request cannot borrow the request context.
	ctx := context.Background()
	var stream *services.CompletionStream
	switch action {
	case actionExplain:
		stream, err = h.llm.ExplainErrorStream(ctx, req.Code, req.Language, analysis)
	case actionFix:
		stream, err = h.llm.SuggestFixStream(ctx, req.Code, req.Language, analysis)
	case actionQuality:
		stream, err = h.llm.AnalyzeCodeStream(ctx, req.Code, req.Language, analysis)
	default:
		return utils.BadRequestResponse(c, "Unknown tutoring action", nil)
	}

	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues(action, "error").Inc()
		return h.respondCompletionError(c, action, err)
	}
	observability.CompletionRequestsTotal.WithLabelValues(action, "success").Inc()

	h.writeEventStream(c, stream)
	return nil
}

// writeEventStream relays completion fragments to the client as
// server-sent events, each fragment as one data frame, closed by a
// terminator frame. The upstream connection is released on every exit path.
func (h *TutorHandler) writeEventStream(c *fiber.Ctx, stream *services.CompletionStream) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	logger := h.logger.WithTraceID(utils.GetTraceID(c)).WithSource("tutor_handler")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer stream.Close()

		for {
			fragment, err := stream.Recv()
			if err == io.EOF {
				fmt.Fprintf(w, "data: %s\n\n", "[DONE]")
				w.Flush()
				return
			}
			if err != nil {
				logger.Error("Completion stream failed", err, nil)
				return
			}

			payload, err := json.Marshal(map[string]string{"content": fragment})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			observability.StreamFragmentsTotal.Inc()

			// A flush error means the client went away; stop relaying.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
}

// FollowUp handles POST /api/tutor/follow-up
func (h *TutorHandler) FollowUp(c *fiber.Ctx) error {
	var req models.FollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, validationErrorMap(err))
	}

	if len(req.History) > h.cfg.MaxConversationHistory {
		req.History = req.History[len(req.History)-h.cfg.MaxConversationHistory:]
	}

	answer, err := h.llm.ProcessFollowUp(context.Background(), req.Question, req.Code, req.History)
	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues("follow_up", "error").Inc()
		return h.respondCompletionError(c, "follow_up", err)
	}
	observability.CompletionRequestsTotal.WithLabelValues("follow_up", "success").Inc()

	return utils.SuccessResponse(c, "Follow-up answered", models.TutorResponse{Answer: answer})
}

// FollowUpStream handles POST /api/tutor/follow-up/stream
func (h *TutorHandler) FollowUpStream(c *fiber.Ctx) error {
	if !h.cfg.EnableStreaming {
		return utils.BadRequestResponse(c, "Streaming is disabled", nil)
	}

	var req models.FollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, validationErrorMap(err))
	}

	if len(req.History) > h.cfg.MaxConversationHistory {
		req.History = req.History[len(req.History)-h.cfg.MaxConversationHistory:]
	}

	stream, err := h.llm.ProcessFollowUpStream(context.Background(), req.Question, req.Code, req.History)
	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues("follow_up", "error").Inc()
		return h.respondCompletionError(c, "follow_up", err)
	}
	observability.CompletionRequestsTotal.WithLabelValues("follow_up", "success").Inc()

	h.writeEventStream(c, stream)
	return nil
}

// ExplainConcept handles POST /api/tutor/concept
func (h *TutorHandler) ExplainConcept(c *fiber.Ctx) error {
	var req models.ConceptRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, validationErrorMap(err))
	}

	answer, err := h.llm.ExplainConcept(context.Background(), req.Concept, req.Language, req.CodeContext)
	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues("concept", "error").Inc()
		return h.respondCompletionError(c, "concept", err)
	}
	observability.CompletionRequestsTotal.WithLabelValues("concept", "success").Inc()

	return utils.SuccessResponse(c, "Concept explained", models.TutorResponse{Answer: answer})
}

// StepByStep handles POST /api/tutor/steps
func (h *TutorHandler) StepByStep(c *fiber.Ctx) error {
	var req models.StepByStepRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, validationErrorMap(err))
	}

	if len(req.Code) > h.cfg.MaxCodeLength {
		return utils.BadRequestResponse(c, "Code exceeds maximum length", map[string]string{
			"max_length": strconv.Itoa(h.cfg.MaxCodeLength),
		})
	}

	answer, err := h.llm.StepByStepExplanation(context.Background(), req.Code, req.Language, req.ErrorText)
	if err != nil {
		observability.CompletionRequestsTotal.WithLabelValues("steps", "error").Inc()
		return h.respondCompletionError(c, "steps", err)
	}
	observability.CompletionRequestsTotal.WithLabelValues("steps", "success").Inc()

	return utils.SuccessResponse(c, "Step-by-step explanation completed", models.TutorResponse{Answer: answer})
}

// Status handles GET /api/tutor/status
func (h *TutorHandler) Status(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Tutor status retrieved", fiber.Map{
		"configured":          h.llm.IsConfigured(),
		"model":               h.llm.Model(),
		"streaming_enabled":   h.cfg.EnableStreaming,
		"supported_languages": models.SupportedLanguages,
		"actions": []string{
			actionExplain, actionFix, actionQuality,
			"follow_up", "concept", "steps",
		},
	})
}

// respondCompletionError maps completion client failures onto HTTP statuses:
// missing credentials read as the service being unavailable, upstream
// throttling surfaces as 429, upstream timeouts as 504, and transport or
// malformed-response failures as 502.
func (h *TutorHandler) respondCompletionError(c *fiber.Ctx, action string, err error) error {
	h.logger.WithTraceID(utils.GetTraceID(c)).WithSource("tutor_handler").
		Error("Tutoring request failed", err, map[string]interface{}{"action": action})

	var (
		cfgErr     *services.ConfigurationError
		rateErr    *services.RateLimitError
		timeoutErr *services.TimeoutError
		netErr     *services.NetworkError
		formatErr  *services.ResponseFormatError
		reqErr     *services.RequestError
	)

	switch {
	case errors.As(err, &cfgErr):
		return utils.ServiceUnavailableResponse(c, "Tutoring")
	case errors.As(err, &rateErr):
		return utils.TooManyRequestsResponse(c, err.Error())
	case errors.As(err, &timeoutErr):
		return utils.GatewayTimeoutResponse(c, err.Error())
	case errors.As(err, &netErr), errors.As(err, &formatErr), errors.As(err, &reqErr):
		return utils.GatewayErrorResponse(c, err.Error())
	default:
		return utils.InternalServerErrorResponse(c, "Failed to process tutoring request")
	}
}
