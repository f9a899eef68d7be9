package handlers

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/debugtutor/backend/config"
	"github.com/debugtutor/backend/models"
	"github.com/debugtutor/backend/observability"
	"github.com/debugtutor/backend/parser"
	"github.com/debugtutor/backend/utils"
)

// AnalyzeHandler serves static analysis requests. Analysis is purely local
// and never reaches the completion backend.
type AnalyzeHandler struct {
	checker   *parser.Checker
	cfg       *config.Config
	validator *validator.Validate
	logger    *utils.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(checker *parser.Checker, cfg *config.Config, logger *utils.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		checker:   checker,
		cfg:       cfg,
		validator: validator.New(),
		logger:    logger,
	}
}

// Analyze handles POST /api/analyze and returns the diagnostic report for
// one submission.
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
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

	start := time.Now()
	result := h.checker.Check(req.Code, req.Language)
	observability.ObserveCheck(result.Language, time.Since(start).Seconds(),
		len(result.SyntaxErrors), len(result.Warnings))

	h.logger.WithTraceID(utils.GetTraceID(c)).WithSource("analyze_handler").
		Info("Code analyzed", map[string]interface{}{
			"language":      result.Language,
			"line_count":    result.LineCount,
			"syntax_errors": len(result.SyntaxErrors),
			"warnings":      len(result.Warnings),
		})

	return utils.SuccessResponse(c, "Analysis completed", result)
}
