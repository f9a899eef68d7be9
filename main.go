package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	websocket2 "github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/debugtutor/backend/config"
	"github.com/debugtutor/backend/handlers"
	"github.com/debugtutor/backend/middleware"
	"github.com/debugtutor/backend/parser"
	"github.com/debugtutor/backend/services"
	"github.com/debugtutor/backend/utils"
	"github.com/debugtutor/backend/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if errors := cfg.Validate(); len(errors) > 0 {
		log.Fatal("Configuration validation failed:", errors)
	}

	// Initialize logger
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger := utils.GetLogger()
	logger.Info("Starting DebugTutor Backend", map[string]interface{}{
		"environment":    cfg.Environment,
		"port":           cfg.Port,
		"model":          cfg.OpenRouterModel,
		"llm_configured": cfg.HasCredential(),
	})

	if !cfg.HasCredential() {
		logger.Warn("OPENROUTER_API_KEY is not set; tutoring endpoints will refuse requests")
	}

	// Create Fiber app with configuration
	app := createFiberApp(cfg, logger)

	// Setup middleware
	setupMiddleware(app, cfg, logger)

	// Setup routes
	setupRoutes(app, cfg, logger)

	// Start server with graceful shutdown
	startServerWithGracefulShutdown(app, cfg, logger)
}

// createFiberApp creates and configures the Fiber application
func createFiberApp(cfg *config.Config, logger *utils.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "DebugTutor Backend v1.0.0",
		ServerHeader: "DebugTutor",
		ErrorHandler: createErrorHandler(logger),
		ReadTimeout:  30 * time.Second,
		// Streamed answers can outlive a fixed write window.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB, submissions are bounded far below this
	})
}

// setupMiddleware configures all middleware for the application
func setupMiddleware(app *fiber.App, cfg *config.Config, logger *utils.Logger) {
	// Recovery middleware (should be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.IsDevelopment(),
	}))

	// Correlation ID middleware
	app.Use(middleware.CorrelationID())

	// Request logging middleware
	app.Use(middleware.RequestLogging(logger))
}

// setupRoutes configures all routes for the application
func setupRoutes(app *fiber.App, cfg *config.Config, logger *utils.Logger) {
	// Initialize services
	checker := parser.NewChecker()
	llm := services.NewClient(cfg, logger)

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(checker, cfg, logger)
	tutorHandler := handlers.NewTutorHandler(checker, llm, cfg, logger)
	healthHandler := handlers.NewHealthHandler(cfg, llm)

	// Health check endpoint
	app.Get("/health", healthHandler.Health)

	// Metrics endpoint
	if cfg.EnableMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// WebSocket endpoint
	app.Use("/ws", websocket.Upgrade)
	app.Get("/ws/tutor", websocket2.New(websocket.StreamHandler(checker, llm, logger)))

	// API version group
	api := app.Group("/api")

	api.Post("/analyze", analyzeHandler.Analyze)

	// Tutoring routes group
	tutor := api.Group("/tutor")
	tutor.Post("/explain", tutorHandler.ExplainError)
	tutor.Post("/explain/stream", tutorHandler.ExplainErrorStream)
	tutor.Post("/fix", tutorHandler.SuggestFix)
	tutor.Post("/fix/stream", tutorHandler.SuggestFixStream)
	tutor.Post("/quality", tutorHandler.AnalyzeQuality)
	tutor.Post("/quality/stream", tutorHandler.AnalyzeQualityStream)
	tutor.Post("/follow-up", tutorHandler.FollowUp)
	tutor.Post("/follow-up/stream", tutorHandler.FollowUpStream)
	tutor.Post("/concept", tutorHandler.ExplainConcept)
	tutor.Post("/steps", tutorHandler.StepByStep)
	tutor.Get("/status", tutorHandler.Status)

	// API info endpoint
	api.Get("/", func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, "DebugTutor API", fiber.Map{
			"version":     "1.0.0",
			"environment": cfg.Environment,
			"endpoints": []string{
				"GET /health - Health check",
				"GET /metrics - Prometheus metrics",
				"GET /ws/tutor - WebSocket streaming tutor",
				"POST /api/analyze - Static code analysis",
				"POST /api/tutor/explain - Explain errors in a submission",
				"POST /api/tutor/explain/stream - Explain errors (SSE stream)",
				"POST /api/tutor/fix - Suggest a corrected version",
				"POST /api/tutor/fix/stream - Suggest a fix (SSE stream)",
				"POST /api/tutor/quality - Code quality review",
				"POST /api/tutor/quality/stream - Code quality review (SSE stream)",
				"POST /api/tutor/follow-up - Answer a follow-up question",
				"POST /api/tutor/follow-up/stream - Follow-up answer (SSE stream)",
				"POST /api/tutor/concept - Explain a programming concept",
				"POST /api/tutor/steps - Step-by-step error walkthrough",
				"GET /api/tutor/status - Tutor service status",
			},
		})
	})

	logger.Info("Routes configured successfully", map[string]interface{}{
		"health_endpoint":    "/health",
		"api_base":           "/api",
		"websocket_endpoint": "/ws/tutor",
	})
}

// createErrorHandler creates a custom error handler for Fiber
func createErrorHandler(logger *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Default to 500 server error
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		// Check if it's a Fiber error
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		// Log the error
		traceID := utils.GetTraceID(c)
		logger.WithTraceID(traceID).WithSource("error_handler").Error(
			"Request error", err, map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
				"ip":     c.IP(),
			})

		// Return error response
		return utils.ErrorResponse(c, code, "REQUEST_ERROR", message, nil)
	}
}

// startServerWithGracefulShutdown starts the server with graceful shutdown handling
func startServerWithGracefulShutdown(app *fiber.App, cfg *config.Config, logger *utils.Logger) {
	// Channel to listen for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		address := ":" + cfg.Port
		logger.Info("Server starting", map[string]interface{}{
			"address":     address,
			"environment": cfg.Environment,
		})

		if err := app.Listen(address); err != nil {
			logger.Error("Server failed to start", err, map[string]interface{}{
				"address": address,
			})
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", err, nil)
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server shutdown completed successfully")
}
