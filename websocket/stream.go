package websocket

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/debugtutor/backend/models"
	"github.com/debugtutor/backend/observability"
	"github.com/debugtutor/backend/parser"
	"github.com/debugtutor/backend/services"
	"github.com/debugtutor/backend/utils"
)

// StreamRequest is one tutoring request over the websocket. Question and
// History only apply to follow-up actions.
type StreamRequest struct {
	Action   string                    `json:"action"`
	Code     string                    `json:"code"`
	Language string                    `json:"language"`
	Question string                    `json:"question"`
	History  []models.ConversationTurn `json:"conversation_history"`
}

// StreamMessage is one frame sent back to the client. Type is "fragment"
// while content is flowing, then a single "done", or "error" on failure.
type StreamMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Upgrade gates the websocket route to genuine upgrade requests.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// StreamHandler returns the connection handler for GET /ws/tutor. Each
// connection serves a sequence of tutoring requests; fragments of one
// answer are fully flushed before the next request is read.
func StreamHandler(checker *parser.Checker, llm *services.Client, logger *utils.Logger) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		wsLogger := logger.WithSource("ws_tutor")
		wsLogger.Debug("Websocket connection opened")

		for {
			var req StreamRequest
			if err := conn.ReadJSON(&req); err != nil {
				wsLogger.Debug("Websocket connection closed")
				return
			}
			if !serveRequest(conn, checker, llm, wsLogger, &req) {
				return
			}
		}
	}
}

// serveRequest streams one answer. It reports false when the connection is
// no longer usable.
func serveRequest(conn *websocket.Conn, checker *parser.Checker, llm *services.Client, logger *utils.LoggerWithContext, req *StreamRequest) bool {
	ctx := context.Background()

	var (
		stream *services.CompletionStream
		err    error
	)
	switch req.Action {
	case "explain":
		analysis := checker.Check(req.Code, req.Language)
		stream, err = llm.ExplainErrorStream(ctx, req.Code, req.Language, analysis)
	case "fix":
		analysis := checker.Check(req.Code, req.Language)
		stream, err = llm.SuggestFixStream(ctx, req.Code, req.Language, analysis)
	case "quality":
		analysis := checker.Check(req.Code, req.Language)
		stream, err = llm.AnalyzeCodeStream(ctx, req.Code, req.Language, analysis)
	case "follow_up":
		stream, err = llm.ProcessFollowUpStream(ctx, req.Question, req.Code, req.History)
	default:
		return conn.WriteJSON(StreamMessage{Type: "error", Error: "unknown action: " + req.Action}) == nil
	}

	if err != nil {
		logger.Error("Websocket tutoring request failed", err, map[string]interface{}{"action": req.Action})
		return conn.WriteJSON(StreamMessage{Type: "error", Error: err.Error()}) == nil
	}
	defer stream.Close()

	for {
		fragment, recvErr := stream.Recv()
		if recvErr != nil {
			if recvErr == io.EOF {
				break
			}
			logger.Error("Websocket stream interrupted", recvErr, map[string]interface{}{"action": req.Action})
			conn.WriteJSON(StreamMessage{Type: "error", Error: recvErr.Error()})
			return false
		}

		if conn.WriteJSON(StreamMessage{Type: "fragment", Content: fragment}) != nil {
			return false
		}
		observability.StreamFragmentsTotal.Inc()
	}

	return conn.WriteJSON(StreamMessage{Type: "done"}) == nil
}
