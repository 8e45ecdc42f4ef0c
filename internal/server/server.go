// Package server exposes the support chatbot over HTTP.
package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/officina-ai/officina/internal/chatbot"
	"github.com/officina-ai/officina/pkg/workflow"
)

// Server serves chatbot turns over a small JSON API.
type Server struct {
	app      *fiber.App
	bot      *chatbot.Bot
	sessions *chatbot.Sessions
	logger   *slog.Logger
}

// New wires the routes. logger may be nil.
func New(bot *chatbot.Bot, sessions *chatbot.Sessions, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	s := &Server{app: app, bot: bot, sessions: sessions, logger: logger}

	app.Get("/healthz", s.handleHealth)
	api := app.Group("/api")
	api.Post("/chat", s.handleChat)

	return s
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	s.logger.Info("chat API listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []chatbot.Message `json:"messages"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleChat runs one conversation turn. Internal failures degrade to
// a natural-language assistant message; only malformed requests get an
// HTTP error status.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	state, err := s.sessions.Load(req.SessionID)
	if err != nil {
		s.logger.Error("session load failed", "session_id", req.SessionID, "error", err)
		state = chatbot.State{}
	}
	before := len(state.Messages)

	ctx := workflow.NewContext(c.UserContext(),
		workflow.WithLogger(s.logger),
		workflow.WithRunID(req.SessionID),
	)
	state, err = s.bot.Turn(ctx, state, req.Message)
	if err != nil {
		s.logger.Error("turn failed", "session_id", req.SessionID, "error", err)
	}

	if err := s.sessions.Save(req.SessionID, state); err != nil {
		s.logger.Error("session save failed", "session_id", req.SessionID, "error", err)
	}

	// Skip the echoed user message; the caller wants the replies.
	replies := state.Messages[before:]
	if len(replies) > 0 && replies[0].Role == "user" {
		replies = replies[1:]
	}
	return c.JSON(chatResponse{
		SessionID: req.SessionID,
		Messages:  replies,
	})
}
