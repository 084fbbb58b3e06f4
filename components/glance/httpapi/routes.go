package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"

	"github.com/retailjet/glance/components/glance"
)

// DefaultBasePath is where chat routes mount when BasePath is empty.
const DefaultBasePath = "/api/chat"

// Client-facing error messages.
const (
	MessageInvalidFormat   = "Invalid messages format"
	MessageProcessingError = "An error occurred during chat processing"
)

// Locals keys read for the chat viewer. They match the dashboard transport.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
)

// Config wires the chat queries into a fiber router.
type Config struct {
	Completion gocommand.Querier[glance.ChatRequest, glance.ChatResponse]
	History    gocommand.Querier[glance.HistoryInput, []glance.Message]
	BasePath   string
	// Middleware runs before the completion handler, typically a rate
	// limiter.
	Middleware []fiber.Handler
	Logger     *slog.Logger
}

// chatBody keeps messages raw so a non-array value can be rejected.
type chatBody struct {
	ID       string          `json:"id"`
	Messages json.RawMessage `json:"messages"`
}

// Register mounts POST /, GET /suggestions and GET /:id under BasePath.
func Register(r fiber.Router, cfg Config) error {
	if r == nil {
		return errors.New("httpapi: router is required")
	}
	if cfg.Completion == nil {
		return errors.New("httpapi: completion query is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{cfg: cfg, logger: logger.With(slog.String("component", "glance.httpapi"))}
	base := cfg.BasePath
	if base == "" {
		base = DefaultBasePath
	}
	group := r.Group(base)

	post := append(append([]fiber.Handler{}, cfg.Middleware...), h.complete)
	group.Post("/", post...)
	group.Get("/suggestions", h.suggestions)
	if cfg.History != nil {
		group.Get("/:id", h.history)
	}
	return nil
}

type handlers struct {
	cfg    Config
	logger *slog.Logger
}

func (h *handlers) complete(c *fiber.Ctx) error {
	req, err := decodeChat(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MessageInvalidFormat})
	}
	if v, ok := c.Locals(LocalTenantID).(string); ok {
		req.StoreID = v
	}
	if v, ok := c.Locals(LocalUserID).(string); ok {
		req.UserID = v
	}
	resp, err := h.cfg.Completion.Query(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, glance.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": MessageInvalidFormat})
		}
		h.logger.ErrorContext(c.UserContext(), "chat completion failed",
			slog.String("conversation_id", req.ID),
			slog.String("store_id", req.StoreID),
			slog.Any("error", err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MessageProcessingError})
	}
	return c.JSON(resp)
}

func (h *handlers) suggestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"suggestions": glance.SuggestedActions()})
}

func (h *handlers) history(c *fiber.Ctx) error {
	id := c.Params("id")
	messages, err := h.cfg.History.Query(c.UserContext(), glance.HistoryInput{ConversationID: id})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"id": id, "messages": messages})
	case errors.Is(err, glance.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, glance.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		h.logger.ErrorContext(c.UserContext(), "chat history failed",
			slog.String("conversation_id", id),
			slog.Any("error", err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MessageProcessingError})
	}
}

func decodeChat(body []byte) (glance.ChatRequest, error) {
	var raw chatBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return glance.ChatRequest{}, err
	}
	trimmed := bytes.TrimSpace(raw.Messages)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return glance.ChatRequest{}, glance.ErrInvalidRequest
	}
	req := glance.ChatRequest{ID: raw.ID, Messages: []glance.Message{}}
	if err := json.Unmarshal(trimmed, &req.Messages); err != nil {
		return glance.ChatRequest{}, err
	}
	return req, nil
}
