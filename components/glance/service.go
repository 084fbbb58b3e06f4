package glance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultLatency is the pause before a reply is produced.
const DefaultLatency = time.Second

var (
	// ErrInvalidRequest is returned for malformed chat requests.
	ErrInvalidRequest = errors.New("glance: invalid messages format")
	errNoComposer     = errors.New("glance: composer not configured")
)

// Telemetry records structured chat events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// ChatRequest is the body of a chat completion. StoreID and UserID come from
// the authenticated viewer, not the body.
type ChatRequest struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	StoreID  string    `json:"-"`
	UserID   string    `json:"-"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	ID      string  `json:"id"`
	Message Message `json:"message"`
}

// Options configures the chat Service.
type Options struct {
	Composer  *Composer
	Snapshots Snapshotter
	Store     ConversationStore
	Telemetry Telemetry
	Logger    *slog.Logger
	// Latency is the artificial reply delay. Zero means DefaultLatency; a
	// negative value disables it.
	Latency time.Duration
	Now     func() time.Time
}

// Service answers chat requests.
type Service struct {
	opts   Options
	logger *slog.Logger
}

// NewService applies defaults. A nil Composer uses the embedded knowledge
// base.
func NewService(opts Options) (*Service, error) {
	if opts.Composer == nil {
		composer, err := NewComposer(nil)
		if err != nil {
			return nil, err
		}
		opts.Composer = composer
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore(0)
	}
	if opts.Latency == 0 {
		opts.Latency = DefaultLatency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{opts: opts, logger: logger.With(slog.String("component", "glance"))}, nil
}

// Complete waits the configured latency, composes a reply to the last user
// message and records both in the conversation history.
func (s *Service) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if s.opts.Composer == nil {
		return ChatResponse{}, errNoComposer
	}
	if req.Messages == nil {
		return ChatResponse{}, ErrInvalidRequest
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.wait(ctx); err != nil {
		return ChatResponse{}, err
	}

	snap := s.snapshot(ctx, req.StoreID)
	text := LastUserMessage(req.Messages)
	reply := s.opts.Composer.Compose(text, snap)
	now := s.opts.Now()
	answer := NewMessage(RoleAssistant, reply.Content, now)

	history := make([]Message, 0, 2)
	if last, ok := lastUser(req.Messages); ok {
		if last.ID == "" {
			last.ID = uuid.NewString()
		}
		if last.CreatedAt.IsZero() {
			last.CreatedAt = Timestamp{Time: now.UTC()}
		}
		history = append(history, last)
	}
	history = append(history, answer)
	if err := s.opts.Store.Append(ctx, id, history...); err != nil {
		return ChatResponse{}, fmt.Errorf("glance: store conversation %s: %w", id, err)
	}

	if s.opts.Telemetry != nil {
		s.opts.Telemetry.Record(ctx, "glance.chat.complete", map[string]any{
			"category": string(reply.Category),
			"store_id": req.StoreID,
		})
	}
	s.logger.DebugContext(ctx, "chat reply composed",
		slog.String("conversation_id", id),
		slog.String("category", string(reply.Category)),
		slog.String("store_id", req.StoreID),
	)
	return ChatResponse{ID: id, Message: answer}, nil
}

// History returns the stored messages of a conversation.
func (s *Service) History(ctx context.Context, conversationID string) ([]Message, error) {
	if conversationID == "" {
		return nil, ErrInvalidRequest
	}
	messages, err := s.opts.Store.Messages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return SanitizeInterrupted(messages), nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.opts.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) snapshot(ctx context.Context, storeID string) Snapshot {
	if s.opts.Snapshots == nil || storeID == "" {
		return Snapshot{StoreID: storeID}
	}
	snap, err := s.opts.Snapshots.Snapshot(ctx, storeID)
	if err != nil {
		s.logger.WarnContext(ctx, "store snapshot incomplete",
			slog.String("store_id", storeID),
			slog.Any("error", err),
		)
	}
	return snap
}

func lastUser(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i], true
		}
	}
	return Message{}, false
}
