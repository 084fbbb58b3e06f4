package glance

import (
	"context"
	"errors"
	"sync"
)

// ErrConversationNotFound is returned for unknown conversation ids.
var (
	ErrConversationNotFound = errors.New("glance: conversation not found")
	errMissingConversation  = errors.New("glance: conversation id is required")
)

// ConversationStore persists chat history per conversation id.
type ConversationStore interface {
	Append(ctx context.Context, conversationID string, messages ...Message) error
	Messages(ctx context.Context, conversationID string) ([]Message, error)
}

const defaultHistoryLimit = 100

// MemoryStore keeps the newest messages of each conversation in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	limit int
	convs map[string][]Message
}

// NewMemoryStore keeps at most limit messages per conversation (100 when
// limit <= 0).
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &MemoryStore{limit: limit, convs: map[string][]Message{}}
}

// Append implements ConversationStore.
func (s *MemoryStore) Append(ctx context.Context, conversationID string, messages ...Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if conversationID == "" {
		return errMissingConversation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.convs[conversationID], messages...)
	if len(list) > s.limit {
		list = append([]Message(nil), list[len(list)-s.limit:]...)
	}
	s.convs[conversationID] = list
	return nil
}

// Messages implements ConversationStore.
func (s *MemoryStore) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.convs[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return append([]Message(nil), list...), nil
}
