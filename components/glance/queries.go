package glance

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

type completer interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// CompletionQuery runs a chat completion through go-command.
type CompletionQuery struct {
	service completer
}

// NewCompletionQuery builds the query.
func NewCompletionQuery(service completer) *CompletionQuery {
	return &CompletionQuery{service: service}
}

var _ gocommand.Querier[ChatRequest, ChatResponse] = (*CompletionQuery)(nil)

// Query completes the chat request.
func (q *CompletionQuery) Query(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	return q.service.Complete(ctx, req)
}

// HistoryInput identifies a conversation.
type HistoryInput struct {
	ConversationID string `json:"id"`
}

type historyService interface {
	History(ctx context.Context, conversationID string) ([]Message, error)
}

// HistoryQuery fetches a stored conversation.
type HistoryQuery struct {
	service historyService
}

// NewHistoryQuery builds the query.
func NewHistoryQuery(service historyService) *HistoryQuery {
	return &HistoryQuery{service: service}
}

var _ gocommand.Querier[HistoryInput, []Message] = (*HistoryQuery)(nil)

// Query returns the conversation messages.
func (q *HistoryQuery) Query(ctx context.Context, input HistoryInput) ([]Message, error) {
	return q.service.History(ctx, input.ConversationID)
}
