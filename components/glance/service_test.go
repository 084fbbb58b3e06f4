package glance

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailjet/glance/components/retail"
)

type recordedEvent struct {
	name    string
	payload map[string]any
}

type recordingTelemetry struct {
	events []recordedEvent
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Composer == nil {
		kb, err := LoadKnowledgeBase(strings.NewReader(singleReplyKB))
		require.NoError(t, err)
		opts.Composer, err = NewComposer(kb, WithRandom(rand.New(rand.NewPCG(1, 2))))
		require.NoError(t, err)
	}
	if opts.Latency == 0 {
		opts.Latency = -1
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return svc
}

func TestCompleteAnswersLastUserMessage(t *testing.T) {
	repo, err := retail.DefaultRepository()
	require.NoError(t, err)
	telemetry := &recordingTelemetry{}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, Options{
		Snapshots: RetailSnapshotter{Repo: repo},
		Telemetry: telemetry,
		Now:       func() time.Time { return fixed },
	})

	resp, err := svc.Complete(context.Background(), ChatRequest{
		ID:      "conv-1",
		StoreID: "vitamax",
		Messages: []Message{
			{Role: RoleUser, Content: "check my stock levels"},
			{Role: RoleAssistant, Content: "Stock is fine."},
			{Role: RoleUser, Content: "and what about revenue?"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", resp.ID)
	assert.Equal(t, RoleAssistant, resp.Message.Role)
	assert.True(t, strings.HasPrefix(resp.Message.Content, "Vitamax sold $"), resp.Message.Content)
	assert.Equal(t, fixed, resp.Message.CreatedAt.Time)

	require.Len(t, telemetry.events, 1)
	assert.Equal(t, "glance.chat.complete", telemetry.events[0].name)
	assert.Equal(t, "sales", telemetry.events[0].payload["category"])

	history, err := svc.History(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "and what about revenue?", history[0].Content)
	assert.NotEmpty(t, history[0].ID)
	assert.Equal(t, fixed, history[0].CreatedAt.Time)
	assert.Equal(t, resp.Message.ID, history[1].ID)
}

func TestCompleteGeneratesConversationID(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := svc.Complete(context.Background(), ChatRequest{Messages: []Message{}})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Hello! How can I help?", resp.Message.Content)
}

func TestCompleteRejectsMissingMessages(t *testing.T) {
	svc := newTestService(t, Options{})
	_, err := svc.Complete(context.Background(), ChatRequest{ID: "x"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCompleteHonoursCancellation(t *testing.T) {
	svc := newTestService(t, Options{Latency: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := svc.Complete(ctx, ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hello there friend"}}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteWithoutStoreUsesStaticReplies(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := svc.Complete(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "Is my stock healthy?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stock is fine.", resp.Message.Content)
}

func TestHistorySanitizesInterruptedReplies(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Append(context.Background(), "conv", Message{ID: "a", Role: RoleAssistant}))
	svc := newTestService(t, Options{Store: store})

	history, err := svc.History(context.Background(), "conv")
	require.NoError(t, err)
	assert.Equal(t, InterruptedReply, history[0].Content)

	_, err = svc.History(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.History(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestQueriesDelegateToService(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := NewCompletionQuery(svc).Query(context.Background(), ChatRequest{
		ID:       "q",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	messages, err := NewHistoryQuery(svc).Query(context.Background(), HistoryInput{ConversationID: resp.ID})
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
