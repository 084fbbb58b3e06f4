package glance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastUserMessageScansBackwards(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "second question"},
		{Role: RoleSystem, Content: "note"},
	}
	assert.Equal(t, "second question", LastUserMessage(messages))
	assert.Equal(t, "", LastUserMessage([]Message{{Role: RoleAssistant, Content: "hi"}}))
	assert.Equal(t, "", LastUserMessage(nil))
}

func TestSanitizeInterrupted(t *testing.T) {
	in := []Message{
		{ID: "1", Role: RoleUser, Content: ""},
		{ID: "2", Role: RoleAssistant, Content: ""},
		{ID: "3", Role: RoleAssistant, Content: "done"},
	}
	out := SanitizeInterrupted(in)
	assert.Equal(t, "", out[0].Content, "user messages untouched")
	assert.Equal(t, InterruptedReply, out[1].Content)
	assert.Equal(t, "done", out[2].Content)
	assert.Equal(t, "", in[1].Content, "input not mutated")
}

func TestSuggestedActionsReturnsCopy(t *testing.T) {
	actions := SuggestedActions()
	require.Len(t, actions, 8)
	assert.Equal(t, "How is my inventory health?", actions[0])
	actions[0] = "changed"
	assert.Equal(t, "How is my inventory health?", SuggestedActions()[0])
}

func TestTimestampJSON(t *testing.T) {
	decode := func(t *testing.T, raw string) (Message, error) {
		t.Helper()
		var msg Message
		err := json.Unmarshal([]byte(raw), &msg)
		return msg, err
	}

	msg, err := decode(t, `{"id":"a","role":"user","content":"hi","createdAt":"2024-03-01T10:15:00Z"}`)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), msg.CreatedAt.UTC())

	msg, err = decode(t, `{"role":"user","content":"hi","createdAt":1709288100000}`)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), msg.CreatedAt.Time)

	msg, err = decode(t, `{"role":"user","content":"hi"}`)
	require.NoError(t, err)
	assert.True(t, msg.CreatedAt.IsZero())

	_, err = decode(t, `{"createdAt":"yesterday"}`)
	assert.Error(t, err)

	out, err := json.Marshal(NewMessage(RoleAssistant, "ok", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"createdAt":"2024-03-01T10:15:00.000Z"`)

	out, err = json.Marshal(Message{Role: RoleUser})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"createdAt":null`)
}

func TestNewMessageAssignsID(t *testing.T) {
	a := NewMessage(RoleUser, "x", time.Now())
	b := NewMessage(RoleUser, "x", time.Now())
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleFunction.Valid())
	assert.False(t, Role("bot").Valid())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "3:04 PM", FormatClock(time.Date(2024, 1, 1, 15, 4, 0, 0, time.UTC)))
	assert.Equal(t, "9:30 AM", FormatClock(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)))
}
