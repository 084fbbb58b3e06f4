package glance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleFunction, RoleSystem:
		return true
	}
	return false
}

// InterruptedReply replaces assistant messages whose content never arrived.
const InterruptedReply = "I apologize, but my response was interrupted."

// FunctionCall is carried through for function-role messages.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one chat turn.
type Message struct {
	ID           string        `json:"id"`
	Role         Role          `json:"role"`
	Content      string        `json:"content"`
	CreatedAt    Timestamp     `json:"createdAt"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// NewMessage builds a message with a fresh id.
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: Timestamp{Time: at.UTC()},
	}
}

// LastUserMessage returns the content of the most recent user message, or ""
// when there is none.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// SanitizeInterrupted returns a copy where empty assistant messages carry
// InterruptedReply.
func SanitizeInterrupted(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		if msg.Role == RoleAssistant && msg.Content == "" {
			msg.Content = InterruptedReply
		}
		out[i] = msg
	}
	return out
}

var suggestedActions = []string{
	"How is my inventory health?",
	"Show my PrimeLeap® score",
	"Analyze my top competitors",
	"Optimize my Amazon PPC campaigns",
	"What are my best selling products?",
	"Forecast Q2 sales trends",
	"Improve product listings",
	"Check my account health",
}

// SuggestedActions returns the starter prompts shown on an empty chat.
func SuggestedActions() []string {
	return append([]string(nil), suggestedActions...)
}

// FormatClock renders a message time the way the chat list shows it ("3:04 PM").
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp accepts an ISO-8601 string or epoch milliseconds and always
// encodes as an ISO-8601 UTC string. The zero value encodes as null.
type Timestamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(isoLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("glance: invalid createdAt %q: %w", raw, err)
		}
		t.Time = parsed
		return nil
	}
	millis, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("glance: invalid createdAt %s: %w", data, err)
	}
	t.Time = time.UnixMilli(int64(millis)).UTC()
	return nil
}
