package activity

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type recordingHook struct {
	events []Event
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return nil
}

func TestEmitterDefaultsChannelAndEmits(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	if !em.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := em.Emit(context.Background(), Event{
		Verb:       "verb",
		ObjectType: "object",
		ObjectID:   "id",
	})
	if err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected event emitted, got %d", len(hook.events))
	}
	if hook.events[0].Channel != "dashboard" {
		t.Fatalf("expected default channel dashboard, got %q", hook.events[0].Channel)
	}
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	em := NewEmitter(nil, Config{Enabled: true})
	if em.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
}

func TestEmitterJoinsHookErrors(t *testing.T) {
	capture := &CaptureHook{}
	failing := HookFunc(func(context.Context, Event) error { return errors.New("boom") })
	em := NewEmitter(Hooks{failing, capture}, Config{Enabled: true, Channel: "glance"})
	err := em.Emit(context.Background(), Event{Verb: "chat.reply", ObjectType: "conversation", ObjectID: "c1"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != "glance" {
		t.Fatalf("expected capture hook to receive event on glance channel, got %#v", capture.Events)
	}
}

func TestNilEmitterIsNoop(t *testing.T) {
	var em *Emitter
	if em.Enabled() {
		t.Fatalf("nil emitter must be disabled")
	}
	if err := em.Emit(context.Background(), Event{Verb: "v", ObjectType: "o", ObjectID: "1"}); err != nil {
		t.Fatalf("nil emitter returned error: %v", err)
	}
}

func TestLogHookWritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	hook := LogHook{Logger: logger, Level: slog.LevelInfo}
	err := Hooks{hook}.Notify(context.Background(), Event{
		Verb:       "widget.add",
		TenantID:   "retailjet",
		ObjectType: "widget",
		ObjectID:   "inst-1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"verb":"widget.add"`, `"tenant_id":"retailjet"`, `"object_id":"inst-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
