package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

type recordingHook struct {
	events []Event
	err    error
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return h.err
}

func TestEmitterStampsChannelAndTime(t *testing.T) {
	hook := &recordingHook{}
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	em.now = func() time.Time { return fixed }

	evt := EventFromWidget(dashboard.WidgetEvent{
		CategoryID: "registry",
		WidgetID:   "image-security",
		Reason:     dashboard.ReasonActivate,
		Version:    4,
	})
	if err := em.Emit(context.Background(), evt); err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected one event, got %d", len(hook.events))
	}
	got := hook.events[0]
	if got.Channel != DefaultChannel || !got.OccurredAt.Equal(fixed) {
		t.Fatalf("expected default channel and clock stamp, got %q %v", got.Channel, got.OccurredAt)
	}
	if got.Verb != "dashboard.widget.activate" || got.Metadata["version"] != uint64(4) {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestEmitterKeepsExplicitChannel(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "cnapp.audit"})

	_ = em.Emit(context.Background(), Event{Verb: "dashboard.widget.add", ObjectID: "cloud-compliance"})
	_ = em.Emit(context.Background(), Event{Verb: "dashboard.widget.add", ObjectID: "runtime-alerts", Channel: "ops"})

	if hook.events[0].Channel != "cnapp.audit" {
		t.Fatalf("expected configured channel, got %q", hook.events[0].Channel)
	}
	if hook.events[1].Channel != "ops" {
		t.Fatalf("expected event channel to win, got %q", hook.events[1].Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	if NewEmitter(nil, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{})
	if err := em.Emit(context.Background(), Event{Verb: "dashboard.widget.deactivate"}); err != nil {
		t.Fatalf("expected disabled emit to be a no-op, got %v", err)
	}
	if len(hook.events) != 0 {
		t.Fatalf("expected no delivery when disabled")
	}
	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatalf("expected nil emitter to report disabled")
	}
}

func TestEmitterJoinsHookErrors(t *testing.T) {
	errSink := errors.New("sink offline")
	errAudit := errors.New("audit rejected")
	first := &recordingHook{err: errSink}
	second := &recordingHook{err: errAudit}
	em := NewEmitter(Hooks{first, second}, Config{Enabled: true})

	err := em.Emit(context.Background(), EventFromWidget(dashboard.WidgetEvent{
		CategoryID: "cspm",
		WidgetID:   "cloud-risk",
		Reason:     dashboard.ReasonDeactivate,
	}))
	if !errors.Is(err, errSink) || !errors.Is(err, errAudit) {
		t.Fatalf("expected both hook errors, got %v", err)
	}
	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("expected every hook to be called despite failures")
	}
}
