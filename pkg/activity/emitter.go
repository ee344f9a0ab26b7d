package activity

import (
	"context"
	"time"
)

// Config toggles activity emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps events with a channel and timestamp before notifying hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	now     func() time.Time
}

// NewEmitter builds an emitter. It is disabled when no hooks are given.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled && len(hooks) > 0,
		channel: channel,
		now:     time.Now,
	}
}

// Enabled reports whether Emit delivers events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit delivers the event to every hook.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.channel
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = e.now()
	}
	return e.hooks.Notify(ctx, evt)
}
