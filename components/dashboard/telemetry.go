package dashboard

import (
	"context"
	"log/slog"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogTelemetry writes telemetry events as structured log records.
type LogTelemetry struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogTelemetry wraps a slog logger; nil uses slog.Default().
func NewLogTelemetry(logger *slog.Logger) *LogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTelemetry{logger: logger, level: slog.LevelInfo}
}

// Record emits one log line per event with the payload as attributes.
func (t *LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	attrs := make([]slog.Attr, 0, len(payload))
	for key, value := range payload {
		attrs = append(attrs, slog.Any(key, value))
	}
	t.logger.LogAttrs(ctx, t.level, event, attrs...)
}
