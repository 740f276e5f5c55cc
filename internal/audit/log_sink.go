package audit

import "go.uber.org/zap"

// LogSink is the default, no-external-dependency Sink: it renders each
// event as a structured log line via zap.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wraps an already-configured zap logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(e Event) {
	s.logger.Info("audit_event",
		zap.String("event_id", e.EventID),
		zap.String("turn_id", e.TurnID),
		zap.Int("call_index", e.CallIndex),
		zap.String("tool_name", e.ToolName),
		zap.String("capability_class", e.CapabilityClass),
		zap.String("decision", e.Decision),
		zap.String("error_kind", e.ErrorKind),
		zap.Bool("tainted", e.Tainted),
		zap.Float64("latency_ms", e.LatencyMs),
		zap.String("argument_preview", e.ArgumentPreview),
		zap.Time("timestamp", e.Timestamp),
	)
}

func (s *LogSink) Close() {}
