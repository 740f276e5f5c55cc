package audit

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

const (
	bufferSize    = 10_000
	flushInterval = 100 * time.Millisecond
	flushBatch    = 1000
	drainTimeout  = 2 * time.Second
)

// ClickHouseSink batches AuditEvents and performs async inserts,
// draining on Close with a bounded timeout — the append-only,
// single-writer audit trail the runtime's concurrency model calls for
// when an operator configures a ClickHouse DSN.
type ClickHouseSink struct {
	conn    driver.Conn
	buffer  chan Event
	done    chan struct{}
	flushed chan struct{}
	logger  *zap.Logger
}

// NewClickHouseSink opens a ClickHouse connection and starts the
// background flush loop. The table schema is expected to be migrated
// out of band (audit_events with columns mirroring Event's fields).
func NewClickHouseSink(dsn string, logger *zap.Logger) (*ClickHouseSink, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	s := &ClickHouseSink{
		conn:    conn,
		buffer:  make(chan Event, bufferSize),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
		logger:  logger,
	}
	go s.flushLoop()
	return s, nil
}

// Write queues an event for async insertion. Non-blocking: drops the
// event if the buffer is full and logs a warning for each dropped event;
// the warnings are not rate-limited.
func (s *ClickHouseSink) Write(e Event) {
	select {
	case s.buffer <- e:
	default:
		s.logger.Warn("audit buffer full, dropping event", zap.String("event_id", e.EventID))
	}
}

// Close signals the flush loop to drain remaining events, waits for it
// to finish, then returns. The drain is bounded by drainTimeout and the
// final insert by flush's own timeout. Safe to call once.
func (s *ClickHouseSink) Close() {
	close(s.done)
	<-s.flushed
}

func (s *ClickHouseSink) flushLoop() {
	defer close(s.flushed)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, flushBatch)

	for {
		select {
		case e := <-s.buffer:
			batch = append(batch, e)
			if len(batch) >= flushBatch {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.done:
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		drainLoop:
			for {
				select {
				case e := <-s.buffer:
					batch = append(batch, e)
				case <-drainCtx.Done():
					break drainLoop
				default:
					break drainLoop
				}
			}
			cancel()
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

func (s *ClickHouseSink) flush(events []Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO audit_events (
			event_id, turn_id, call_index, tool_name, capability_class,
			decision, error_kind, tainted, latency_ms, argument_preview, timestamp
		)
	`)
	if err != nil {
		s.logger.Error("audit prepare batch failed", zap.Error(err))
		return
	}

	for _, e := range events {
		var taintedUint8 uint8
		if e.Tainted {
			taintedUint8 = 1
		}
		if err := batch.Append(
			e.EventID, e.TurnID, e.CallIndex, e.ToolName, e.CapabilityClass,
			e.Decision, e.ErrorKind, taintedUint8, e.LatencyMs, e.ArgumentPreview, e.Timestamp,
		); err != nil {
			s.logger.Error("audit append event failed", zap.String("event_id", e.EventID), zap.Error(err))
		}
	}

	if err := batch.Send(); err != nil {
		s.logger.Error("audit batch send failed", zap.Int("batch_size", len(events)), zap.Error(err))
	}
}
