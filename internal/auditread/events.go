// Package auditread provides read access to the ClickHouse
// audit_events table the async sink writes to, for the admin API's
// GET /v1/audit/events endpoint.
package auditread

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Reader provides read access to the audit_events table.
type Reader struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewReader opens a ClickHouse connection for read queries.
func NewReader(dsn string, logger *zap.Logger) (*Reader, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("auditread: %w", err)
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("auditread: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("auditread: %w", err)
	}
	return &Reader{conn: conn, logger: logger}, nil
}

// Close closes the ClickHouse connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// EventRow is one audit_events row.
type EventRow struct {
	EventID         string
	TurnID          string
	CallIndex       int32
	ToolName        string
	CapabilityClass string
	Decision        string
	ErrorKind       string
	Tainted         uint8
	LatencyMs       float64
	ArgumentPreview string
	Timestamp       time.Time
}

// ListParams holds filters and pagination for event listing.
type ListParams struct {
	TurnID    *string
	ToolName  *string
	Decision  *string
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}

// ListEvents returns paginated, filtered audit events and the total count.
func (r *Reader) ListEvents(ctx context.Context, p ListParams) ([]EventRow, int, error) {
	conditions := []string{"1 = 1"}
	var args []any

	if p.TurnID != nil {
		conditions = append(conditions, "turn_id = @turn_id")
		args = append(args, clickhouse.Named("turn_id", *p.TurnID))
	}
	if p.ToolName != nil {
		conditions = append(conditions, "tool_name = @tool_name")
		args = append(args, clickhouse.Named("tool_name", *p.ToolName))
	}
	if p.Decision != nil {
		conditions = append(conditions, "decision = @decision")
		args = append(args, clickhouse.Named("decision", *p.Decision))
	}
	if p.StartTime != nil {
		conditions = append(conditions, "timestamp >= @start_time")
		args = append(args, clickhouse.Named("start_time", *p.StartTime))
	}
	if p.EndTime != nil {
		conditions = append(conditions, "timestamp <= @end_time")
		args = append(args, clickhouse.Named("end_time", *p.EndTime))
	}

	where := strings.Join(conditions, " AND ")
	page, pageSize := p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	var total uint64
	countQuery := fmt.Sprintf("SELECT count() FROM audit_events WHERE %s", where)
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("auditread: count: %w", err)
	}

	dataQuery := fmt.Sprintf(
		"SELECT event_id, turn_id, call_index, tool_name, capability_class, decision, "+
			"error_kind, tainted, latency_ms, argument_preview, timestamp "+
			"FROM audit_events WHERE %s ORDER BY timestamp DESC LIMIT @limit OFFSET @offset",
		where,
	)
	args = append(args,
		clickhouse.Named("limit", uint32(pageSize)),
		clickhouse.Named("offset", uint32(offset)),
	)

	rows, err := r.conn.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("auditread: query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(
			&e.EventID, &e.TurnID, &e.CallIndex, &e.ToolName, &e.CapabilityClass,
			&e.Decision, &e.ErrorKind, &e.Tainted, &e.LatencyMs, &e.ArgumentPreview, &e.Timestamp,
		); err != nil {
			return nil, 0, fmt.Errorf("auditread: scan: %w", err)
		}
		events = append(events, e)
	}
	return events, int(total), rows.Err()
}
