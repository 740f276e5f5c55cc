// Package adminapi implements the loopback-only admin HTTP surface:
// health, audit event listing, and policy-override CRUD. It starts only
// when an admin address is configured, and serves overrides from
// whichever override store is in use (Postgres or file-backed).
package adminapi

import (
	"time"

	"go.uber.org/zap"

	"github.com/wardencore/warden/internal/auditread"
	"github.com/wardencore/warden/internal/permission"
)

// Dependencies holds shared state injected into every handler.
type Dependencies struct {
	Overrides permission.OverrideStore
	Audit     *auditread.Reader // nil if ClickHouse unavailable
	Tokens    TokenStore
	Logger    *zap.Logger
	CacheTTL  time.Duration
}

// ErrorResp is the standard error response body.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// OverrideResp mirrors permission.PolicyOverride for the wire.
type OverrideResp struct {
	ToolName  string    `json:"tool_name"`
	Decision  string    `json:"decision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetOverrideReq is the JSON body for PUT /v1/policy/overrides/{tool_name}.
type SetOverrideReq struct {
	Decision string `json:"decision"`
}

// EventResp mirrors auditread.EventRow for the wire.
type EventResp struct {
	EventID         string    `json:"event_id"`
	TurnID          string    `json:"turn_id"`
	CallIndex       int32     `json:"call_index"`
	ToolName        string    `json:"tool_name"`
	CapabilityClass string    `json:"capability_class"`
	Decision        string    `json:"decision"`
	ErrorKind       string    `json:"error_kind"`
	Tainted         bool      `json:"tainted"`
	LatencyMs       float64   `json:"latency_ms"`
	ArgumentPreview string    `json:"argument_preview"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventListResp is the JSON body for GET /v1/audit/events.
type EventListResp struct {
	Events   []EventResp `json:"events"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
