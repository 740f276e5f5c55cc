package adminapi

import (
	"net/http"
	"strconv"

	"github.com/wardencore/warden/internal/permission"
)

// handleListEvents serves GET /v1/audit/events?turn_id=&tool_name=&decision=&page=&page_size=.
// Returns 503 if no ClickHouse reader is configured — the event
// history is an optional ambient backend, not a hard dependency.
func (d *Dependencies) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if d.Audit == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResp{Detail: "audit event history unavailable: no clickhouse dsn configured"})
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}

	params := buildListParams(q, page, pageSize)
	rows, total, err := d.Audit.ListEvents(r.Context(), params)
	if err != nil {
		d.Logger.Error("list audit events failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to list audit events"})
		return
	}

	resp := EventListResp{Events: make([]EventResp, 0, len(rows)), Total: total, Page: page, PageSize: pageSize}
	for _, row := range rows {
		resp.Events = append(resp.Events, EventResp{
			EventID:         row.EventID,
			TurnID:          row.TurnID,
			CallIndex:       row.CallIndex,
			ToolName:        row.ToolName,
			CapabilityClass: row.CapabilityClass,
			Decision:        row.Decision,
			ErrorKind:       row.ErrorKind,
			Tainted:         row.Tainted != 0,
			LatencyMs:       row.LatencyMs,
			ArgumentPreview: row.ArgumentPreview,
			Timestamp:       row.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetOverride serves GET /v1/policy/overrides/{tool_name}?project_id=.
func (d *Dependencies) handleGetOverride(w http.ResponseWriter, r *http.Request) {
	toolName := r.PathValue("tool_name")
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "missing project_id query parameter"})
		return
	}

	override, err := d.Overrides.Get(r.Context(), projectID, toolName)
	if err != nil {
		d.Logger.Error("get override failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to look up override"})
		return
	}
	if override == nil {
		writeJSON(w, http.StatusOK, OverrideResp{ToolName: toolName, Decision: string(permission.DefaultFor(toolName))})
		return
	}
	writeJSON(w, http.StatusOK, OverrideResp{ToolName: override.ToolName, Decision: string(override.Decision), UpdatedAt: override.UpdatedAt})
}

// handleSetOverride serves PUT /v1/policy/overrides/{tool_name}?project_id=.
func (d *Dependencies) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	toolName := r.PathValue("tool_name")
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "missing project_id query parameter"})
		return
	}

	var req SetOverrideReq
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "invalid request body"})
		return
	}

	decision := permission.Decision(req.Decision)
	switch decision {
	case permission.Allow, permission.Ask, permission.Deny:
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "decision must be one of allow, ask, deny"})
		return
	}

	if err := d.Overrides.Set(r.Context(), projectID, toolName, decision); err != nil {
		d.Logger.Error("set override failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "failed to set override"})
		return
	}
	writeJSON(w, http.StatusOK, OverrideResp{ToolName: toolName, Decision: string(decision)})
}
