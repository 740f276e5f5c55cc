package adminapi

import (
	"net/url"

	"github.com/wardencore/warden/internal/auditread"
)

// buildListParams translates query parameters into auditread.ListParams,
// leaving unset filters nil so ListEvents's query builder omits them.
func buildListParams(q url.Values, page, pageSize int) auditread.ListParams {
	p := auditread.ListParams{Page: page, PageSize: pageSize}
	if v := q.Get("turn_id"); v != "" {
		p.TurnID = &v
	}
	if v := q.Get("tool_name"); v != "" {
		p.ToolName = &v
	}
	if v := q.Get("decision"); v != "" {
		p.Decision = &v
	}
	return p
}
