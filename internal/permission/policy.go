// Package permission implements the permission arbitrator: the
// allow/ask/deny classification every tool dispatch consults before a
// handler runs.
package permission

import "time"

// Decision is the three-way verdict the arbitrator returns for a tool.
type Decision string

const (
	Allow Decision = "allow"
	Ask   Decision = "ask"
	Deny  Decision = "deny"
)

// StaticClass is the tool's boot-time-fixed default classification,
// before any session or durable override is consulted.
var StaticClass = map[string]Decision{
	"file_read":    Allow,
	"glob_search":  Allow,
	"grep_search":  Allow,
	"git_status":   Allow,
	"git_diff":     Allow,
	"git_log":      Allow,
	"file_write":   Ask,
	"file_edit":    Ask,
	"git_add":      Ask,
	"git_commit":   Ask,
	"bash_exec":    Ask,
}

// DefaultFor returns the static classification for a tool name, falling
// back to Ask for any tool with no explicit entry — an unrecognized tool
// is never silently allowed.
func DefaultFor(toolName string) Decision {
	if d, ok := StaticClass[toolName]; ok {
		return d
	}
	return Ask
}

// PolicyOverride is a durable, project-scoped decision that takes
// precedence over a tool's static default.
type PolicyOverride struct {
	ToolName  string
	Decision  Decision
	UpdatedAt time.Time
}
