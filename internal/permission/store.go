package permission

import "context"

// OverrideStore is the durable backing for PolicyOverride records. A
// Postgres-backed implementation is used when a DSN is configured; a
// local file-backed implementation is the fallback so the arbitrator
// always has somewhere durable to write operator answers even without a
// database.
type OverrideStore interface {
	Get(ctx context.Context, projectID, toolName string) (*PolicyOverride, error)
	Set(ctx context.Context, projectID, toolName string, decision Decision) error
}
