package permission

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresOverrideStore persists PolicyOverride rows in a
// project_id/tool_name-keyed table, following the same
// COALESCE-for-partial-update / upsert discipline the rest of this
// runtime's Postgres access uses.
type PostgresOverrideStore struct {
	db *sql.DB
}

// NewPostgresOverrideStore wraps an already-opened *sql.DB (opened via
// sql.Open("pgx", dsn), with the pgx stdlib driver registered as a side
// effect of importing github.com/jackc/pgx/v5/stdlib).
func NewPostgresOverrideStore(db *sql.DB) *PostgresOverrideStore {
	return &PostgresOverrideStore{db: db}
}

func (s *PostgresOverrideStore) Get(ctx context.Context, projectID, toolName string) (*PolicyOverride, error) {
	var o PolicyOverride
	o.ToolName = toolName
	err := s.db.QueryRowContext(ctx, `
		SELECT decision, updated_at
		FROM policy_overrides WHERE project_id = $1 AND tool_name = $2`,
		projectID, toolName,
	).Scan(&o.Decision, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("permission: GetOverride: %w", err)
	}
	return &o, nil
}

func (s *PostgresOverrideStore) Set(ctx context.Context, projectID, toolName string, decision Decision) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policy_overrides (project_id, tool_name, decision, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, tool_name)
		DO UPDATE SET decision = $3, updated_at = $4`,
		projectID, toolName, decision, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("permission: SetOverride: %w", err)
	}
	return nil
}
