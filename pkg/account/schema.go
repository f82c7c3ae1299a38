package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerifiedFlagName returns the column name for a channel's verified flag.
func VerifiedFlagName(channelKey string) string {
	return fmt.Sprintf("%s_verified", channelKey)
}

// SchemaManager applies idempotent schema changes for the verification
// flows: per-channel verified flag columns and their access restrictions.
// It runs once at startup, before the services accept traffic.
type SchemaManager struct {
	db *pgxpool.Pool

	// AppRole, when set, is revoked UPDATE on the managed flag columns so
	// only the owner role can write them.
	AppRole string
}

// NewSchemaManager creates a schema manager.
func NewSchemaManager(db *pgxpool.Pool) *SchemaManager {
	return &SchemaManager{db: db}
}

// EnsureVerifiedFlags makes sure a verified flag column exists for every
// given channel key, plus the aggregate verified column. Existing columns
// are left untouched, so the call is safe to repeat on every startup.
func (m *SchemaManager) EnsureVerifiedFlags(ctx context.Context, channelKeys []string) error {
	columns := make([]string, 0, len(channelKeys)+1)
	for _, key := range channelKeys {
		columns = append(columns, VerifiedFlagName(key))
	}
	columns = append(columns, "verified")

	for _, column := range columns {
		ident := pgx.Identifier{column}.Sanitize()
		query := fmt.Sprintf(
			`ALTER TABLE accounts ADD COLUMN IF NOT EXISTS %s BOOLEAN NOT NULL DEFAULT FALSE`,
			ident,
		)
		if _, err := m.db.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to ensure column %s: %w", column, err)
		}

		if m.AppRole != "" {
			revoke := fmt.Sprintf(
				`REVOKE UPDATE (%s) ON accounts FROM %s`,
				ident, pgx.Identifier{m.AppRole}.Sanitize(),
			)
			if _, err := m.db.Exec(ctx, revoke); err != nil {
				return fmt.Errorf("failed to restrict column %s: %w", column, err)
			}
		}

		slog.Info("Ensured verified flag column", "column", column)
	}
	return nil
}
