package verification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCodeRepository implements CodeRepository on PostgreSQL.
type PostgresCodeRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCodeRepository creates a PostgreSQL-backed code store.
func NewPostgresCodeRepository(db *pgxpool.Pool) *PostgresCodeRepository {
	return &PostgresCodeRepository{db: db}
}

// Add persists a new unconsumed code record.
func (r *PostgresCodeRepository) Add(ctx context.Context, accountID uuid.UUID, channelKey, channelValue, code string) (*Code, error) {
	query := `
		INSERT INTO verification_codes (account_id, channel_key, channel_value, code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, account_id, channel_key, channel_value, code, consumed, created_at
	`
	var rec Code
	err := r.db.QueryRow(ctx, query, accountID, channelKey, channelValue, code).Scan(
		&rec.ID, &rec.AccountID, &rec.ChannelKey, &rec.ChannelValue,
		&rec.Code, &rec.Consumed, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert verification code: %w", err)
	}
	return &rec, nil
}

// Lookup returns the newest unconsumed record matching the account and code.
func (r *PostgresCodeRepository) Lookup(ctx context.Context, accountID uuid.UUID, code string) (*Code, error) {
	query := `
		SELECT id, account_id, channel_key, channel_value, code, consumed, created_at
		FROM verification_codes
		WHERE account_id = $1 AND code = $2 AND NOT consumed
		ORDER BY created_at DESC
		LIMIT 1
	`
	var rec Code
	err := r.db.QueryRow(ctx, query, accountID, code).Scan(
		&rec.ID, &rec.AccountID, &rec.ChannelKey, &rec.ChannelValue,
		&rec.Code, &rec.Consumed, &rec.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}
	return &rec, nil
}

// Consume marks the record consumed. Consuming twice is a no-op.
func (r *PostgresCodeRepository) Consume(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE verification_codes SET consumed = TRUE WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}
