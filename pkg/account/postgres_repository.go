package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores accounts in the accounts table. Verified flags
// live in per-channel boolean columns named <key>_verified, created on demand
// by SchemaManager, so the configured channel keys are fixed at construction.
type PostgresRepository struct {
	db   *pgxpool.Pool
	keys []string
}

// NewPostgresRepository creates an account repository for the configured
// channel keys.
func NewPostgresRepository(db *pgxpool.Pool, channelKeys []string) *PostgresRepository {
	keys := make([]string, len(channelKeys))
	copy(keys, channelKeys)
	return &PostgresRepository{db: db, keys: keys}
}

func (r *PostgresRepository) flagColumns() []string {
	cols := make([]string, len(r.keys))
	for i, key := range r.keys {
		cols[i] = pgx.Identifier{VerifiedFlagName(key)}.Sanitize()
	}
	return cols
}

func (r *PostgresRepository) selectColumns() string {
	cols := append([]string{
		"id", "email", "phone", "password_hash", "last_login_at",
		"verified", "attributes", "created_at", "updated_at",
	}, r.flagColumns()...)
	return strings.Join(cols, ", ")
}

func (r *PostgresRepository) scanAccount(row pgx.Row) (*Account, error) {
	var acct Account
	var lastLoginAt *time.Time
	var attributes map[string]string
	flags := make([]bool, len(r.keys))

	dest := []any{
		&acct.ID, &acct.Email, &acct.Phone, &acct.PasswordHash, &lastLoginAt,
		&acct.Verified, &attributes, &acct.CreatedAt, &acct.UpdatedAt,
	}
	for i := range flags {
		dest = append(dest, &flags[i])
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	acct.LastLoginAt = lastLoginAt
	acct.Attributes = attributes
	acct.VerifiedFlags = make(map[string]bool, len(r.keys))
	for i, key := range r.keys {
		acct.VerifiedFlags[key] = flags[i]
	}
	return &acct, nil
}

// GetByID loads an account by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, r.selectColumns())
	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// GetByEmail loads an account by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1`, r.selectColumns())
	return r.scanAccount(r.db.QueryRow(ctx, query, email))
}

// SetPassword replaces the stored password hash.
func (r *PostgresRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Save upserts the account and returns the persisted state. The write and
// the read-back run in one transaction, so the caller observes its own
// write without waiting.
func (r *PostgresRepository) Save(ctx context.Context, acct *Account) (*Account, error) {
	if acct.ID == uuid.Nil {
		acct = acct.Clone()
		acct.ID = uuid.New()
	}

	cols := []string{"id", "email", "phone", "password_hash", "last_login_at", "verified", "attributes"}
	args := []any{acct.ID, acct.Email, acct.Phone, acct.PasswordHash, acct.LastLoginAt, acct.Verified, acct.Attributes}
	for _, key := range r.keys {
		cols = append(cols, pgx.Identifier{VerifiedFlagName(key)}.Sanitize())
		args = append(args, acct.ChannelVerified(key))
	}

	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	updates = append(updates, "updated_at = NOW() AT TIME ZONE 'UTC'")

	query := fmt.Sprintf(`
		INSERT INTO accounts (%s)
		VALUES (%s)
		ON CONFLICT (id) DO UPDATE SET %s
		RETURNING %s`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
		r.selectColumns(),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback(ctx)

	saved, err := r.scanAccount(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return saved, nil
}
