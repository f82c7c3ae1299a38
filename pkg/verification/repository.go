package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Code is a persisted one-time verification code. ChannelValue snapshots the
// account's channel value at issuance time, so a code cannot validate a
// value that changed after it was issued.
type Code struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	ChannelKey   string
	ChannelValue string
	Code         string
	Consumed     bool
	CreatedAt    time.Time
}

// CodeRepository is the code-store collaborator. Multiple outstanding codes
// may coexist per (account, channel); there is no uniqueness constraint
// across historical codes.
//
// Consumed codes are excluded from Lookup, so a second submission of an
// already consumed code reports not-found. Records are never deleted;
// superseded codes are simply outranked by the newest-first lookup.
type CodeRepository interface {
	// Add persists a new unconsumed code with a server-assigned id and
	// creation timestamp.
	Add(ctx context.Context, accountID uuid.UUID, channelKey, channelValue, code string) (*Code, error)

	// Lookup returns the most recently created unconsumed record matching
	// the account and code, or ErrCodeNotFound. It never mutates state.
	Lookup(ctx context.Context, accountID uuid.UUID, code string) (*Code, error)

	// Consume marks the record consumed. The call is idempotent; consuming
	// an already consumed record is a no-op.
	Consume(ctx context.Context, id uuid.UUID) error
}
