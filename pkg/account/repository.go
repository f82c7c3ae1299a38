package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the account-store collaborator interface. Implementations
// must provide read-your-writes semantics: state saved through Save must be
// visible to subsequent reads on the same repository without delay.
type Repository interface {
	// GetByID loads an account by its identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByEmail loads an account by its email address.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// SetPassword replaces the stored password hash.
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Save upserts the account and returns the persisted state.
	Save(ctx context.Context, acct *Account) (*Account, error)
}
