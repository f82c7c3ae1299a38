package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository is an in-memory account repository for tests and demos.
// Save is immediately visible to subsequent reads.
type InMemRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
}

// NewInMemRepository creates an empty in-memory repository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		accounts: make(map[uuid.UUID]*Account),
	}
}

// GetByID loads an account by id.
func (r *InMemRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acct.Clone(), nil
}

// GetByEmail loads an account by email.
func (r *InMemRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Email == email {
			return acct.Clone(), nil
		}
	}
	return nil, ErrAccountNotFound
}

// SetPassword replaces the stored password hash.
func (r *InMemRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	acct.PasswordHash = passwordHash
	acct.UpdatedAt = time.Now().UTC()
	return nil
}

// Save upserts the account and returns the persisted state.
func (r *InMemRepository) Save(ctx context.Context, acct *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := acct.Clone()
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	now := time.Now().UTC()
	if existing, ok := r.accounts[saved.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	r.accounts[saved.ID] = saved
	return saved.Clone(), nil
}
