package verification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// InMemCodeRepository is an in-memory CodeRepository for tests and demos.
type InMemCodeRepository struct {
	mu    sync.RWMutex
	codes map[uuid.UUID]*Code
}

// NewInMemCodeRepository creates an empty in-memory code store.
func NewInMemCodeRepository() *InMemCodeRepository {
	return &InMemCodeRepository{
		codes: make(map[uuid.UUID]*Code),
	}
}

// Add persists a new unconsumed code record.
func (r *InMemCodeRepository) Add(ctx context.Context, accountID uuid.UUID, channelKey, channelValue, code string) (*Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &Code{
		ID:           uuid.New(),
		AccountID:    accountID,
		ChannelKey:   channelKey,
		ChannelValue: channelValue,
		Code:         code,
		Consumed:     false,
		CreatedAt:    time.Now().UTC(),
	}
	r.codes[rec.ID] = rec
	return copyCode(rec), nil
}

// Lookup returns the newest unconsumed record matching the account and code.
func (r *InMemCodeRepository) Lookup(ctx context.Context, accountID uuid.UUID, code string) (*Code, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Code
	for _, rec := range r.codes {
		if rec.AccountID == accountID && rec.Code == code && !rec.Consumed {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, ErrCodeNotFound
	}
	slices.SortFunc(matches, func(a, b *Code) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return copyCode(matches[0]), nil
}

// Consume marks the record consumed. Consuming twice is a no-op.
func (r *InMemCodeRepository) Consume(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.codes[id]
	if !ok {
		return ErrCodeNotFound
	}
	rec.Consumed = true
	return nil
}

func copyCode(rec *Code) *Code {
	c := *rec
	return &c
}
