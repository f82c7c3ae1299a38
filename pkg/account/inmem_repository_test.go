package account

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveAssignsID", func(t *testing.T) {
		repo := NewInMemRepository()
		saved, err := repo.Save(ctx, &Account{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())
	})

	t.Run("ReadYourWrites", func(t *testing.T) {
		repo := NewInMemRepository()
		saved, err := repo.Save(ctx, &Account{Email: "alice@example.com"})
		require.NoError(t, err)

		saved.SetChannelVerified("email", true)
		saved.Verified = true
		_, err = repo.Save(ctx, saved)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.True(t, got.Verified)
		assert.True(t, got.ChannelVerified("email"))
	})

	t.Run("GetByEmail", func(t *testing.T) {
		repo := NewInMemRepository()
		saved, err := repo.Save(ctx, &Account{Email: "alice@example.com"})
		require.NoError(t, err)

		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, got.ID)

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("SetPassword", func(t *testing.T) {
		repo := NewInMemRepository()
		saved, err := repo.Save(ctx, &Account{Email: "alice@example.com"})
		require.NoError(t, err)

		require.NoError(t, repo.SetPassword(ctx, saved.ID, "newhash"))
		got, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.PasswordHash)

		assert.ErrorIs(t, repo.SetPassword(ctx, uuid.New(), "x"), ErrAccountNotFound)
	})

	t.Run("ClonedOnReturn", func(t *testing.T) {
		repo := NewInMemRepository()
		saved, err := repo.Save(ctx, &Account{Email: "alice@example.com"})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		got.Email = "mutated@example.com"

		again, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", again.Email)
	})
}
