package resetpassword

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tendant/simple-verify/pkg/account"
)

func TestGenerateCode(t *testing.T) {
	acct := &account.Account{
		ID:           uuid.MustParse("a88cdf52-5d29-43ae-9b62-74f84d6638f6"),
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$somestoredhash",
	}

	t.Run("Deterministic", func(t *testing.T) {
		code1 := GenerateCode("secret", acct, 1700000000)
		code2 := GenerateCode("secret", acct, 1700000000)
		assert.Equal(t, code1, code2)
		assert.Len(t, code1, CodeLength)
	})

	t.Run("DifferentSecret", func(t *testing.T) {
		code1 := GenerateCode("secret", acct, 1700000000)
		code2 := GenerateCode("other-secret", acct, 1700000000)
		assert.NotEqual(t, code1, code2)
	})

	t.Run("DifferentExpiry", func(t *testing.T) {
		code1 := GenerateCode("secret", acct, 1700000000)
		code2 := GenerateCode("secret", acct, 1700000001)
		assert.NotEqual(t, code1, code2)
	})

	t.Run("PasswordChangeInvalidates", func(t *testing.T) {
		code1 := GenerateCode("secret", acct, 1700000000)

		changed := acct.Clone()
		changed.PasswordHash = "$2a$10$anotherhash"
		code2 := GenerateCode("secret", changed, 1700000000)
		assert.NotEqual(t, code1, code2)
	})

	t.Run("LoginInvalidates", func(t *testing.T) {
		code1 := GenerateCode("secret", acct, 1700000000)

		loggedIn := acct.Clone()
		lastLogin := time.Date(2023, 11, 1, 12, 0, 0, 0, time.UTC)
		loggedIn.LastLoginAt = &lastLogin
		code2 := GenerateCode("secret", loggedIn, 1700000000)
		assert.NotEqual(t, code1, code2)
	})

	t.Run("EmptyPasswordHash", func(t *testing.T) {
		noHash := acct.Clone()
		noHash.PasswordHash = ""
		code := GenerateCode("secret", noHash, 1700000000)
		assert.Len(t, code, CodeLength)
		assert.NotEqual(t, GenerateCode("secret", acct, 1700000000), code)
	})
}
