package resetpassword

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
	verrors "github.com/tendant/simple-verify/pkg/errors"
)

type fakeMailSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

func (f *fakeMailSender) SendMail(to, subject, textBody, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	return nil
}

func testResetConfig() config.ResetConfig {
	return config.ResetConfig{
		AppName:          "testapp",
		URLPrefix:        "http://localhost:4000",
		SecretKey:        "test-secret-key",
		Subject:          "Reset password instructions",
		ResetURLLifetime: 43200,
	}
}

func seedAccount(t *testing.T, repo *account.InMemRepository, email string) *account.Account {
	t.Helper()
	acct, err := repo.Save(context.Background(), &account.Account{
		Email:        email,
		PasswordHash: "$2a$10$storedhash",
	})
	require.NoError(t, err)
	return acct
}

func TestInitiateReset(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsResetEmail", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		sender := &fakeMailSender{}
		svc := NewService(repo, sender, testResetConfig())

		err := svc.InitiateReset(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "alice@example.com", sender.sent[0].To)
		assert.Equal(t, "Reset password instructions", sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].TextBody, "/reset-password/form?code=")
		assert.Contains(t, sender.sent[0].TextBody, acct.ID.String())
	})

	t.Run("UnknownEmailSilentByDefault", func(t *testing.T) {
		repo := account.NewInMemRepository()
		sender := &fakeMailSender{}
		svc := NewService(repo, sender, testResetConfig())

		err := svc.InitiateReset(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Empty(t, sender.sent)
	})

	t.Run("UnknownEmailReportedWithSecureMatch", func(t *testing.T) {
		repo := account.NewInMemRepository()
		cfg := testResetConfig()
		cfg.SecureMatch = true
		svc := NewService(repo, &fakeMailSender{}, cfg)

		err := svc.InitiateReset(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("MissingEmail", func(t *testing.T) {
		repo := account.NewInMemRepository()
		svc := NewService(repo, &fakeMailSender{}, testResetConfig())

		err := svc.InitiateReset(ctx, "")
		assert.True(t, verrors.IsCode(err, verrors.ErrCodeMissingRequired))
	})

	t.Run("NoSenderConfigured", func(t *testing.T) {
		repo := account.NewInMemRepository()
		seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, nil, testResetConfig())

		err := svc.InitiateReset(ctx, "alice@example.com")
		assert.ErrorIs(t, err, ErrMailNotConfigured)
	})

	t.Run("DeliveryFailure", func(t *testing.T) {
		repo := account.NewInMemRepository()
		seedAccount(t, repo, "alice@example.com")
		sender := &fakeMailSender{err: assert.AnError}
		svc := NewService(repo, sender, testResetConfig())

		err := svc.InitiateReset(ctx, "alice@example.com")
		assert.True(t, verrors.IsCode(err, verrors.ErrCodeDeliveryFailed))
	})
}

func TestValidateCode(t *testing.T) {
	ctx := context.Background()
	cfg := testResetConfig()

	t.Run("ValidCode", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() + 3600
		code := GenerateCode(cfg.SecretKey, acct, expireAt)

		got, err := svc.ValidateCode(ctx, acct.ID, code, expireAt)
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
	})

	t.Run("WrongCode", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() + 3600
		_, err := svc.ValidateCode(ctx, acct.ID, "00000000", expireAt)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("ExpiredCode", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() - 1
		code := GenerateCode(cfg.SecretKey, acct, expireAt)
		_, err := svc.ValidateCode(ctx, acct.ID, code, expireAt)
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("UnknownAccountIndistinguishable", func(t *testing.T) {
		repo := account.NewInMemRepository()
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() + 3600
		_, err := svc.ValidateCode(ctx, uuid.New(), "00000000", expireAt)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("PasswordChangeInvalidatesCode", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() + 3600
		code := GenerateCode(cfg.SecretKey, acct, expireAt)

		require.NoError(t, repo.SetPassword(ctx, acct.ID, "$2a$10$newhash"))

		_, err := svc.ValidateCode(ctx, acct.ID, code, expireAt)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	cfg := testResetConfig()

	t.Run("ReplacesPassword", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() + 3600
		code := GenerateCode(cfg.SecretKey, acct, expireAt)

		err := svc.ResetPassword(ctx, ResetPasswordParams{
			AccountID:   acct.ID,
			Code:        code,
			ExpireAt:    expireAt,
			NewPassword: "new-password-123",
		})
		require.NoError(t, err)

		updated, err := repo.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password-123")))
	})

	t.Run("CodeSingleUse", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		expireAt := time.Now().UTC().Unix() + 3600
		code := GenerateCode(cfg.SecretKey, acct, expireAt)

		params := ResetPasswordParams{
			AccountID:   acct.ID,
			Code:        code,
			ExpireAt:    expireAt,
			NewPassword: "new-password-123",
		}
		require.NoError(t, svc.ResetPassword(ctx, params))

		// The digest covers the password hash, so the consumed code no
		// longer matches.
		err := svc.ResetPassword(ctx, params)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("MissingFields", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		svc := NewService(repo, &fakeMailSender{}, cfg)

		err := svc.ResetPassword(ctx, ResetPasswordParams{AccountID: acct.ID})
		assert.True(t, verrors.IsCode(err, verrors.ErrCodeMissingRequired))
	})

	t.Run("SendsNotificationWhenEnabled", func(t *testing.T) {
		repo := account.NewInMemRepository()
		acct := seedAccount(t, repo, "alice@example.com")
		sender := &fakeMailSender{}
		notifyCfg := testResetConfig()
		notifyCfg.NotificationEnabled = true
		svc := NewService(repo, sender, notifyCfg)

		expireAt := time.Now().UTC().Unix() + 3600
		code := GenerateCode(notifyCfg.SecretKey, acct, expireAt)

		err := svc.ResetPassword(ctx, ResetPasswordParams{
			AccountID:   acct.ID,
			Code:        code,
			ExpireAt:    expireAt,
			NewPassword: "new-password-123",
		})
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].Subject, "password changed")
	})
}
