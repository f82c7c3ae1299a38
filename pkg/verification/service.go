package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
	verrors "github.com/tendant/simple-verify/pkg/errors"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/utils"
)

// MailSender delivers the optional welcome email after account creation.
type MailSender interface {
	SendMail(to, subject, textBody, htmlBody string) error
}

// Service implements the stateful verify-code flow: it issues random codes
// over configured channels, validates submissions against stored records,
// and recomputes verified flags when accounts change.
type Service struct {
	accounts  account.Repository
	codes     CodeRepository
	cfg       *config.VerificationConfig
	providers map[string]notification.Provider

	appName   string
	urlPrefix string

	welcomeSender   MailSender
	welcomeTextTmpl string
	welcomeHTMLTmpl string
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithAppInfo sets the application name and browser URL prefix used in
// outgoing messages and verification links.
func WithAppInfo(appName, urlPrefix string) ServiceOption {
	return func(s *Service) {
		s.appName = appName
		s.urlPrefix = urlPrefix
	}
}

// WithWelcomeMailer enables the welcome email sent after account creation.
func WithWelcomeMailer(sender MailSender) ServiceOption {
	return func(s *Service) {
		s.welcomeSender = sender
	}
}

// WithProvider overrides the delivery provider for a channel key. Intended
// for tests and for applications with custom providers.
func WithProvider(channelKey string, provider notification.Provider) ServiceOption {
	return func(s *Service) {
		s.providers[channelKey] = provider
	}
}

// NewService creates a verification service. Providers for each configured
// channel key are built from the channel's provider configuration; a channel
// whose provider cannot be built fails the call.
func NewService(accounts account.Repository, codes CodeRepository, cfg *config.VerificationConfig, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		accounts:        accounts,
		codes:           codes,
		cfg:             cfg,
		providers:       make(map[string]notification.Provider, len(cfg.Keys)),
		welcomeTextTmpl: notification.LoadTemplate("templates/email/welcome_email.txt"),
		welcomeHTMLTmpl: notification.LoadTemplate("templates/email/welcome_email.html"),
	}
	for key, channelCfg := range cfg.Keys {
		provider, err := notification.NewProvider(key, channelCfg.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to build provider for channel %q: %w", key, err)
		}
		s.providers[key] = provider
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// VerifyLink composes the browser link embedded in verification messages.
func (s *Service) VerifyLink(accountID uuid.UUID, code string) string {
	prefix := strings.TrimSuffix(s.urlPrefix, "/")
	return fmt.Sprintf("%s/verify-code/form?code=%s&auth_id=%s", prefix, code, accountID)
}

// RequestVerification issues a fresh code for the account's channel and
// delivers it through the channel's provider. Earlier codes for the same
// channel stay outstanding; the newest-first lookup resolves reuse.
func (s *Service) RequestVerification(ctx context.Context, accountID uuid.UUID, channelKey string) error {
	channelCfg, ok := s.cfg.Keys[channelKey]
	if !ok {
		return ErrUnknownChannel
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		slog.Error("Failed to look up account", "err", err, "account_id", accountID)
		return verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "account store unavailable")
	}

	value := acct.ChannelValue(channelKey)
	if value == "" {
		return ErrNothingToVerify
	}

	return s.issueAndSend(ctx, acct, channelKey, channelCfg, value)
}

// issueAndSend generates, persists and delivers one code. The code is stored
// before delivery so a submission racing a slow send still validates.
func (s *Service) issueAndSend(ctx context.Context, acct *account.Account, channelKey string, channelCfg config.ChannelConfig, value string) error {
	code, err := GenerateCode(channelCfg.CodeFormat)
	if err != nil {
		slog.Error("Failed to generate verification code", "err", err)
		return verrors.InternalWrap(err, "failed to generate verification code")
	}

	if _, err := s.codes.Add(ctx, acct.ID, channelKey, value, code); err != nil {
		slog.Error("Failed to store verification code", "err", err, "account_id", acct.ID)
		return verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "failed to store verification code")
	}

	data := map[string]string{
		"AppName":   s.appName,
		"RecordKey": channelKey,
		"Code":      code,
		"Link":      s.VerifyLink(acct.ID, code),
		"UserID":    acct.ID.String(),
		"Email":     acct.Email,
	}
	if err := s.providers[channelKey].Send(value, data); err != nil {
		slog.Error("An error occurred sending verification code", "err", err,
			"account_id", acct.ID, "channel", channelKey)
		return verrors.Wrap(err, verrors.ErrCodeDeliveryFailed, "failed to send verification code")
	}

	slog.Info("Successfully sent verification code", "account_id", acct.ID, "channel", channelKey)
	return nil
}

// SubmitVerification validates a submitted code, marks it consumed, sets the
// channel's verified flag, recomputes the aggregate flag and saves the
// account. It returns the saved account and the channel key the code
// verified, so callers can select per-channel follow-up behavior.
//
// Failure modes, checked in order: no matching unconsumed code, channel no
// longer configured, code older than the channel expiry, channel value
// changed since issuance. A consumed code is indistinguishable from a wrong
// one.
func (s *Service) SubmitVerification(ctx context.Context, accountID uuid.UUID, code string) (*account.Account, string, error) {
	rec, err := s.codes.Lookup(ctx, accountID, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, "", ErrInvalidCode
		}
		slog.Error("Failed to look up verification code", "err", err, "account_id", accountID)
		return nil, "", verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "code store unavailable")
	}

	channelCfg, ok := s.cfg.Keys[rec.ChannelKey]
	if !ok {
		return nil, "", withChannel(ErrUnknownChannel, rec.ChannelKey)
	}
	if channelCfg.Expiry > 0 {
		expireAt := rec.CreatedAt.Add(time.Duration(channelCfg.Expiry) * time.Second)
		if time.Now().After(expireAt) {
			return nil, "", withChannel(ErrCodeExpired, rec.ChannelKey)
		}
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, "", ErrAccountNotFound
		}
		slog.Error("Failed to look up account", "err", err, "account_id", accountID)
		return nil, "", verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "account store unavailable")
	}
	if acct.ChannelValue(rec.ChannelKey) != rec.ChannelValue {
		return nil, "", withChannel(ErrValueChanged, rec.ChannelKey)
	}

	if err := s.codes.Consume(ctx, rec.ID); err != nil {
		slog.Error("Failed to consume verification code", "err", err, "code_id", rec.ID)
		return nil, "", verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "failed to consume verification code")
	}

	updated := acct.Clone()
	updated.SetChannelVerified(rec.ChannelKey, true)
	if s.cfg.AutoUpdate {
		updated.Verified = aggregateVerified(updated, s.cfg)
	}

	saved, err := s.accounts.Save(ctx, updated)
	if err != nil {
		slog.Error("Failed to save verified account", "err", err, "account_id", acct.ID)
		return nil, "", verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "failed to save account")
	}

	slog.Info("Successfully verified channel", "account_id", acct.ID, "channel", rec.ChannelKey)
	return saved, rec.ChannelKey, nil
}

// GetAccount loads an account for status reporting.
func (s *Service) GetAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		slog.Error("Failed to look up account", "err", err, "account_id", accountID)
		return nil, verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "account store unavailable")
	}
	return acct, nil
}

// SaveAccount persists an account change through the verification policy.
// The previous state is loaded first; verified flags are cleared for
// channels whose value changed, the aggregate flag is recomputed when auto
// update is enabled, and auto-send rules fire after a successful save. An
// account with no matching stored record is treated as a create.
//
// Auto sends and the welcome email are best effort; their failures are
// logged and do not fail the save.
func (s *Service) SaveAccount(ctx context.Context, updated *account.Account) (*account.Account, error) {
	var original *account.Account
	if updated.ID != uuid.Nil {
		existing, err := s.accounts.GetByID(ctx, updated.ID)
		if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
			slog.Error("Failed to load account before save", "err", err, "account_id", updated.ID)
			return nil, verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "account store unavailable")
		}
		original = existing
	}

	evaluated := EvaluatePolicy(original, updated, s.cfg)

	saved, err := s.accounts.Save(ctx, evaluated)
	if err != nil {
		slog.Error("Failed to save account", "err", err, "account_id", updated.ID)
		return nil, verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "failed to save account")
	}

	isCreate := original == nil
	if isCreate && (s.cfg.AutoSendSignup || s.cfg.Required) {
		s.autoSend(ctx, saved, ChangedChannels(nil, saved, s.cfg))
	} else if !isCreate && s.cfg.AutoSendUpdate {
		// Only channels whose value actually changed get a fresh code.
		s.autoSend(ctx, saved, ChangedChannels(original, saved, s.cfg))
	}

	if isCreate && s.welcomeSender != nil && saved.Email != "" {
		s.sendWelcome(saved)
	}
	return saved, nil
}

func (s *Service) autoSend(ctx context.Context, acct *account.Account, channels []string) {
	for _, key := range channels {
		channelCfg := s.cfg.Keys[key]
		value := acct.ChannelValue(key)
		if err := s.issueAndSend(ctx, acct, key, channelCfg, value); err != nil {
			slog.Error("Failed to auto-send verification", "err", err,
				"account_id", acct.ID, "channel", key)
		}
	}
}

// withChannel returns a copy of a sentinel annotated with the channel key.
// Sentinels are shared; they must never be mutated in place.
func withChannel(e *verrors.Error, channelKey string) *verrors.Error {
	return verrors.New(e.Code, e.Message).WithDetail("record_key", channelKey)
}

func (s *Service) sendWelcome(acct *account.Account) {
	data := map[string]string{
		"AppName": s.appName,
		"Email":   acct.Email,
		"UserID":  acct.ID.String(),
	}
	textBody, err := notification.RenderText(s.welcomeTextTmpl, data)
	if err != nil {
		slog.Error("Failed to render welcome email", "err", err)
		return
	}
	htmlBody, err := notification.RenderHTML(s.welcomeHTMLTmpl, data)
	if err != nil {
		slog.Error("Failed to render welcome email", "err", err)
		return
	}

	subject := fmt.Sprintf("Welcome to %s", s.appName)
	if err := s.welcomeSender.SendMail(acct.Email, subject, textBody, htmlBody); err != nil {
		slog.Error("An error occurred sending welcome email", "err", err,
			"email", utils.MaskEmail(acct.Email))
		return
	}
	slog.Info("Successfully sent welcome email", "account_id", acct.ID)
}
