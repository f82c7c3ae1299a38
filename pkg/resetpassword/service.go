package resetpassword

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
	verrors "github.com/tendant/simple-verify/pkg/errors"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/utils"
)

// MailSender is the delivery collaborator for reset and notification emails.
type MailSender interface {
	SendMail(to, subject, textBody, htmlBody string) error
}

// Service implements the stateless reset-password flow: it derives reset
// codes from account state, mails reset links, and validates submitted codes
// by recomputation rather than lookup.
type Service struct {
	accounts account.Repository
	sender   MailSender
	cfg      config.ResetConfig

	resetTextTmpl  string
	resetHTMLTmpl  string
	noticeTextTmpl string
	noticeHTMLTmpl string
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithResetTemplates overrides the default reset email templates.
func WithResetTemplates(text, html string) ServiceOption {
	return func(s *Service) {
		s.resetTextTmpl = text
		s.resetHTMLTmpl = html
	}
}

// NewService creates a reset-password service. sender may be nil, in which
// case issuing a reset fails with a misconfiguration error.
func NewService(accounts account.Repository, sender MailSender, cfg config.ResetConfig, opts ...ServiceOption) *Service {
	s := &Service{
		accounts:       accounts,
		sender:         sender,
		cfg:            cfg,
		resetTextTmpl:  notification.LoadTemplate("templates/email/forgot_password_email.txt"),
		resetHTMLTmpl:  notification.LoadTemplate("templates/email/forgot_password_email.html"),
		noticeTextTmpl: notification.LoadTemplate("templates/email/notification_email.txt"),
		noticeHTMLTmpl: notification.LoadTemplate("templates/email/notification_email.html"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResetLink composes the browser link embedded in the reset email.
func (s *Service) ResetLink(acct *account.Account, code string, expireAt int64) string {
	prefix := strings.TrimSuffix(s.cfg.URLPrefix, "/")
	return fmt.Sprintf("%s/reset-password/form?code=%s&user_id=%s&expire_at=%d",
		prefix, code, acct.ID, expireAt)
}

// InitiateReset issues a reset code for the account matching the email and
// mails the reset link.
//
// When the email matches no account and secure match is disabled, the call
// returns nil without sending anything, so callers cannot probe which
// addresses have accounts. With secure match enabled the miss is reported.
func (s *Service) InitiateReset(ctx context.Context, email string) error {
	if s.sender == nil {
		slog.Error("Mail server is not configured. Configure SMTP_HOST.")
		return ErrMailNotConfigured
	}
	if email == "" {
		return verrors.MissingRequired("email")
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			if !s.cfg.SecureMatch {
				slog.Info("No account for reset request, returning silently", "email", utils.MaskEmail(email))
				return nil
			}
			return ErrAccountNotFound
		}
		slog.Error("Failed to look up account by email", "err", err)
		return verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "account store unavailable")
	}
	if acct.Email == "" {
		return ErrAccountNoEmail
	}

	expireAt := time.Now().UTC().Unix() + int64(s.cfg.ResetURLLifetime)
	code := GenerateCode(s.cfg.SecretKey, acct, expireAt)
	link := s.ResetLink(acct, code, expireAt)

	data := map[string]string{
		"AppName":  s.cfg.AppName,
		"Link":     link,
		"Email":    acct.Email,
		"UserID":   acct.ID.String(),
		"Code":     code,
		"ExpireAt": fmt.Sprintf("%d", expireAt),
	}

	textBody, err := notification.RenderText(s.resetTextTmpl, data)
	if err != nil {
		slog.Error("Failed to render reset email text template", "err", err)
		return verrors.Wrap(err, verrors.ErrCodeInternal, "failed to render reset email")
	}
	htmlBody := ""
	if s.resetHTMLTmpl != "" {
		htmlBody, err = notification.RenderHTML(s.resetHTMLTmpl, data)
		if err != nil {
			slog.Error("Failed to render reset email html template", "err", err)
			return verrors.Wrap(err, verrors.ErrCodeInternal, "failed to render reset email")
		}
	}

	if err := s.sender.SendMail(acct.Email, s.cfg.Subject, textBody, htmlBody); err != nil {
		slog.Error("An error occurred sending reset password email", "err", err, "email", utils.MaskEmail(acct.Email))
		return verrors.Wrap(err, verrors.ErrCodeDeliveryFailed, "failed to send reset password email")
	}

	slog.Info("Successfully sent reset password email", "account_id", acct.ID)
	return nil
}

// ValidateCode recomputes the digest against the current account state and
// compares it with the submitted code. Expired submissions fail; every
// other failure mode (unknown account, wrong code, code invalidated by a
// password or login change) is reported as the same invalid-code error.
func (s *Service) ValidateCode(ctx context.Context, accountID uuid.UUID, code string, expireAt int64) (*account.Account, error) {
	if time.Now().UTC().Unix() > expireAt {
		return nil, ErrCodeExpired
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrInvalidCode
		}
		slog.Error("Failed to look up account", "err", err, "account_id", accountID)
		return nil, verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "account store unavailable")
	}

	expected := GenerateCode(s.cfg.SecretKey, acct, expireAt)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return nil, ErrInvalidCode
	}
	if acct.Email == "" {
		return nil, ErrAccountNoEmail
	}
	return acct, nil
}

// ResetPasswordParams carries the consume-side inputs.
type ResetPasswordParams struct {
	AccountID   uuid.UUID
	Code        string
	ExpireAt    int64
	NewPassword string
}

// ResetPassword validates the submitted code and replaces the account's
// password. The password mutation is not rolled back when the follow-up
// notification email fails; that failure is logged only.
func (s *Service) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	if params.AccountID == uuid.Nil {
		return verrors.MissingRequired("user_id")
	}
	if params.Code == "" {
		return verrors.MissingRequired("code")
	}
	if params.ExpireAt == 0 {
		return verrors.MissingRequired("expire_at")
	}
	if params.NewPassword == "" {
		return verrors.MissingRequired("password")
	}

	acct, err := s.ValidateCode(ctx, params.AccountID, params.Code, params.ExpireAt)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash new password", "err", err)
		return verrors.InternalWrap(err, "failed to hash password")
	}

	if err := s.accounts.SetPassword(ctx, acct.ID, string(hashed)); err != nil {
		slog.Error("Failed to set new password", "err", err, "account_id", acct.ID)
		return verrors.Wrap(err, verrors.ErrCodeStorageUnavailable, "failed to set password")
	}
	slog.Info("Successfully reset password", "account_id", acct.ID)

	if s.cfg.NotificationEnabled {
		s.sendNotification(acct)
	}
	return nil
}

// sendNotification mails the password-changed notice, best effort.
func (s *Service) sendNotification(acct *account.Account) {
	if s.sender == nil {
		slog.Error("Mail server is not configured. Ignore sending notification email")
		return
	}

	data := map[string]string{
		"AppName": s.cfg.AppName,
		"Email":   acct.Email,
		"UserID":  acct.ID.String(),
	}

	textBody, err := notification.RenderText(s.noticeTextTmpl, data)
	if err != nil {
		slog.Error("Failed to render notification email", "err", err)
		return
	}
	htmlBody, err := notification.RenderHTML(s.noticeHTMLTmpl, data)
	if err != nil {
		slog.Error("Failed to render notification email", "err", err)
		return
	}

	subject := fmt.Sprintf("%s password changed", s.cfg.AppName)
	if err := s.sender.SendMail(acct.Email, subject, textBody, htmlBody); err != nil {
		slog.Error("An error occurred sending notification email", "err", err, "account_id", acct.ID)
		return
	}
	slog.Info("Successfully sent notification email", "account_id", acct.ID)
}
