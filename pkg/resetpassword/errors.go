package resetpassword

import (
	verrors "github.com/tendant/simple-verify/pkg/errors"
)

var (
	// ErrAccountNotFound is returned when no account matches and secure
	// match is enabled
	ErrAccountNotFound = verrors.New(verrors.ErrCodeAccountNotFound, "account not found")

	// ErrAccountNoEmail is returned when the matched account has no email
	// address to deliver the reset link to
	ErrAccountNoEmail = verrors.New(verrors.ErrCodeAccountNoEmail, "the account does not have an email")

	// ErrInvalidCode is returned for any digest mismatch. A wrong code, a
	// stale code invalidated by a password change, and an unknown account
	// are deliberately indistinguishable.
	ErrInvalidCode = verrors.New(verrors.ErrCodeCodeInvalid, "account not found or code invalid")

	// ErrCodeExpired is returned when the submitted expiry has passed
	ErrCodeExpired = verrors.New(verrors.ErrCodeCodeExpired, "the reset code has expired")

	// ErrMailNotConfigured is returned when no mail sender is available
	ErrMailNotConfigured = verrors.New(verrors.ErrCodeMisconfigured, "mail server is not configured")
)
