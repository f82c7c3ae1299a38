package verification

import (
	"errors"

	verrors "github.com/tendant/simple-verify/pkg/errors"
)

// ErrCodeNotFound is the repository-level sentinel for a missing code record.
var ErrCodeNotFound = errors.New("verification code not found")

var (
	// ErrUnknownChannel is returned when the record key is not configured
	// for verification
	ErrUnknownChannel = verrors.New(verrors.ErrCodeUnknownChannel, "record key is not configured to verify")

	// ErrAccountNotFound is returned when the account does not exist
	ErrAccountNotFound = verrors.New(verrors.ErrCodeAccountNotFound, "account not found")

	// ErrNothingToVerify is returned when the channel's current value is
	// empty
	ErrNothingToVerify = verrors.New(verrors.ErrCodeNothingToVerify, "there is nothing to verify for this record key")

	// ErrInvalidCode is returned when no matching unconsumed code exists
	ErrInvalidCode = verrors.New(verrors.ErrCodeCodeInvalid, "the code is not valid for this account")

	// ErrValueChanged is returned when the account's channel value changed
	// after the code was issued; the user must request a new verification
	ErrValueChanged = verrors.New(verrors.ErrCodeValueChanged, "the account data has since been modified, a new verification is required")

	// ErrCodeExpired is returned when the channel expiry elapsed since the
	// code was created
	ErrCodeExpired = verrors.New(verrors.ErrCodeCodeExpired, "the code has expired")
)
