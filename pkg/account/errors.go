package account

import "errors"

var (
	// ErrAccountNotFound is returned when no account matches the lookup
	ErrAccountNotFound = errors.New("account not found")

	// ErrStorageUnavailable is returned when the backing store is unreachable
	ErrStorageUnavailable = errors.New("account store unavailable")
)
