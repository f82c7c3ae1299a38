// Package errors provides structured error handling with error codes for
// simple-verify.
//
// Every service-level failure carries a typed ErrorCode so callers and HTTP
// handlers can react to the kind of failure without string matching. Codes
// fall into four families:
//
//   - invalid input (missing fields, bad codes, expired codes, mismatched
//     confirmation) — never retried, surfaced directly to the caller
//   - not found (unknown account, unconfigured channel)
//   - unauthorized/forbidden (operations requiring an authenticated caller)
//   - internal (delivery failure, storage unavailability, misconfiguration)
//     — logged with full context and surfaced without automatic retry
//
// Basic usage:
//
//	err := errors.New(errors.ErrCodeCodeExpired, "the code has expired")
//	err := errors.Wrap(dbErr, errors.ErrCodeStorageUnavailable, "code store unreachable")
//
//	if errors.IsCode(err, errors.ErrCodeCodeExpired) { ... }
//
// HTTP handlers map codes to status codes with MapErrorCodeToHTTPStatus or
// Error.HTTPStatusCode.
package errors
