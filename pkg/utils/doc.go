// Package utils provides small stateless helpers shared across simple-verify:
// secure random string generation over a caller-supplied charset and
// contact-value masking for logs. All functions are thread-safe.
package utils
