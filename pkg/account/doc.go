// Package account defines the account records the verification and reset
// flows operate on, and their storage backends.
package account
