package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RandomString returns a random string of the given length drawn from
// charset using crypto/rand. It returns an error when the system random
// source is unavailable; callers must treat that as fatal for the operation.
func RandomString(charset string, length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String(), nil
}

// MaskEmail masks the local part of an email address for logging,
// e.g. "john.doe@example.com" becomes "j******e@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}

// MaskPhone masks all but the last four digits of a phone number,
// e.g. "+1234567890" becomes "*******7890".
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
