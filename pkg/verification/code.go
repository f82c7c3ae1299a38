package verification

import (
	"fmt"

	"github.com/tendant/simple-verify/pkg/utils"
)

// Code formats configured per channel.
const (
	CodeFormatNumeric = "numeric" // 6 random digits, for SMS entry
	CodeFormatComplex = "complex" // 8 random digits+lowercase, the default
)

const (
	numericCharset = "0123456789"
	complexCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

	numericLength = 6
	complexLength = 8
)

// GenerateCode produces a random verification code in the given format.
// "numeric" yields a 6-digit string; any other format yields an 8-character
// string of digits and lowercase letters. The code comes from crypto/rand
// and the call fails closed when the random source is unavailable, aborting
// the send.
func GenerateCode(codeFormat string) (string, error) {
	charset := complexCharset
	length := complexLength
	if codeFormat == CodeFormatNumeric {
		charset = numericCharset
		length = numericLength
	}

	code, err := utils.RandomString(charset, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return code, nil
}
