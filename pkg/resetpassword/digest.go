package resetpassword

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"strconv"

	"github.com/tendant/simple-verify/pkg/account"
)

// CodeLength is the number of hex characters kept from the digest.
const CodeLength = 8

// GenerateCode derives the reset code for an account. The code is a pure
// function of the secret key and the account state at computation time, so
// any change to the password or the last login timestamp invalidates every
// previously issued code without requiring storage.
//
// expireAt is a unix timestamp in seconds and is part of the digest input,
// so a tampered expiry also invalidates the code.
func GenerateCode(secretKey string, acct *account.Account, expireAt int64) string {
	h := sha1.New()
	io.WriteString(h, secretKey)
	io.WriteString(h, acct.ID.String())
	io.WriteString(h, acct.Email)
	io.WriteString(h, strconv.FormatInt(expireAt, 10))
	if acct.PasswordHash != "" {
		io.WriteString(h, acct.PasswordHash)
	}
	if acct.LastLoginAt != nil {
		io.WriteString(h, strconv.FormatInt(acct.LastLoginAt.UTC().Unix(), 10))
	}
	return hex.EncodeToString(h.Sum(nil))[:CodeLength]
}
