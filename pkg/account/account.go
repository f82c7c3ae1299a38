package account

import (
	"time"

	"github.com/google/uuid"
)

// Well-known channel keys. Any other key resolves through Attributes.
const (
	ChannelEmail = "email"
	ChannelPhone = "phone"
)

// Account is the user-management record the verification flows operate on.
// The core flows never create or delete accounts; they read channel values
// and update verified flags and the password hash.
type Account struct {
	ID            uuid.UUID
	Email         string
	Phone         string
	PasswordHash  string
	LastLoginAt   *time.Time
	Attributes    map[string]string // additional verifiable channel values
	VerifiedFlags map[string]bool   // channel key -> verified
	Verified      bool              // aggregate flag, recomputed by policy
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChannelValue returns the account's current value for a channel key.
func (a *Account) ChannelValue(key string) string {
	switch key {
	case ChannelEmail:
		return a.Email
	case ChannelPhone:
		return a.Phone
	default:
		return a.Attributes[key]
	}
}

// ChannelVerified reports whether the channel is currently verified.
func (a *Account) ChannelVerified(key string) bool {
	return a.VerifiedFlags[key]
}

// SetChannelVerified sets the verified flag for a channel key.
func (a *Account) SetChannelVerified(key string, verified bool) {
	if a.VerifiedFlags == nil {
		a.VerifiedFlags = make(map[string]bool)
	}
	a.VerifiedFlags[key] = verified
}

// Clone returns a deep copy, so policy evaluation can compare old and new
// state without aliasing the maps.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		clone.LastLoginAt = &t
	}
	if a.Attributes != nil {
		clone.Attributes = make(map[string]string, len(a.Attributes))
		for k, v := range a.Attributes {
			clone.Attributes[k] = v
		}
	}
	if a.VerifiedFlags != nil {
		clone.VerifiedFlags = make(map[string]bool, len(a.VerifiedFlags))
		for k, v := range a.VerifiedFlags {
			clone.VerifiedFlags[k] = v
		}
	}
	return &clone
}
