package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationConfigValidate(t *testing.T) {
	keys := map[string]ChannelConfig{
		"email": {},
		"phone": {},
	}

	t.Run("AnyAndAll", func(t *testing.T) {
		assert.NoError(t, (&VerificationConfig{Criteria: CriteriaAny, Keys: keys}).Validate())
		assert.NoError(t, (&VerificationConfig{Criteria: CriteriaAll, Keys: keys}).Validate())
	})

	t.Run("CommaList", func(t *testing.T) {
		v := &VerificationConfig{Criteria: "email,phone", Keys: keys}
		assert.NoError(t, v.Validate())
	})

	t.Run("CommaListUnknownKey", func(t *testing.T) {
		v := &VerificationConfig{Criteria: "email,pager", Keys: keys}
		assert.Error(t, v.Validate())
	})
}

func TestCriteriaKeys(t *testing.T) {
	t.Run("SplitsAndTrims", func(t *testing.T) {
		v := &VerificationConfig{Criteria: "email, phone"}
		assert.Equal(t, []string{"email", "phone"}, v.CriteriaKeys())
	})

	t.Run("DropsEmptyParts", func(t *testing.T) {
		v := &VerificationConfig{Criteria: "email,,phone,"}
		assert.Equal(t, []string{"email", "phone"}, v.CriteriaKeys())
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("RejectsNonPositiveLifetime", func(t *testing.T) {
		cfg := &Config{
			Reset:        ResetConfig{ResetURLLifetime: 0},
			Verification: VerificationConfig{Criteria: CriteriaAny},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Valid", func(t *testing.T) {
		cfg := &Config{
			Reset:        ResetConfig{ResetURLLifetime: 43200},
			Verification: VerificationConfig{Criteria: CriteriaAny},
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestHasKey(t *testing.T) {
	v := &VerificationConfig{Keys: map[string]ChannelConfig{"email": {}}}
	assert.True(t, v.HasKey("email"))
	assert.False(t, v.HasKey("phone"))
}
