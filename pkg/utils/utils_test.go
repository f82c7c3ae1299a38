package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	s, err := RandomString("0123456789", 16)
	require.NoError(t, err)
	assert.Len(t, s, 16)
	for _, c := range s {
		assert.Contains(t, "0123456789", string(c))
	}

	s2, err := RandomString("0123456789", 16)
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)

	empty, err := RandomString("ab", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j******e@example.com", MaskEmail("john.doe@example.com"))
	assert.Equal(t, "**@example.com", MaskEmail("jo@example.com"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	assert.Equal(t, "***", MaskEmail(""))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*******7890", MaskPhone("+1234567890"))
	assert.Equal(t, "****", MaskPhone("1234"))
	assert.Equal(t, "", MaskPhone(""))
}
