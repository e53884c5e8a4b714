package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{"valid", "Rangoli2024", false},
		{"unicode letters count", "पासवर्ड12345", false},
		{"too short", "abc12", true},
		{"too long", "a1" + string(make([]byte, 80)), true},
		{"no digit", "onlyletters", true},
		{"no letter", "1234567890", true},
		{"common", "Password123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.shouldFail {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Rangoli2024")
	require.NoError(t, err)
	assert.NotEqual(t, "Rangoli2024", hash)

	assert.NoError(t, ComparePassword(hash, "Rangoli2024"))
	assert.Error(t, ComparePassword(hash, "rangoli2024"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
