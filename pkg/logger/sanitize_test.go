package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "p****@e******.com", MaskEmail("priya@example.com"))
	assert.Equal(t, "a@e*********.in", MaskEmail("a@example.co.in"))
	assert.Equal(t, "[invalid-email]", MaskEmail("no-at-sign"))
	assert.Equal(t, "[invalid-email]", MaskEmail("@example.com"))
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"nothing sensitive", "page=2&specialization=Hindu", "page=2&specialization=Hindu"},
		{"token redacted", "token=abc&page=1", "page=1&token=%5BREDACTED%5D"},
		{"case insensitive key", "Email=a%40b.com", "Email=%5BREDACTED%5D"},
		{"malformed", "a=%zz", "[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeQueryString(tt.in))
		})
	}
}
