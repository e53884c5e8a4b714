package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator_RecoveryLevels(t *testing.T) {
	assert.Equal(t, qrcode.Low, NewGenerator("", 64, "l").level)
	assert.Equal(t, qrcode.Medium, NewGenerator("", 64, "M").level)
	assert.Equal(t, qrcode.High, NewGenerator("", 64, "Q").level)
	assert.Equal(t, qrcode.Highest, NewGenerator("", 64, "H").level)
	assert.Equal(t, qrcode.Medium, NewGenerator("", 64, "bogus").level)
}

func TestAgentProfileURL(t *testing.T) {
	g := NewGenerator("https://app.example.com/", 128, "M")
	assert.Equal(t, "https://app.example.com/agents/abc", g.AgentProfileURL("abc"))
}

func TestAgentProfilePNG(t *testing.T) {
	g := NewGenerator("https://app.example.com", 128, "M")

	data, err := g.AgentProfilePNG("3f1c7a2e-0000-4000-8000-000000000001")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}
