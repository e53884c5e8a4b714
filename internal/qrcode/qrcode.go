// Package qrcode renders share codes for public agent profiles.
package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Generator renders PNG QR codes pointing at the web app.
type Generator struct {
	baseURL string
	size    int
	level   qrcode.RecoveryLevel
}

// NewGenerator builds a generator. level is one of L, M, Q or H; anything
// else falls back to M.
func NewGenerator(baseURL string, size int, level string) *Generator {
	var recovery qrcode.RecoveryLevel
	switch strings.ToUpper(level) {
	case "L":
		recovery = qrcode.Low
	case "Q":
		recovery = qrcode.High
	case "H":
		recovery = qrcode.Highest
	default:
		recovery = qrcode.Medium
	}

	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		size:    size,
		level:   recovery,
	}
}

// AgentProfileURL is the public page the agent's QR code opens.
func (g *Generator) AgentProfileURL(agentID string) string {
	return g.baseURL + "/agents/" + agentID
}

// AgentProfilePNG renders the QR code for an agent's public page.
func (g *Generator) AgentProfilePNG(agentID string) ([]byte, error) {
	code, err := qrcode.New(g.AgentProfileURL(agentID), g.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := code.PNG(g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return png, nil
}
