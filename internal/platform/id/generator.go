package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// publicIDBytes yields 24 hex characters, enough entropy for job public ids
// without turning log lines unreadable.
const publicIDBytes = 12

// Generator creates opaque IDs handed out as external job references.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, publicIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
