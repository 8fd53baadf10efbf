package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the set of characters share codes are drawn from
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator produces short human-shareable pool codes
type Generator interface {
	Generate() (string, error)
}

type randomGenerator struct {
	length int
}

// NewGenerator returns a Generator of fixed-length uppercase alphanumeric codes
func NewGenerator(length int) Generator {
	return &randomGenerator{length: length}
}

func (g *randomGenerator) Generate() (string, error) {
	size := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to generate pool code: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}
