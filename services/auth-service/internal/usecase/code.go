package usecase

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const resetCodeSpace = 1_000_000

// CodeGenerator produces reset codes.
type CodeGenerator interface {
	Generate() (string, error)
}

type randomCodeGenerator struct{}

// NewCodeGenerator returns a generator of uniformly distributed 6-digit codes.
func NewCodeGenerator() CodeGenerator {
	return randomCodeGenerator{}
}

func (randomCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
