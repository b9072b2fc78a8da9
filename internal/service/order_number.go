package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

// OrderNumberGenerator produces human-facing order numbers. Numbers are not
// guaranteed unique; the database constraint decides and callers retry.
type OrderNumberGenerator interface {
	Next() (string, error)
}

const orderNumberSpace = 1_000_000

type randomOrderNumbers struct {
	prefix string
	now    func() time.Time
	random io.Reader
}

// NewOrderNumberGenerator returns a generator of numbers shaped
// <prefix>-<year>-<6 digits>, e.g. ORD-2026-004217.
func NewOrderNumberGenerator(prefix string) OrderNumberGenerator {
	return &randomOrderNumbers{
		prefix: prefix,
		now:    time.Now,
		random: rand.Reader,
	}
}

func (g *randomOrderNumbers) Next() (string, error) {
	n, err := rand.Int(g.random, big.NewInt(orderNumberSpace))
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%06d", g.prefix, g.now().Year(), n.Int64()), nil
}
