package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// OrderNumberGenerator produces human-legible order numbers of the form
// ORD-20260901154512-7F3A9C21: a UTC timestamp component plus a random
// suffix. No counter is coordinated anywhere; collision odds are low enough
// for support lookup, and the orders table carries a unique constraint as a
// backstop.
type OrderNumberGenerator struct {
	prefix string
	now    func() time.Time
}

func NewOrderNumberGenerator(prefix string) *OrderNumberGenerator {
	if prefix == "" {
		prefix = "ORD"
	}
	return &OrderNumberGenerator{
		prefix: prefix,
		now:    time.Now,
	}
}

func (g *OrderNumberGenerator) Next() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s",
		g.prefix,
		g.now().UTC().Format("20060102150405"),
		strings.ToUpper(hex.EncodeToString(suffix)),
	), nil
}
