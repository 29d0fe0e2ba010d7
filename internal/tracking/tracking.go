// Package tracking mints human-readable parcel tracking identifiers.
//
// An identifier is the carrier prefix followed by the base-36 millisecond
// timestamp and a short random base-36 suffix, all upper-case, for example
// FRAMGS3K1Z4QX7T2. Uniqueness is not checked here: callers insert under a
// storage unique constraint and regenerate on conflict.
package tracking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/colisso/internal/common"
)

// DefaultPrefix is the carrier prefix used when none is configured.
const DefaultPrefix = "FRA"

// randomLength is the number of random base-36 characters appended.
const randomLength = 6

// Generator produces tracking identifiers. The zero value is not usable;
// construct with NewGenerator.
type Generator struct {
	prefix  string
	pattern *regexp.Regexp
	now     func() time.Time
	random  func(n int) (string, error)
}

// NewGenerator returns a Generator for prefix. An empty prefix selects
// DefaultPrefix.
func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = strings.ToUpper(prefix)
	return &Generator{
		prefix:  prefix,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `[0-9A-Z]+$`),
		now:     time.Now,
		random:  common.RandomBase36,
	}
}

// Prefix returns the carrier prefix in use.
func (g *Generator) Prefix() string { return g.prefix }

// Generate returns a fresh identifier.
func (g *Generator) Generate() (string, error) {
	suffix, err := g.random(randomLength)
	if err != nil {
		return "", fmt.Errorf("tracking id entropy: %w", err)
	}
	stamp := strconv.FormatInt(g.now().UnixMilli(), 36)
	return g.prefix + strings.ToUpper(stamp+suffix), nil
}

// Valid reports whether id has the shape produced by a Generator with the
// given prefix.
func (g *Generator) Valid(id string) bool {
	return g.pattern.MatchString(id)
}
