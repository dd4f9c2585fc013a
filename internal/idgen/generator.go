// Package idgen produces human-readable visitor ids of the form adjective-animal-number.
package idgen

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	// Separator joins the three id segments.
	Separator = "-"

	minNumber = 1
	maxNumber = 999
)

// Source is the randomness capability the Generator draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource uses the package-level math/rand/v2 functions, which are safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator builds visitor ids from two word dictionaries and a number in [1, 999].
// It holds no state besides its dictionaries and Source, so it is safe for
// concurrent use whenever the Source is.
type Generator struct {
	source     Source
	adjectives []string
	animals    []string
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSource swaps the randomness source, e.g. a seeded *rand.Rand in tests.
func WithSource(src Source) Option {
	return func(g *Generator) {
		g.source = src
	}
}

// WithDictionaries replaces the default word lists. Empty lists are ignored.
func WithDictionaries(adjectives, animals []string) Option {
	return func(g *Generator) {
		if len(adjectives) > 0 {
			g.adjectives = adjectives
		}
		if len(animals) > 0 {
			g.animals = animals
		}
	}
}

// New creates a Generator using the default dictionaries and the global random source.
func New(opts ...Option) *Generator {
	g := &Generator{
		source:     globalSource{},
		adjectives: Adjectives,
		animals:    Animals,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new id such as "brave-otter-42". Uniqueness is not guaranteed.
func (g *Generator) Generate() string {
	adjective := g.adjectives[g.source.IntN(len(g.adjectives))]
	animal := g.animals[g.source.IntN(len(g.animals))]
	number := minNumber + g.source.IntN(maxNumber-minNumber+1)

	return strings.ToLower(adjective) + Separator + strings.ToLower(animal) + Separator + strconv.Itoa(number)
}
