// Package reference issues human-readable booking references of the form BK-XXXXXXXXXX.
package reference

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	Prefix             = "BK-"
	Length             = 10
	DefaultMaxAttempts = 5

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var Pattern = regexp.MustCompile(`^BK-[A-Z0-9]{10}$`)

var (
	// ErrTaken is returned by a claim func when the candidate already exists.
	ErrTaken = errors.New("booking reference already taken")
	// ErrExhausted means every attempt collided.
	ErrExhausted = errors.New("could not issue a unique booking reference")
)

// Source produces candidate references.
type Source func() (string, error)

// ClaimFunc persists a candidate. It returns ErrTaken (possibly wrapped) on collision.
type ClaimFunc func(ctx context.Context, ref string) error

type Generator struct {
	source      Source
	maxAttempts int
}

func New() *Generator {
	return &Generator{source: Random, maxAttempts: DefaultMaxAttempts}
}

func NewWithSource(source Source, maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{source: source, maxAttempts: maxAttempts}
}

// Random returns a fresh candidate drawn uniformly from the reference alphabet.
func Random() (string, error) {
	id, err := gonanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate booking reference: %w", err)
	}
	return Prefix + id, nil
}

// Issue generates candidates and hands them to claim until one is accepted.
// Uniqueness is decided by claim, normally a unique constraint in storage.
func (g *Generator) Issue(ctx context.Context, claim ClaimFunc) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		ref, err := g.source()
		if err != nil {
			return "", err
		}

		err = claim(ctx, ref)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, ErrTaken) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, g.maxAttempts)
}

func Valid(ref string) bool {
	return Pattern.MatchString(ref)
}
