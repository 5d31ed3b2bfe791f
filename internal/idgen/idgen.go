// Package idgen provides document ID strategies for the document store.
package idgen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDLength is the length of generated random IDs.
const IDLength = 16

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Random generates 16-character alphanumeric IDs from random UUID bytes.
type Random struct{}

// NewRandom returns a Random generator.
func NewRandom() Random { return Random{} }

// NewID draws IDLength characters from [0-9A-Za-z]. The UUID version and
// variant bytes are skipped, and bytes above the largest multiple of the
// alphabet size are rejected so every character is equally likely.
func (Random) NewID() string {
	limit := byte(256 / len(alphabet) * len(alphabet))
	var b strings.Builder
	b.Grow(IDLength)
	for b.Len() < IDLength {
		u := uuid.New()
		for i, c := range u {
			if i == 6 || i == 8 || c >= limit {
				continue
			}
			b.WriteByte(alphabet[int(c)%len(alphabet)])
			if b.Len() == IDLength {
				break
			}
		}
	}
	return b.String()
}

// Sequence generates predictable IDs (prefix + zero-padded counter), which
// keeps tests deterministic.
type Sequence struct {
	prefix string
	next   int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, next: 1}
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	n := strconv.Itoa(s.next)
	s.next++
	if pad := IDLength - len(s.prefix) - len(n); pad > 0 {
		n = strings.Repeat("0", pad) + n
	}
	return s.prefix + n
}
