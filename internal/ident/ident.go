// Package ident generates identifiers for collections and messages.
//
// Message and website-collection ids are random UUIDs, so two creations in
// the same millisecond never collide. Document ids keep a readable prefix
// derived from the file name, followed by the creation instant and a random
// base36 suffix.
package ident

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// suffixLen is the length of the random base36 suffix on document ids.
const suffixLen = 9

// Generator produces identifiers and creation instants.
// Goroutine-safe. The zero value is not usable; call New.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand func() uint64
	uuid func() string
}

// New returns a Generator backed by the wall clock and math/rand/v2.
func New() *Generator {
	return &Generator{
		now:  time.Now,
		rand: rand.Uint64,
		uuid: uuid.NewString,
	}
}

// WithClock returns a copy of g that reads time from now.
// Used by tests to pin creation instants.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	return &Generator{now: now, rand: g.rand, uuid: g.uuid}
}

// Now returns the generator's current instant.
func (g *Generator) Now() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now()
}

// NewID returns a random 128-bit identifier in canonical UUID form.
func (g *Generator) NewID() string {
	return g.uuid()
}

// DocumentID builds an id of the form <sanitized name>_<epoch ms>_<base36>.
func (g *Generator) DocumentID(fileName string, at time.Time) string {
	g.mu.Lock()
	r := g.rand()
	g.mu.Unlock()

	var b strings.Builder
	b.WriteString(Sanitize(fileName))
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(at.UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(base36Suffix(r))
	return b.String()
}

// Sanitize replaces every character outside [A-Za-z0-9] with an underscore.
// Multi-byte runes become a single underscore.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// base36Suffix renders r as exactly suffixLen base36 digits.
func base36Suffix(r uint64) string {
	s := strconv.FormatUint(r, 36)
	if len(s) >= suffixLen {
		return s[len(s)-suffixLen:]
	}
	return strings.Repeat("0", suffixLen-len(s)) + s
}
