// Package id mints run identifiers. A RunID is a ULID: it sorts by the time
// the run started and renders as 26 Crockford base32 characters.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type RunID ulid.ULID

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns the ID of a run started at the given time. IDs minted within
// the same millisecond still increase.
func New(started time.Time) RunID {
	mu.Lock()
	defer mu.Unlock()
	return RunID(ulid.MustNew(ulid.Timestamp(started), entropy))
}

// Parse reads a RunID from its string form.
func Parse(s string) (RunID, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return RunID{}, err
	}
	return RunID(u), nil
}

func (r RunID) String() string { return ulid.ULID(r).String() }

// Started is the millisecond the run was minted for.
func (r RunID) Started() time.Time { return ulid.Time(ulid.ULID(r).Time()) }

func (r RunID) IsZero() bool { return ulid.ULID(r).IsZero() }
