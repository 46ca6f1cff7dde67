package session

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// newULIDGenerator returns a generator of lower-case ULIDs. Ids only need
// to be opaque; the link, not the id, identifies a calendar.
func newULIDGenerator(now func() time.Time) func() string {
	var mu sync.Mutex
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return strings.ToLower(ulid.MustNew(ulid.Timestamp(now()), entropy).String())
	}
}
