// Package idgen produces short, URL-safe notebook identifiers.
package idgen

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShortLength is the number of hex characters kept from a random UUID.
// Records expire within a day, so 32 bits of entropy is enough.
const ShortLength = 8

// New returns the first ShortLength hex characters of a random v4 UUID.
func New() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:ShortLength]
}

// FromSeed derives an id from a timestamp and a hash of seed, for callers
// whose only entropy is the request content (a diagram or notebook body).
func FromSeed(prefix, seed string, now time.Time) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("%s_%d_%d", prefix, now.UnixMilli(), h.Sum32()%10000)
}
