package sonar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// keyHashLen is the number of hash characters kept in a cache key.
const keyHashLen = 30

// ComputeKey derives the cache key for a theme and an ordered identifier
// list. The key is a function of the set and order of identifiers, never of
// fragment content: editing a referenced file leaves the key unchanged, and
// staleness is detected by modification time instead.
func ComputeKey(theme string, names []string) string {
	sum := sha256.Sum256([]byte(strings.Join(names, "")))
	digest := hex.EncodeToString(sum[:])
	return "sonar-" + theme + "-" + digest[:keyHashLen]
}

// contentDigest returns a fast digest of compiled output. It is recorded
// with the cache record for operator inspection, not consulted by the
// staleness policy.
func contentDigest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
