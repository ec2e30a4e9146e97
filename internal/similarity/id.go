package similarity

import (
	"hash/fnv"
	"strconv"
)

// ID derives a stable compact identifier from a seed string. Same seed, same
// ID, across runs and processes; there is no randomness or clock input.
func ID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return strconv.FormatUint(h.Sum64(), 36)
}
