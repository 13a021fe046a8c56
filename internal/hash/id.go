package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of data. column/dictionary.go uses it as the
// bucket key for interning string column values.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
