package column

import (
	"github.com/colbyte/colrle/errs"
	"github.com/colbyte/colrle/internal/hash"
)

// dictionary interns distinct string values for a StringColumnWriter,
// assigning each a dense zero-based code in first-seen order. Values are
// looked up by xxHash64 with an explicit bucket chain per hash so that two
// distinct values sharing a hash still get distinct codes; HasCollision
// reports whether that chaining ever triggered.
type dictionary struct {
	buckets  map[uint64][]int
	entries  []string
	collided bool
}

func newDictionary() *dictionary {
	return &dictionary{buckets: make(map[uint64][]int)}
}

// intern returns the dense code for value, assigning a new one if value has
// not been seen before. An empty value is rejected with
// errs.ErrEmptyDictionaryEntry; callers represent an absent row through the
// presence stream, not an empty dictionary entry.
func (d *dictionary) intern(value string) (int, error) {
	if value == "" {
		return 0, errs.ErrEmptyDictionaryEntry
	}

	h := hash.ID(value)
	bucket := d.buckets[h]

	for _, code := range bucket {
		if d.entries[code] == value {
			return code, nil
		}
	}

	if len(bucket) > 0 {
		d.collided = true
	}

	code := len(d.entries)
	d.buckets[h] = append(bucket, code)
	d.entries = append(d.entries, value)

	return code, nil
}

// HasCollision reports whether two distinct values hashed to the same
// xxHash64 value during interning. A colliding dictionary still encodes
// correctly (codes are assigned by first occurrence, not by hash), but
// callers may want to surface this for monitoring.
func (d *dictionary) HasCollision() bool {
	return d.collided
}

// Entries returns the interned values in code order: entries[i] is the
// value for code i.
func (d *dictionary) Entries() []string {
	return d.entries
}

// Len returns the number of distinct interned values.
func (d *dictionary) Len() int {
	return len(d.entries)
}

// Reset clears the dictionary, preserving its map capacity for reuse across
// row groups.
func (d *dictionary) Reset() {
	for h := range d.buckets {
		delete(d.buckets, h)
	}

	d.entries = d.entries[:0]
	d.collided = false
}
