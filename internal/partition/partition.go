// Package partition groups reference records into a fixed number of
// round-robin buckets and keeps an id index for constant-time matching.
//
// Bucketing follows insertion order: the n-th record added (0-based) lands in
// bucket (n mod K)+1, keyed by the collection prefix ("C1", "P3", ...). The
// buckets are purely organisational; lookups go through the index, which
// remembers the first record added for each id.
package partition

import (
	"fmt"
	"strconv"
)

// DefaultCount is the number of buckets used when none is configured.
const DefaultCount = 3

// Collection is a read-mostly set of reference records of one kind. It is not
// safe for concurrent mutation; build it fully before sharing it.
type Collection[T any] struct {
	prefix     string
	keys       []string
	buckets    map[string][]T
	index      map[string]T
	size       int
	duplicates int
}

// New returns an empty collection with count buckets named prefix1..prefixN.
// A non-positive count falls back to DefaultCount.
func New[T any](prefix string, count int) *Collection[T] {
	if count <= 0 {
		count = DefaultCount
	}
	keys := make([]string, count)
	buckets := make(map[string][]T, count)
	for i := range keys {
		keys[i] = prefix + strconv.Itoa(i+1)
		buckets[keys[i]] = nil
	}
	return &Collection[T]{
		prefix:  prefix,
		keys:    keys,
		buckets: buckets,
		index:   make(map[string]T),
	}
}

// Add appends rec to the next bucket in rotation and indexes it under id.
// It reports false when id was already present; the earlier record keeps
// the index entry.
func (c *Collection[T]) Add(id string, rec T) bool {
	key := c.keys[c.size%len(c.keys)]
	c.buckets[key] = append(c.buckets[key], rec)
	c.size++

	if _, seen := c.index[id]; seen {
		c.duplicates++
		return false
	}
	c.index[id] = rec
	return true
}

// Lookup returns the first record added under id.
func (c *Collection[T]) Lookup(id string) (T, bool) {
	rec, ok := c.index[id]
	return rec, ok
}

// Bucket returns the records of one bucket in insertion order.
func (c *Collection[T]) Bucket(key string) []T { return c.buckets[key] }

// Keys returns the bucket keys in order.
func (c *Collection[T]) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len is the number of records added, duplicates included.
func (c *Collection[T]) Len() int { return c.size }

// Duplicates is the number of Add calls that hit an existing id.
func (c *Collection[T]) Duplicates() int { return c.duplicates }

func (c *Collection[T]) String() string {
	s := fmt.Sprintf("%s*: records=%d", c.prefix, c.size)
	for _, k := range c.keys {
		s += fmt.Sprintf(" %s=%d", k, len(c.buckets[k]))
	}
	return s
}
