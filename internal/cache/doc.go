// Package cache provides a size-bounded LRU cache.
//
// Entries are weighed by a caller-supplied size function and the least
// recently used entries are evicted once the capacity in bytes is reached.
// Values are shared with callers and must be treated as immutable.
package cache
