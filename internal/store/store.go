package store

import "sort"

// KV is the narrow durable key-value persistence contract the pipeline
// depends on. No transactions; eventual persistence is acceptable.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// GetAll returns every key/value pair whose key starts with prefix.
	GetAll(prefix string) (map[string]string, error)
	Close() error
}

// SortedKeys is a small helper for deterministic iteration in callers
// and tests.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
