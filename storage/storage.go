// Package storage provides the key-value persistence that backs the lookup
// history and the user settings. Every backend guarantees that a single
// Get, Set or Remove is atomic for its key.
package storage

type (
	// KeyValue is a string keyed blob store in the spirit of browser local storage
	KeyValue interface {
		// Get returns the value stored at key and whether the key exists
		Get(key string) ([]byte, bool, error)

		// Set replaces the value stored at key
		Set(key string, value []byte) error

		// Remove deletes key. Removing a missing key is not an error.
		Remove(key string) error

		// Keys lists every stored key. The order is backend specific.
		Keys() ([]string, error)
	}
)

// copyBytes guards stored values against callers mutating returned slices
func copyBytes(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
