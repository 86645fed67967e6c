// Package storage persists encoded documents under string keys. Several
// backends implement the same Store interface; Open picks one from config.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Entry describes one stored document.
type Entry struct {
	Key       string
	Checksum  string
	UpdatedAt time.Time
}

// Store is a key-value capability for encoded documents.
type Store interface {
	// Get returns the bytes stored under key, or an error wrapping
	// apperr.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key wraps apperr.ErrNotFound.
	Delete(ctx context.Context, key string) error
	// List returns every stored key ordered by key.
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateKey rejects keys that cannot be used as a file name or object
// name by every backend.
func ValidateKey(key string) error {
	err := validation.Validate(key,
		validation.Required,
		validation.Length(1, 128),
		validation.Match(keyRe),
	)
	if err != nil {
		return fmt.Errorf("storage: invalid key %q: %w", key, err)
	}
	return nil
}
