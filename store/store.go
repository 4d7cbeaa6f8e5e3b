// Package store provides the key/value persistence used by pagerscot plugins
package store

import (
	"github.com/pkg/errors"
	"io"
)

// ErrNotFound is returned by a StringStorer when no value exists for a key
var ErrNotFound = errors.New("not found")

// StringStorer is implemented by any value that has the GetString/PutString and io.Closer methods. Implementations
// must return ErrNotFound (or an error wrapping it) when a key has no value
type StringStorer interface {
	io.Closer

	// GetString returns the value associated with the key or ErrNotFound
	GetString(key string) (value string, err error)

	// PutString adds or replaces the value associated with the key
	PutString(key string, value string) (err error)
}
