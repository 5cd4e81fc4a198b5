package store

import (
	"context"
	"time"
)

// Nop stands in when no persistence medium is available. Reads report the
// key as absent and writes are discarded.
type Nop struct{}

// Get implements the storage contract; nothing is ever found.
func (Nop) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// Set discards value.
func (Nop) Set(context.Context, string, string) error {
	return nil
}

// Delete is a no-op.
func (Nop) Delete(context.Context, string) error {
	return nil
}

// UpdatedAt reports that key has never been written.
func (Nop) UpdatedAt(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
