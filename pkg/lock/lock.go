// Package lock defines the lock provider consulted when the directory cache
// builds file entries.
//
// A lock tells browsing clients whether, and by whom, a file is currently
// checked out. The cache takes a point-in-time snapshot at population; locks
// are never refreshed behind the caller's back.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittorepo/pkg/repository"
)

// Lock is an opaque lock record attached to a file entry.
type Lock struct {
	// Owner is the user holding the lock
	Owner string `json:"owner"`

	// Message is the free-form reason given when locking
	Message string `json:"message,omitempty"`

	// Date is when the lock was taken
	Date time.Time `json:"date"`

	// Path is the repository path of the locked file
	Path string `json:"path"`
}

func (l *Lock) String() string {
	if l.Message == "" {
		return fmt.Sprintf("locked by %s at %s", l.Owner, l.Date.Format(time.RFC3339))
	}
	return fmt.Sprintf("locked by %s at %s: %s", l.Owner, l.Date.Format(time.RFC3339), l.Message)
}

// Provider returns the current lock of a file.
//
// GetLock returns (nil, nil) for an unlocked file. Errors are recoverable from
// the cache's point of view: the affected file is left out of the listing.
// Implementations must be safe for concurrent use.
type Provider interface {
	GetLock(ctx context.Context, file *repository.File) (*Lock, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, file *repository.File) (*Lock, error)

// GetLock calls f(ctx, file).
func (f ProviderFunc) GetLock(ctx context.Context, file *repository.File) (*Lock, error) {
	return f(ctx, file)
}

// None returns a provider that reports every file as unlocked.
func None() Provider {
	return ProviderFunc(func(ctx context.Context, _ *repository.File) (*Lock, error) {
		return nil, ctx.Err()
	})
}
