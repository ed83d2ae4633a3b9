// Package memory implements an in-process lock.Provider.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittorepo/pkg/lock"
	"github.com/marmos91/dittorepo/pkg/repository"
)

// Provider keeps locks in memory, keyed by file id.
//
// Besides serving lookups it can be told to fail for specific paths, which is
// how tests exercise degraded listings.
type Provider struct {
	mu       sync.RWMutex
	locks    map[string]*lock.Lock
	failures map[string]error
	now      func() time.Time

	calls atomic.Int64
}

// New creates an empty provider.
func New() *Provider {
	return &Provider{
		locks:    make(map[string]*lock.Lock),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// Lock locks file on behalf of owner. Locking a file already locked by a
// different owner fails with ErrAlreadyExists; the same owner re-locking
// replaces the message and date.
func (p *Provider) Lock(file *repository.File, owner, message string) (*lock.Lock, error) {
	if file == nil || owner == "" {
		return nil, &repository.StoreError{
			Code:    repository.ErrInvalidArgument,
			Message: "file and owner are required",
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.locks[file.ID]; ok && existing.Owner != owner {
		return nil, &repository.StoreError{
			Code:    repository.ErrAlreadyExists,
			Message: "file is locked by " + existing.Owner,
			Path:    file.Path,
		}
	}

	l := &lock.Lock{
		Owner:   owner,
		Message: message,
		Date:    p.now(),
		Path:    file.Path,
	}
	p.locks[file.ID] = l

	c := *l
	return &c, nil
}

// Unlock removes the lock on file.
func (p *Provider) Unlock(file *repository.File) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.locks[file.ID]; !ok {
		return &repository.StoreError{
			Code:    repository.ErrNotFound,
			Message: "file is not locked",
			Path:    file.Path,
		}
	}
	delete(p.locks, file.ID)
	return nil
}

// FailFor makes every lookup of the file at path return err.
func (p *Provider) FailFor(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[path] = err
}

// ClearFailures removes all injected failures.
func (p *Provider) ClearFailures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = make(map[string]error)
}

// Calls returns the number of GetLock calls served so far.
func (p *Provider) Calls() int64 {
	return p.calls.Load()
}

// GetLock implements lock.Provider.
func (p *Provider) GetLock(ctx context.Context, file *repository.File) (*lock.Lock, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err, ok := p.failures[file.Path]; ok {
		return nil, err
	}

	l, ok := p.locks[file.ID]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}
