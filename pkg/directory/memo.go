package directory

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// memo is one lazily populated listing of a directory.
//
// State Machine:
//
//	UNPOPULATED --(successful fetch)--> POPULATED --(invalidate)--> UNPOPULATED
//
// Concurrent callers of an unpopulated memo share a single in-flight fetch,
// keyed by the memo generation. Invalidate and the setters bump the generation,
// so a fetch that started before them finishes for its own waiters but never
// overwrites what was stored after it started.
type memo[T any] struct {
	mu         sync.Mutex
	populated  bool
	values     []T
	generation uint64

	group singleflight.Group
}

// abandonedError marks a fetch that failed because the context of the caller
// that started it ended. Other waiters retry instead of inheriting it.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// get returns the memoized values, populating them with fetch when needed.
// hit is true when no fetch was waited on.
func (m *memo[T]) get(ctx context.Context, fetch func(context.Context) ([]T, error)) (values []T, hit bool, err error) {
	for {
		m.mu.Lock()
		if m.populated {
			values = slices.Clone(m.values)
			m.mu.Unlock()
			return values, true, nil
		}
		gen := m.generation
		m.mu.Unlock()

		ch := m.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
			m.mu.Lock()
			if m.populated && m.generation == gen {
				v := m.values
				m.mu.Unlock()
				return v, nil
			}
			m.mu.Unlock()

			v, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &abandonedError{err: err}
				}
				return nil, err
			}

			m.mu.Lock()
			if m.generation == gen {
				m.values = v
				m.populated = true
			}
			m.mu.Unlock()
			return v, nil
		})

		select {
		case res := <-ch:
			if res.Err != nil {
				var abandoned *abandonedError
				if errors.As(res.Err, &abandoned) {
					if ctx.Err() == nil {
						continue
					}
					return nil, false, abandoned.err
				}
				return nil, false, res.Err
			}
			return slices.Clone(res.Val.([]T)), false, nil

		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// set replaces the values and marks the memo populated.
func (m *memo[T]) set(values []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = slices.Clone(values)
	m.populated = true
	m.generation++
}

// replace is set for an already populated memo. It reports false, and changes
// nothing, when the memo is unpopulated.
func (m *memo[T]) replace(values []T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.populated {
		return false
	}
	m.values = slices.Clone(values)
	m.generation++
	return true
}

// reset drops the values. The next get fetches again.
func (m *memo[T]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = nil
	m.populated = false
	m.generation++
}

func (m *memo[T]) isPopulated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.populated
}
