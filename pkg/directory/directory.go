// Package directory implements the lazy, thread-safe directory cache that
// fronts a remote hierarchical repository.
//
// A LazyDirectory wraps one remote folder. Its subdirectory and file-entry
// listings are fetched on first access, exactly once even under concurrent
// callers, and memoized until Invalidate. Child directories discovered by a
// listing are linked to their parent and populate themselves independently.
//
// Freshness:
//   - Subdirectories and FileEntries are memoized and may be stale until
//     Invalidate is called
//   - SubdirectoryCount, SubdirectoryAt and DirectoryIDs always ask the
//     repository
//   - FindDirectory and FindChild always perform fresh point lookups
//
// Thread Safety:
// All methods are safe for concurrent use. Identity and navigation (ID, Name,
// Path, Parent, FindRoot) are immutable after construction and take no locks.
// The two listings each have their own mutual exclusion, scoped to the node.
package directory

import (
	"context"
	"fmt"

	"github.com/marmos91/dittorepo/pkg/lock"
	"github.com/marmos91/dittorepo/pkg/metrics"
	"github.com/marmos91/dittorepo/pkg/pathutil"
	"github.com/marmos91/dittorepo/pkg/repository"
)

// DefaultLockLookupConcurrency is how many lock lookups a file listing runs
// in parallel unless configured otherwise.
const DefaultLockLookupConcurrency = 8

// Directory is the read-only view of a directory shared by browsing clients.
type Directory interface {
	ID() string
	Name() string
	Path() string
	IsRoot() bool
	IsVisible() bool
	PathSegments() []string
}

var _ Directory = (*LazyDirectory)(nil)

// tree holds the collaborators shared by every node reachable from one root.
type tree struct {
	client            repository.Client
	locks             lock.Provider
	metrics           metrics.DirectoryMetrics
	lookupConcurrency int
}

// Option configures a tree created by New or Open.
type Option func(*tree)

// WithMetrics records cache activity on m.
func WithMetrics(m metrics.DirectoryMetrics) Option {
	return func(t *tree) {
		if m != nil {
			t.metrics = m
		}
	}
}

// WithLockLookupConcurrency bounds the number of concurrent lock lookups per
// file listing. Values below 1 are ignored.
func WithLockLookupConcurrency(n int) Option {
	return func(t *tree) {
		if n > 0 {
			t.lookupConcurrency = n
		}
	}
}

// LazyDirectory is a cached remote folder.
type LazyDirectory struct {
	id     string
	name   string
	path   string
	hidden bool

	// parent is nil for the root. Children never own their parent.
	parent *LazyDirectory
	tree   *tree

	subdirs memo[*LazyDirectory]
	entries memo[*FileEntry]
}

// New creates the root of a directory tree wrapping the folder descriptor
// root. A nil locks reports every file as unlocked.
func New(root *repository.File, client repository.Client, locks lock.Provider, opts ...Option) (*LazyDirectory, error) {
	if client == nil {
		return nil, fmt.Errorf("repository client is required")
	}
	if root == nil {
		return nil, fmt.Errorf("root descriptor is required")
	}
	if !root.Folder {
		return nil, &repository.StoreError{
			Code:    repository.ErrNotDirectory,
			Message: "root is not a folder",
			Path:    root.Path,
		}
	}
	if locks == nil {
		locks = lock.None()
	}

	t := &tree{
		client:            client,
		locks:             locks,
		metrics:           metrics.NewNoopDirectoryMetrics(),
		lookupConcurrency: DefaultLockLookupConcurrency,
	}
	for _, opt := range opts {
		opt(t)
	}

	return &LazyDirectory{
		id:     root.ID,
		name:   root.Name,
		path:   root.Path,
		hidden: root.Hidden,
		tree:   t,
	}, nil
}

// Open looks up the folder at path and makes it the root of a new tree.
func Open(ctx context.Context, path string, client repository.Client, locks lock.Provider, opts ...Option) (*LazyDirectory, error) {
	if client == nil {
		return nil, fmt.Errorf("repository client is required")
	}

	file, err := client.GetFileByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", path, err)
	}
	if file == nil {
		return nil, &repository.StoreError{
			Code:    repository.ErrNotFound,
			Message: "folder not found",
			Path:    path,
		}
	}
	return New(file, client, locks, opts...)
}

// NewSubdirectory builds a child of d from a folder descriptor. The child's
// path is derived from d's path and the descriptor name.
func (d *LazyDirectory) NewSubdirectory(file *repository.File) *LazyDirectory {
	name := file.Name
	if name == "" {
		name = pathutil.Base(file.Path)
	}
	return d.child(file, name)
}

func (d *LazyDirectory) child(file *repository.File, name string) *LazyDirectory {
	return &LazyDirectory{
		id:     file.ID,
		name:   name,
		path:   pathutil.Child(d.path, name),
		hidden: file.Hidden,
		parent: d,
		tree:   d.tree,
	}
}

// NewFileEntry builds an entry of d from a file descriptor and its lock.
func (d *LazyDirectory) NewFileEntry(file *repository.File, l *lock.Lock) *FileEntry {
	name := file.Name
	if name == "" {
		name = pathutil.Base(file.Path)
	}
	return &FileEntry{
		ID:                    file.ID,
		Name:                  name,
		Path:                  pathutil.Child(d.path, name),
		Type:                  ObjectTypeOf(name),
		Lock:                  l,
		VersioningEnabled:     true,
		VersionCommentEnabled: true,
		directory:             d,
	}
}

func (d *LazyDirectory) ID() string   { return d.id }
func (d *LazyDirectory) Name() string { return d.name }
func (d *LazyDirectory) Path() string { return d.path }

// IsVisible reports whether the folder is not hidden.
func (d *LazyDirectory) IsVisible() bool { return !d.hidden }

// Parent returns the parent directory, nil for the root.
func (d *LazyDirectory) Parent() *LazyDirectory { return d.parent }

// IsRoot reports whether d has no parent.
func (d *LazyDirectory) IsRoot() bool { return d.parent == nil }

// FindRoot walks the parent chain up to the root.
func (d *LazyDirectory) FindRoot() *LazyDirectory {
	node := d
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// PathSegments splits the path of d. Empty segments are kept: the root "/"
// yields ["", ""] and "/a" yields ["", "a"].
func (d *LazyDirectory) PathSegments() []string {
	return pathutil.Split(d.path)
}

// PathObjectCombination returns the path an object called name would have
// inside d.
func (d *LazyDirectory) PathObjectCombination(name string) string {
	return pathutil.Child(d.path, name)
}

func (d *LazyDirectory) String() string {
	return d.path
}
