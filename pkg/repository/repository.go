// Package repository defines the boundary to the remote hierarchical content
// repository fronted by the directory cache.
//
// The repository is reachable only through coarse-grained round trips: a point
// lookup by path and a listing of the children of a node, filtered to folders
// or files. Implementations live in sub-packages (memory, badger, s3); the
// decorators in this package add rate limiting and metrics at the boundary.
package repository

import "context"

// File is a raw remote file descriptor.
type File struct {
	// ID is the remote-assigned, opaque object identifier
	ID string `json:"id" yaml:"id"`

	// Name is the last path segment
	Name string `json:"name" yaml:"name"`

	// Path is the full repository path
	Path string `json:"path" yaml:"path"`

	// Folder is true for folders
	Folder bool `json:"folder" yaml:"folder"`

	// Hidden marks entries that browsing clients should not display
	Hidden bool `json:"hidden" yaml:"hidden"`
}

// Filter selects which kind of children ListChildren returns.
type Filter int

const (
	// FilterFolders returns folder children only
	FilterFolders Filter = iota

	// FilterFiles returns non-folder children only
	FilterFiles
)

func (f Filter) String() string {
	switch f {
	case FilterFolders:
		return "folders"
	case FilterFiles:
		return "files"
	default:
		return "unknown"
	}
}

// Matches reports whether file passes the filter.
func (f Filter) Matches(file *File) bool {
	if f == FilterFolders {
		return file.Folder
	}
	return !file.Folder
}

// Client is the remote repository as seen by the directory cache.
//
// Implementations must be safe for concurrent use. Timeouts, cancellation and
// retries are the client's responsibility; the cache calls each method at most
// once per population cycle and never retries.
type Client interface {
	// GetFileByPath looks up a single file or folder.
	//
	// Returns (nil, nil) when nothing exists at path.
	GetFileByPath(ctx context.Context, path string) (*File, error)

	// ListChildren lists the direct children of the folder identified by id,
	// in repository order. Callers must not rely on the filter being honored
	// exactly by every remote and should re-check Folder.
	ListChildren(ctx context.Context, id string, filter Filter) ([]*File, error)
}
