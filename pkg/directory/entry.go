package directory

import (
	"path"
	"strings"

	"github.com/marmos91/dittorepo/pkg/lock"
)

// ObjectType classifies a file entry by its extension.
type ObjectType int

const (
	// ObjectUnknown is any file that is neither a transformation nor a job
	ObjectUnknown ObjectType = iota

	// ObjectTransformation is a ".ktr" file
	ObjectTransformation

	// ObjectJob is a ".kjb" file
	ObjectJob
)

// ObjectTypeOf derives the object type from a file name. The extension match
// is case-insensitive.
func ObjectTypeOf(name string) ObjectType {
	switch strings.ToLower(path.Ext(name)) {
	case ".ktr":
		return ObjectTransformation
	case ".kjb":
		return ObjectJob
	default:
		return ObjectUnknown
	}
}

func (t ObjectType) String() string {
	switch t {
	case ObjectTransformation:
		return "transformation"
	case ObjectJob:
		return "job"
	default:
		return "unknown"
	}
}

// Extension returns the canonical extension of t, or "" for ObjectUnknown.
func (t ObjectType) Extension() string {
	switch t {
	case ObjectTransformation:
		return ".ktr"
	case ObjectJob:
		return ".kjb"
	default:
		return ""
	}
}

// FileEntry is a non-folder child of a directory, annotated with the lock it
// had when the listing was taken.
type FileEntry struct {
	ID   string
	Name string
	Path string
	Type ObjectType

	// Lock is nil for unlocked files
	Lock *lock.Lock

	VersioningEnabled     bool
	VersionCommentEnabled bool

	// directory is the containing directory (navigation only)
	directory *LazyDirectory
}

// Directory returns the directory whose listing contains the entry.
func (e *FileEntry) Directory() *LazyDirectory {
	return e.directory
}

// IsLocked reports whether the entry carried a lock at listing time.
func (e *FileEntry) IsLocked() bool {
	return e.Lock != nil
}
