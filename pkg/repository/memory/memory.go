// Package memory implements an in-memory repository.Client.
//
// It backs tests and the CLI's fixture mode: a tree is built with AddFolder /
// AddFile (or loaded from a YAML fixture) and then served exactly like a remote
// repository would serve it.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/marmos91/dittorepo/pkg/pathutil"
	"github.com/marmos91/dittorepo/pkg/repository"
)

// MemoryRepositoryConfig is decoded from the repository.memory config section.
type MemoryRepositoryConfig struct {
	// Fixture is an optional YAML file describing the initial tree
	Fixture string `mapstructure:"fixture"`
}

// Repository is an in-memory hierarchical repository.
//
// Thread Safety:
// All operations are protected by a single read-write mutex, reads proceed in
// parallel.
type Repository struct {
	mu sync.RWMutex

	// files maps id to descriptor
	files map[string]*repository.File

	// paths maps full path to id
	paths map[string]string

	// children maps a folder id to its child ids in insertion order
	children map[string][]string

	rootID string
}

// New creates a repository containing only the root folder "/".
func New() *Repository {
	root := &repository.File{
		ID:     uuid.NewString(),
		Name:   "",
		Path:   pathutil.Separator,
		Folder: true,
	}

	return &Repository{
		files:    map[string]*repository.File{root.ID: root},
		paths:    map[string]string{root.Path: root.ID},
		children: make(map[string][]string),
		rootID:   root.ID,
	}
}

// Root returns the root folder descriptor.
func (r *Repository) Root() *repository.File {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyFile(r.files[r.rootID])
}

// AddFolder creates a folder called name inside the folder at parentPath.
func (r *Repository) AddFolder(parentPath, name string, hidden bool) (*repository.File, error) {
	return r.add(parentPath, name, true, hidden)
}

// AddFile creates a file called name inside the folder at parentPath.
func (r *Repository) AddFile(parentPath, name string, hidden bool) (*repository.File, error) {
	return r.add(parentPath, name, false, hidden)
}

func (r *Repository) add(parentPath, name string, folder, hidden bool) (*repository.File, error) {
	if !pathutil.ValidName(name) {
		return nil, &repository.StoreError{
			Code:    repository.ErrInvalidArgument,
			Message: "invalid name",
			Path:    name,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parentID, ok := r.paths[parentPath]
	if !ok {
		return nil, &repository.StoreError{
			Code:    repository.ErrNotFound,
			Message: "parent folder not found",
			Path:    parentPath,
		}
	}
	if !r.files[parentID].Folder {
		return nil, &repository.StoreError{
			Code:    repository.ErrNotDirectory,
			Message: "parent is not a folder",
			Path:    parentPath,
		}
	}

	path := pathutil.Child(parentPath, name)
	if _, exists := r.paths[path]; exists {
		return nil, &repository.StoreError{
			Code:    repository.ErrAlreadyExists,
			Message: "entry already exists",
			Path:    path,
		}
	}

	file := &repository.File{
		ID:     uuid.NewString(),
		Name:   name,
		Path:   path,
		Folder: folder,
		Hidden: hidden,
	}

	r.files[file.ID] = file
	r.paths[path] = file.ID
	r.children[parentID] = append(r.children[parentID], file.ID)

	return copyFile(file), nil
}

// Remove deletes the entry at path and everything below it.
func (r *Repository) Remove(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.paths[path]
	if !ok {
		return &repository.StoreError{
			Code:    repository.ErrNotFound,
			Message: "entry not found",
			Path:    path,
		}
	}
	if id == r.rootID {
		return &repository.StoreError{
			Code:    repository.ErrInvalidArgument,
			Message: "cannot remove root",
			Path:    path,
		}
	}

	if parentID, ok := r.paths[pathutil.Dir(path)]; ok {
		siblings := r.children[parentID]
		for i, childID := range siblings {
			if childID == id {
				r.children[parentID] = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
	}

	r.removeSubtree(id)
	return nil
}

// removeSubtree must be called with r.mu held.
func (r *Repository) removeSubtree(id string) {
	for _, childID := range r.children[id] {
		r.removeSubtree(childID)
	}
	delete(r.paths, r.files[id].Path)
	delete(r.files, id)
	delete(r.children, id)
}

// GetFileByPath implements repository.Client.
func (r *Repository) GetFileByPath(ctx context.Context, path string) (*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.paths[path]
	if !ok {
		return nil, nil
	}
	return copyFile(r.files[id]), nil
}

// ListChildren implements repository.Client.
func (r *Repository) ListChildren(ctx context.Context, id string, filter repository.Filter) ([]*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.files[id]; !ok {
		return nil, &repository.StoreError{
			Code:    repository.ErrNotFound,
			Message: "folder not found",
			Path:    id,
		}
	}

	result := make([]*repository.File, 0, len(r.children[id]))
	for _, childID := range r.children[id] {
		child := r.files[childID]
		if filter.Matches(child) {
			result = append(result, copyFile(child))
		}
	}
	return result, nil
}

func copyFile(f *repository.File) *repository.File {
	c := *f
	return &c
}
