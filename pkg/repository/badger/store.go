// Package badger implements a persistent repository.Client on BadgerDB.
//
// The tree survives restarts, which makes it suitable as a local mirror of a
// remote repository or as a standalone store for the CLI.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/marmos91/dittorepo/pkg/pathutil"
	"github.com/marmos91/dittorepo/pkg/repository"
)

// BadgerRepositoryConfig is decoded from the repository.badger config section.
type BadgerRepositoryConfig struct {
	// DBPath is the directory where BadgerDB stores its files
	DBPath string `mapstructure:"db_path"`

	// InMemory keeps the database in memory only (DBPath is ignored)
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`
}

// Repository is a BadgerDB-backed hierarchical repository.
//
// BadgerDB transactions provide the isolation; the struct holds no mutable
// state of its own and is safe for concurrent use.
type Repository struct {
	db     *badger.DB
	rootID string
}

// Open opens (or creates) the database described by config and makes sure the
// root folder exists.
func Open(ctx context.Context, config BadgerRepositoryConfig) (*Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(config.DBPath)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := config.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}

	// Descriptors are small, compression overhead is not worth it
	opts = opts.
		WithLoggingLevel(badger.WARNING).
		WithCompression(options.None).
		WithBlockCacheSize(blockCacheMB << 20).
		WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	repo := &Repository{db: db}
	if err := repo.ensureRoot(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize root folder: %w", err)
	}

	return repo, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) ensureRoot() error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getString(txn, keyPath(pathutil.Separator))
		if err == nil {
			r.rootID = id
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		root := &repository.File{
			ID:     uuid.NewString(),
			Path:   pathutil.Separator,
			Folder: true,
		}
		if err := putFile(txn, root); err != nil {
			return err
		}
		r.rootID = root.ID
		return nil
	})
}

// Root returns the root folder descriptor.
func (r *Repository) Root(ctx context.Context) (*repository.File, error) {
	return r.GetFileByPath(ctx, pathutil.Separator)
}

// AddFolder creates a folder called name inside the folder at parentPath.
func (r *Repository) AddFolder(ctx context.Context, parentPath, name string, hidden bool) (*repository.File, error) {
	return r.add(ctx, parentPath, name, true, hidden)
}

// AddFile creates a file called name inside the folder at parentPath.
func (r *Repository) AddFile(ctx context.Context, parentPath, name string, hidden bool) (*repository.File, error) {
	return r.add(ctx, parentPath, name, false, hidden)
}

func (r *Repository) add(ctx context.Context, parentPath, name string, folder, hidden bool) (*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !pathutil.ValidName(name) {
		return nil, &repository.StoreError{
			Code:    repository.ErrInvalidArgument,
			Message: "invalid name",
			Path:    name,
		}
	}

	var created *repository.File
	err := r.db.Update(func(txn *badger.Txn) error {
		parent, err := lookupPath(txn, parentPath)
		if err != nil {
			return err
		}
		if parent == nil {
			return &repository.StoreError{
				Code:    repository.ErrNotFound,
				Message: "parent folder not found",
				Path:    parentPath,
			}
		}
		if !parent.Folder {
			return &repository.StoreError{
				Code:    repository.ErrNotDirectory,
				Message: "parent is not a folder",
				Path:    parentPath,
			}
		}

		path := pathutil.Child(parentPath, name)
		if _, err := txn.Get(keyPath(path)); err == nil {
			return &repository.StoreError{
				Code:    repository.ErrAlreadyExists,
				Message: "entry already exists",
				Path:    path,
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		file := &repository.File{
			ID:     uuid.NewString(),
			Name:   name,
			Path:   path,
			Folder: folder,
			Hidden: hidden,
		}
		if err := putFile(txn, file); err != nil {
			return err
		}
		if err := txn.Set(keyChild(parent.ID, name), []byte(file.ID)); err != nil {
			return err
		}

		created = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetFileByPath implements repository.Client.
func (r *Repository) GetFileByPath(ctx context.Context, path string) (*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var file *repository.File
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		file, err = lookupPath(txn, path)
		return err
	})
	if err != nil {
		return nil, ioError("lookup failed", path, err)
	}
	return file, nil
}

// ListChildren implements repository.Client.
func (r *Repository) ListChildren(ctx context.Context, id string, filter repository.Filter) ([]*repository.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*repository.File
	err := r.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyFile(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return &repository.StoreError{
					Code:    repository.ErrNotFound,
					Message: "folder not found",
					Path:    id,
				}
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyChildPrefix(id)

		it := txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Rewind(); it.Valid(); it.Next() {
			// Check context periodically
			if count%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++

			childID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			child, err := getFile(txn, string(childID))
			if err != nil {
				return fmt.Errorf("child %s of %s: %w", childID, id, err)
			}
			if filter.Matches(child) {
				result = append(result, child)
			}
		}
		return nil
	})
	if err != nil {
		var storeErr *repository.StoreError
		if errors.As(err, &storeErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ioError("list children failed", id, err)
	}

	if result == nil {
		result = []*repository.File{}
	}
	return result, nil
}

func lookupPath(txn *badger.Txn, path string) (*repository.File, error) {
	id, err := getString(txn, keyPath(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return getFile(txn, id)
}

func getFile(txn *badger.Txn, id string) (*repository.File, error) {
	item, err := txn.Get(keyFile(id))
	if err != nil {
		return nil, err
	}

	var file repository.File
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &file)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode file %s: %w", id, err)
	}
	return &file, nil
}

func putFile(txn *badger.Txn, file *repository.File) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode file %s: %w", file.Path, err)
	}
	if err := txn.Set(keyFile(file.ID), data); err != nil {
		return err
	}
	return txn.Set(keyPath(file.Path), []byte(file.ID))
}

func getString(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func ioError(message, path string, err error) error {
	return fmt.Errorf("%w: %v", &repository.StoreError{
		Code:    repository.ErrIOError,
		Message: message,
		Path:    path,
	}, err)
}
