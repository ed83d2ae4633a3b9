package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittorepo/internal/logger"
	"github.com/marmos91/dittorepo/pkg/metrics"
	"github.com/marmos91/dittorepo/pkg/repository"
	"golang.org/x/sync/errgroup"
)

// Subdirectories returns the memoized child folders of d in repository order.
//
// The first call fetches them; concurrent first callers share that single
// fetch. Later calls return the same nodes without a round trip until
// Invalidate. A failed fetch is returned and leaves the listing unpopulated.
func (d *LazyDirectory) Subdirectories(ctx context.Context) ([]*LazyDirectory, error) {
	dirs, hit, err := d.subdirs.get(ctx, d.fetchSubdirectories)
	d.recordAccess(metrics.CacheSubdirectories, hit)
	return dirs, err
}

// FileEntries returns the memoized non-folder children of d, each annotated
// with its lock, in repository order.
//
// A file whose lock lookup fails is left out of the listing and logged. Only
// the end of ctx aborts the listing as a whole.
func (d *LazyDirectory) FileEntries(ctx context.Context) ([]*FileEntry, error) {
	entries, hit, err := d.entries.get(ctx, d.fetchFileEntries)
	d.recordAccess(metrics.CacheFileEntries, hit)
	return entries, err
}

// SubdirectoryCount asks the repository how many child folders d has now.
func (d *LazyDirectory) SubdirectoryCount(ctx context.Context) (int, error) {
	folders, err := d.folderChildren(ctx)
	if err != nil {
		return 0, err
	}
	return len(folders), nil
}

// SubdirectoryAt returns the index-th child folder from a fresh listing, or
// nil when index is outside [0, count). The node is linked to d but not added
// to the memoized listing.
func (d *LazyDirectory) SubdirectoryAt(ctx context.Context, index int) (*LazyDirectory, error) {
	folders, err := d.folderChildren(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(folders) {
		return nil, nil
	}
	return d.NewSubdirectory(folders[index]), nil
}

// DirectoryIDs returns the ids of the child folders from a fresh listing.
func (d *LazyDirectory) DirectoryIDs(ctx context.Context) ([]string, error) {
	folders, err := d.folderChildren(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

// Invalidate drops both memoized listings of d. Descendants keep their own
// listings.
func (d *LazyDirectory) Invalidate() {
	d.subdirs.reset()
	d.entries.reset()
	d.tree.metrics.RecordInvalidation()
	logger.Debug("directory: invalidated %s", d.path)
}

// SetFileEntries replaces the memoized file entries of d. It fails with
// ErrNotPopulated when the file entries were never listed.
func (d *LazyDirectory) SetFileEntries(entries []*FileEntry) error {
	if !d.entries.replace(entries) {
		return &repository.StoreError{
			Code:    repository.ErrNotPopulated,
			Message: "file entries were never listed",
			Path:    d.path,
		}
	}
	return nil
}

// SetChildren replaces the memoized subdirectories of d and marks them
// populated. Every directory must have d as its parent.
func (d *LazyDirectory) SetChildren(dirs []*LazyDirectory) error {
	for _, dir := range dirs {
		if dir == nil || dir.parent != d {
			return &repository.StoreError{
				Code:    repository.ErrInvalidArgument,
				Message: "subdirectory does not belong to this directory",
				Path:    d.path,
			}
		}
	}
	d.subdirs.set(dirs)
	return nil
}

// folderChildren lists the child folders of d. Remote filters are not
// trusted, so non-folders are dropped here.
func (d *LazyDirectory) folderChildren(ctx context.Context) ([]*repository.File, error) {
	files, err := d.tree.client.ListChildren(ctx, d.id, repository.FilterFolders)
	if err != nil {
		return nil, fmt.Errorf("list folders of %s: %w", d.path, err)
	}

	folders := make([]*repository.File, 0, len(files))
	for _, f := range files {
		if f != nil && f.Folder {
			folders = append(folders, f)
		}
	}
	return folders, nil
}

func (d *LazyDirectory) fetchSubdirectories(ctx context.Context) ([]*LazyDirectory, error) {
	start := time.Now()

	folders, err := d.folderChildren(ctx)
	if err != nil {
		d.tree.metrics.RecordPopulation(metrics.CacheSubdirectories, time.Since(start), 0, err)
		return nil, err
	}

	dirs := make([]*LazyDirectory, 0, len(folders))
	for _, f := range folders {
		dirs = append(dirs, d.NewSubdirectory(f))
	}

	d.tree.metrics.RecordPopulation(metrics.CacheSubdirectories, time.Since(start), len(dirs), nil)
	logger.Debug("directory: populated %d subdirectories of %s", len(dirs), d.path)
	return dirs, nil
}

func (d *LazyDirectory) fetchFileEntries(ctx context.Context) ([]*FileEntry, error) {
	start := time.Now()

	entries, err := d.buildFileEntries(ctx)
	d.tree.metrics.RecordPopulation(metrics.CacheFileEntries, time.Since(start), len(entries), err)
	if err != nil {
		return nil, err
	}

	logger.Debug("directory: populated %d file entries of %s", len(entries), d.path)
	return entries, nil
}

func (d *LazyDirectory) buildFileEntries(ctx context.Context) ([]*FileEntry, error) {
	listed, err := d.tree.client.ListChildren(ctx, d.id, repository.FilterFiles)
	if err != nil {
		return nil, fmt.Errorf("list files of %s: %w", d.path, err)
	}

	files := make([]*repository.File, 0, len(listed))
	for _, f := range listed {
		if f != nil && !f.Folder {
			files = append(files, f)
		}
	}

	// Lookups run in parallel; slots keep repository order
	slots := make([]*FileEntry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.tree.lookupConcurrency)

	for i, f := range files {
		g.Go(func() error {
			l, err := d.tree.locks.GetLock(gctx, f)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("directory: skipping %s: lock lookup failed: %v", f.Path, err)
				d.tree.metrics.RecordSkippedEntry()
				return nil
			}
			slots[i] = d.NewFileEntry(f, l)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]*FileEntry, 0, len(slots))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (d *LazyDirectory) recordAccess(cache string, hit bool) {
	if hit {
		d.tree.metrics.RecordCacheHit(cache)
	} else {
		d.tree.metrics.RecordCacheMiss(cache)
	}
}

// Populated reports which listings of d are currently memoized.
func (d *LazyDirectory) Populated() (subdirectories, fileEntries bool) {
	return d.subdirs.isPopulated(), d.entries.isPopulated()
}
