package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/marmos91/dittorepo/internal/logger"
	"github.com/marmos91/dittorepo/pkg/pathutil"
	"github.com/marmos91/dittorepo/pkg/repository"
)

// FindDirectory resolves input relative to d and looks the folder up in the
// repository. It returns (nil, nil) when no folder exists there.
//
// Lookups are never memoized and never touch the listings of any node. A
// leading separator roots input at d itself, so "A" and "/A" both name the
// child A of d. Input with several segments walks every intermediate folder,
// one point lookup per segment, and the result is linked to the last of them.
// Any empty segment resolves to nothing.
func (d *LazyDirectory) FindDirectory(ctx context.Context, input string) (*LazyDirectory, error) {
	target, ok := pathutil.Resolve(d.path, input)
	if !ok {
		return nil, nil
	}

	segments := pathutil.Split(strings.TrimPrefix(input, pathutil.Separator))
	for _, seg := range segments {
		if seg == "" {
			return nil, nil
		}
	}

	node := d
	for _, seg := range segments {
		path := pathutil.Child(node.path, seg)

		file, err := d.tree.client.GetFileByPath(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", path, err)
		}
		if file == nil || !file.Folder {
			logger.Debug("directory: no folder at %s", target)
			return nil, nil
		}

		node = node.child(file, seg)
	}

	return node, nil
}

// FindDirectorySegments joins segments with the separator and calls
// FindDirectory.
func (d *LazyDirectory) FindDirectorySegments(ctx context.Context, segments []string) (*LazyDirectory, error) {
	return d.FindDirectory(ctx, pathutil.Join(segments))
}

// FindChild looks up the direct child folder called name.
func (d *LazyDirectory) FindChild(ctx context.Context, name string) (*LazyDirectory, error) {
	if !pathutil.ValidName(name) {
		return nil, &repository.StoreError{
			Code:    repository.ErrInvalidArgument,
			Message: "invalid child name",
			Path:    name,
		}
	}
	return d.FindDirectory(ctx, name)
}
