package badger

import (
	"context"
	"testing"

	"github.com/marmos91/dittorepo/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T, dir string) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), BadgerRepositoryConfig{DBPath: dir})
	require.NoError(t, err)
	return repo
}

func TestRepository_AddAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, t.TempDir())
	defer repo.Close()

	root, err := repo.Root(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "/", root.Path)
	assert.True(t, root.Folder)

	_, err = repo.AddFolder(ctx, "/", "public", false)
	require.NoError(t, err)
	file, err := repo.AddFile(ctx, "/public", "report.ktr", false)
	require.NoError(t, err)

	got, err := repo.GetFileByPath(ctx, "/public/report.ktr")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, file.ID, got.ID)
	assert.False(t, got.Folder)

	missing, err := repo.GetFileByPath(ctx, "/public/nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_AddErrors(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, t.TempDir())
	defer repo.Close()

	_, err := repo.AddFile(ctx, "/", "a.ktr", false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		parent string
		child  string
		code   repository.ErrorCode
	}{
		{"missing parent", "/missing", "x", repository.ErrNotFound},
		{"parent is a file", "/a.ktr", "x", repository.ErrNotDirectory},
		{"duplicate", "/", "a.ktr", repository.ErrAlreadyExists},
		{"invalid name", "/", "a/b", repository.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.AddFolder(ctx, tt.parent, tt.child, false)
			assert.True(t, repository.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRepository_ListChildren(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, t.TempDir())
	defer repo.Close()

	_, _ = repo.AddFolder(ctx, "/", "beta", false)
	_, _ = repo.AddFolder(ctx, "/", "alpha", true)
	_, _ = repo.AddFile(ctx, "/", "job.kjb", false)

	root, err := repo.Root(ctx)
	require.NoError(t, err)

	folders, err := repo.ListChildren(ctx, root.ID, repository.FilterFolders)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "alpha", folders[0].Name, "children are listed in name order")
	assert.Equal(t, "beta", folders[1].Name)
	assert.True(t, folders[0].Hidden)

	files, err := repo.ListChildren(ctx, root.ID, repository.FilterFiles)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/job.kjb", files[0].Path)

	beta, _ := repo.GetFileByPath(ctx, "/beta")
	empty, err := repo.ListChildren(ctx, beta.ID, repository.FilterFiles)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = repo.ListChildren(ctx, "unknown", repository.FilterFolders)
	assert.True(t, repository.IsNotFound(err))
}

func TestRepository_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo := openTestRepo(t, dir)
	root, err := repo.Root(ctx)
	require.NoError(t, err)
	_, err = repo.AddFolder(ctx, "/", "public", false)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened := openTestRepo(t, dir)
	defer reopened.Close()

	again, err := reopened.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, root.ID, again.ID, "root survives reopen")

	public, err := reopened.GetFileByPath(ctx, "/public")
	require.NoError(t, err)
	assert.NotNil(t, public)
}

func TestRepository_InMemory(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, BadgerRepositoryConfig{InMemory: true})
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.AddFolder(ctx, "/", "tmp", false)
	require.NoError(t, err)

	got, err := repo.GetFileByPath(ctx, "/tmp")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRepository_ContextCancelled(t *testing.T) {
	repo := openTestRepo(t, t.TempDir())
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetFileByPath(ctx, "/")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.ListChildren(ctx, "any", repository.FilterFiles)
	assert.ErrorIs(t, err, context.Canceled)
}
