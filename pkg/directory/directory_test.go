package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/marmos91/dittorepo/pkg/pathutil"
	"github.com/marmos91/dittorepo/pkg/repository"
	"github.com/marmos91/dittorepo/pkg/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	repo := memory.New()
	client := newFakeClient(repo)

	_, err := New(repo.Root(), nil, nil)
	assert.Error(t, err)

	_, err = New(nil, client, nil)
	assert.Error(t, err)

	file, err := repo.AddFile("/", "a.ktr", false)
	require.NoError(t, err)
	_, err = New(file, client, nil)
	assert.True(t, repository.IsCode(err, repository.ErrNotDirectory))

	root, err := New(repo.Root(), client, nil)
	require.NoError(t, err)
	assert.True(t, root.IsRoot())
	assert.Equal(t, "/", root.Path())
	assert.Equal(t, repo.Root().ID, root.ID())

	entries, err := root.FileEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Lock, "no lock provider reports files unlocked")
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dir, err := Open(ctx, "/A/B", f.client, f.locks)
	require.NoError(t, err)
	assert.True(t, dir.IsRoot())
	assert.Equal(t, "/A/B", dir.Path())
	assert.Equal(t, "B", dir.Name())

	_, err = Open(ctx, "/missing", f.client, f.locks)
	assert.True(t, repository.IsNotFound(err))
}

func TestFindDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name       string
		input      string
		wantPath   string
		wantParent string
		lookups    int32
	}{
		{"direct child", "A", "/A", "/", 1},
		{"rooted input", "/A", "/A", "/", 1},
		{"nested", "A/B", "/A/B", "/A", 2},
		{"hidden folder", "C", "/C", "/", 1},
		{"empty input", "", "", "", 0},
		{"separator only", "/", "", "", 0},
		{"empty segment", "A//B", "", "", 0},
		{"trailing separator", "A/", "", "", 0},
		{"nonexistent", "nonexistent", "", "", 1},
		{"file is not a folder", "report.ktr", "", "", 1},
		{"missing intermediate", "X/B", "", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.client.gets.Load()

			got, err := f.root.FindDirectory(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.lookups, f.client.gets.Load()-before)

			if tt.wantPath == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path())
			assert.Equal(t, tt.wantParent, got.Parent().Path())
			assert.Same(t, f.root, got.FindRoot())
		})
	}

	assert.Zero(t, f.client.lists.Load(), "lookups never list")
	subdirs, entries := f.root.Populated()
	assert.False(t, subdirs)
	assert.False(t, entries)
}

func TestFindDirectory_NotMemoized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.root.FindDirectory(ctx, "A")
	require.NoError(t, err)
	second, err := f.root.FindDirectory(ctx, "A")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, int32(2), f.client.gets.Load())
}

func TestFindDirectory_FromChild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.root.FindChild(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, a)

	b, err := a.FindDirectory(ctx, "/B")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "/A/B", b.Path())
	assert.Same(t, a, b.Parent())
}

func TestFindDirectory_TransportError(t *testing.T) {
	boom := errors.New("timeout")
	client := &erroringClient{err: boom}
	root, err := New(&repository.File{ID: "r", Path: "/", Folder: true}, client, nil)
	require.NoError(t, err)

	_, err = root.FindDirectory(context.Background(), "A")
	assert.ErrorIs(t, err, boom)
}

type erroringClient struct {
	err error
}

func (c *erroringClient) GetFileByPath(context.Context, string) (*repository.File, error) {
	return nil, c.err
}

func (c *erroringClient) ListChildren(context.Context, string, repository.Filter) ([]*repository.File, error) {
	return nil, c.err
}

func TestFindChild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.root.FindChild(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Same(t, f.root, a.Parent())

	for _, name := range []string{"", "A/B", "/A"} {
		_, err := f.root.FindChild(ctx, name)
		assert.True(t, repository.IsCode(err, repository.ErrInvalidArgument), "name %q", name)
	}
}

func TestFindDirectorySegments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.root.FindDirectorySegments(ctx, []string{"A", "B"})
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "/A/B", b.Path())

	none, err := f.root.FindDirectorySegments(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

// walk lists every directory reachable from d through Subdirectories.
func walk(t *testing.T, d *LazyDirectory) []*LazyDirectory {
	t.Helper()
	all := []*LazyDirectory{d}
	children, err := d.Subdirectories(context.Background())
	require.NoError(t, err)
	for _, c := range children {
		all = append(all, walk(t, c)...)
	}
	return all
}

func TestTree_Invariants(t *testing.T) {
	f := newFixture(t)
	all := walk(t, f.root)
	require.Len(t, all, 4)

	for _, node := range all {
		root := node.FindRoot()
		assert.Same(t, f.root, root)
		assert.True(t, root.IsRoot())

		if node == f.root {
			assert.True(t, node.IsRoot())
			continue
		}
		assert.False(t, node.IsRoot(), node.Path())
		assert.Equal(t, pathutil.Child(node.Parent().Path(), node.Name()), node.Path())
	}
}

func TestTree_ChildrenPopulateIndependently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dirs, err := f.root.Subdirectories(ctx)
	require.NoError(t, err)
	a := dirs[0]

	subdirs, _ := a.Populated()
	assert.False(t, subdirs)

	entries, err := a.FileEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/A/inner.ktr", entries[0].Path)
	assert.Same(t, a, entries[0].Directory())

	f.root.Invalidate()
	_, files := a.Populated()
	assert.True(t, files, "invalidating a parent keeps child listings")
}

func TestDirectory_Accessors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dirs, err := f.root.Subdirectories(ctx)
	require.NoError(t, err)
	a, c := dirs[0], dirs[1]

	assert.True(t, a.IsVisible())
	assert.False(t, c.IsVisible())
	assert.True(t, f.root.IsVisible())

	assert.Equal(t, []string{"", ""}, f.root.PathSegments())
	assert.Equal(t, []string{"", "A"}, a.PathSegments())

	assert.Equal(t, "/report.ktr", f.root.PathObjectCombination("report.ktr"))
	assert.Equal(t, "/A/inner.ktr", a.PathObjectCombination("inner.ktr"))

	assert.Equal(t, "/A", a.String())

	var view Directory = a
	assert.Equal(t, "A", view.Name())
}

func TestNewSubdirectory_DerivesName(t *testing.T) {
	f := newFixture(t)

	d := f.root.NewSubdirectory(&repository.File{ID: "q", Path: "/elsewhere/Q", Folder: true})
	assert.Equal(t, "Q", d.Name())
	assert.Equal(t, "/Q", d.Path(), "path always follows the parent")
}
