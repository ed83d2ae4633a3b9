package directory

import (
	"context"
	"testing"

	"github.com/marmos91/dittorepo/pkg/lock"
	"github.com/marmos91/dittorepo/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectTypeOf(t *testing.T) {
	tests := []struct {
		name string
		want ObjectType
	}{
		{"load.ktr", ObjectTransformation},
		{"LOAD.KTR", ObjectTransformation},
		{"nightly.kjb", ObjectJob},
		{"Nightly.Kjb", ObjectJob},
		{"notes.txt", ObjectUnknown},
		{"ktr", ObjectUnknown},
		{"archive.ktr.bak", ObjectUnknown},
		{"", ObjectUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectTypeOf(tt.name))
		})
	}
}

func TestObjectType_StringAndExtension(t *testing.T) {
	assert.Equal(t, "transformation", ObjectTransformation.String())
	assert.Equal(t, "job", ObjectJob.String())
	assert.Equal(t, "unknown", ObjectUnknown.String())

	assert.Equal(t, ".ktr", ObjectTransformation.Extension())
	assert.Equal(t, ".kjb", ObjectJob.Extension())
	assert.Empty(t, ObjectUnknown.Extension())
}

func TestFileEntry_Fields(t *testing.T) {
	f := newFixture(t)

	entries, err := f.root.FileEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	report, nightly := entries[0], entries[1]
	assert.Equal(t, "/report.ktr", report.Path)
	assert.Equal(t, ObjectTransformation, report.Type)
	assert.Equal(t, ObjectJob, nightly.Type)
	assert.True(t, report.VersioningEnabled)
	assert.True(t, report.VersionCommentEnabled)
	assert.Same(t, f.root, report.Directory())

	file, _ := f.repo.GetFileByPath(context.Background(), "/report.ktr")
	assert.Equal(t, file.ID, report.ID)
}

func TestNewFileEntry(t *testing.T) {
	f := newFixture(t)
	l := &lock.Lock{Owner: "bob"}

	e := f.root.NewFileEntry(&repository.File{ID: "9", Path: "/x/run.kjb"}, l)
	assert.Equal(t, "run.kjb", e.Name)
	assert.Equal(t, "/run.kjb", e.Path)
	assert.Equal(t, ObjectJob, e.Type)
	assert.Same(t, l, e.Lock)
}
