package lock

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/dittorepo/pkg/repository"
	"github.com/stretchr/testify/assert"
)

func TestNone(t *testing.T) {
	l, err := None().GetLock(context.Background(), &repository.File{ID: "1"})
	assert.NoError(t, err)
	assert.Nil(t, l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = None().GetLock(ctx, &repository.File{ID: "1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLock_String(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	l := &Lock{Owner: "alice", Date: date}
	assert.Equal(t, "locked by alice at 2024-01-02T03:04:05Z", l.String())

	l.Message = "release prep"
	assert.Equal(t, "locked by alice at 2024-01-02T03:04:05Z: release prep", l.String())
}
