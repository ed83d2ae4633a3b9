package directory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	lockmem "github.com/marmos91/dittorepo/pkg/lock/memory"
	"github.com/marmos91/dittorepo/pkg/repository"
	"github.com/marmos91/dittorepo/pkg/repository/memory"
	"github.com/stretchr/testify/require"
)

// fakeClient wraps an in-memory repository, counting round trips. A non-nil
// gate holds every ListChildren until it is closed (or the caller's context
// ends); started receives a token whenever a ListChildren begins.
type fakeClient struct {
	repo *memory.Repository

	gets  atomic.Int32
	lists atomic.Int32

	gate    chan struct{}
	started chan struct{}

	mu      sync.Mutex
	listErr error
	// extra descriptors appended to every listing of a folder id
	extra map[string][]*repository.File
}

func newFakeClient(repo *memory.Repository) *fakeClient {
	return &fakeClient{
		repo:    repo,
		started: make(chan struct{}, 1),
		extra:   make(map[string][]*repository.File),
	}
}

func (c *fakeClient) setListError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listErr = err
}

func (c *fakeClient) addExtra(id string, f *repository.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extra[id] = append(c.extra[id], f)
}

func (c *fakeClient) GetFileByPath(ctx context.Context, path string) (*repository.File, error) {
	c.gets.Add(1)
	return c.repo.GetFileByPath(ctx, path)
}

func (c *fakeClient) ListChildren(ctx context.Context, id string, filter repository.Filter) ([]*repository.File, error) {
	c.lists.Add(1)

	select {
	case c.started <- struct{}{}:
	default:
	}

	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	err := c.listErr
	extra := append([]*repository.File(nil), c.extra[id]...)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	files, err := c.repo.ListChildren(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	return append(files, extra...), nil
}

func waitStarted(t *testing.T, c *fakeClient) {
	t.Helper()
	select {
	case <-c.started:
	case <-time.After(5 * time.Second):
		t.Fatal("listing never started")
	}
}

// fixture builds:
//
//	/
//	├── A/
//	│   ├── B/
//	│   │   └── deep.kjb
//	│   └── inner.ktr
//	├── C/            (hidden)
//	├── report.ktr    (locked by alice)
//	└── nightly.kjb
type fixture struct {
	repo   *memory.Repository
	client *fakeClient
	locks  *lockmem.Provider
	root   *LazyDirectory
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	repo := memory.New()
	mustAdd := func(f *repository.File, err error) *repository.File {
		t.Helper()
		require.NoError(t, err)
		return f
	}

	mustAdd(repo.AddFolder("/", "A", false))
	mustAdd(repo.AddFolder("/A", "B", false))
	mustAdd(repo.AddFile("/A/B", "deep.kjb", false))
	mustAdd(repo.AddFile("/A", "inner.ktr", false))
	mustAdd(repo.AddFolder("/", "C", true))
	report := mustAdd(repo.AddFile("/", "report.ktr", false))
	mustAdd(repo.AddFile("/", "nightly.kjb", false))

	locks := lockmem.New()
	_, err := locks.Lock(report, "alice", "editing")
	require.NoError(t, err)

	client := newFakeClient(repo)
	root, err := New(repo.Root(), client, locks, opts...)
	require.NoError(t, err)

	return &fixture{repo: repo, client: client, locks: locks, root: root}
}

func names[T interface{ *LazyDirectory | *FileEntry }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := any(it).(type) {
		case *LazyDirectory:
			out = append(out, v.Name())
		case *FileEntry:
			out = append(out, v.Name)
		}
	}
	return out
}

// recordingMetrics counts DirectoryMetrics calls.
type recordingMetrics struct {
	mu            sync.Mutex
	hits          map[string]int
	misses        map[string]int
	populations   map[string]int
	skipped       int
	invalidations int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		hits:        make(map[string]int),
		misses:      make(map[string]int),
		populations: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordCacheHit(cache string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[cache]++
}

func (m *recordingMetrics) RecordCacheMiss(cache string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses[cache]++
}

func (m *recordingMetrics) RecordPopulation(cache string, _ time.Duration, _ int, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.populations[cache]++
}

func (m *recordingMetrics) RecordSkippedEntry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

func (m *recordingMetrics) RecordInvalidation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++
}
