package repository

import (
	"context"
	"time"

	"github.com/marmos91/dittorepo/internal/ratelimiter"
	"github.com/marmos91/dittorepo/pkg/metrics"
)

// throttledClient waits on a rate limiter before every remote round trip.
type throttledClient struct {
	next    Client
	limiter *ratelimiter.RateLimiter
	metrics metrics.RepositoryMetrics
}

// Throttled wraps client so that every call first waits for a rate limiter
// token. A cancelled context while waiting is returned without calling the
// remote. An unlimited limiter returns client unchanged. Time spent waiting is
// recorded on m, which may be nil.
func Throttled(client Client, limiter *ratelimiter.RateLimiter, m metrics.RepositoryMetrics) Client {
	if limiter == nil || limiter.Unlimited() {
		return client
	}
	if m == nil {
		m = metrics.NewNoopRepositoryMetrics()
	}
	return &throttledClient{next: client, limiter: limiter, metrics: m}
}

func (c *throttledClient) wait(ctx context.Context, operation string) error {
	start := time.Now()
	err := c.limiter.Wait(ctx)
	c.metrics.RecordThrottled(operation, time.Since(start))
	return err
}

func (c *throttledClient) GetFileByPath(ctx context.Context, path string) (*File, error) {
	if err := c.wait(ctx, "GetFileByPath"); err != nil {
		return nil, err
	}
	return c.next.GetFileByPath(ctx, path)
}

func (c *throttledClient) ListChildren(ctx context.Context, id string, filter Filter) ([]*File, error) {
	if err := c.wait(ctx, "ListChildren"); err != nil {
		return nil, err
	}
	return c.next.ListChildren(ctx, id, filter)
}

// instrumentedClient records every call on a RepositoryMetrics.
type instrumentedClient struct {
	next    Client
	metrics metrics.RepositoryMetrics
}

// Instrumented wraps client so that every call is recorded on m. A nil m
// returns client unchanged.
func Instrumented(client Client, m metrics.RepositoryMetrics) Client {
	if m == nil {
		return client
	}
	return &instrumentedClient{next: client, metrics: m}
}

func (c *instrumentedClient) GetFileByPath(ctx context.Context, path string) (*File, error) {
	start := time.Now()
	file, err := c.next.GetFileByPath(ctx, path)
	c.metrics.RecordCall("GetFileByPath", time.Since(start), err)
	return file, err
}

func (c *instrumentedClient) ListChildren(ctx context.Context, id string, filter Filter) ([]*File, error) {
	start := time.Now()
	files, err := c.next.ListChildren(ctx, id, filter)
	c.metrics.RecordCall("ListChildren", time.Since(start), err)
	return files, err
}
