package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/marmos91/dittorepo/internal/logger"
	"github.com/marmos91/dittorepo/pkg/directory"
)

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	interval := fs.Duration("interval", 30*time.Second, "Polling interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	dir, err := a.resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if a.metrics.Server != nil {
		go func() {
			if err := a.metrics.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	logger.Info("Watching %s every %v. Press Ctrl+C to stop.", dir.Path(), *interval)
	err = watch(ctx, dir, *interval)
	if errors.Is(err, context.Canceled) {
		logger.Info("Watch stopped")
		return nil
	}
	return err
}

// watch polls the fresh subdirectory count of dir and invalidates the
// memoized listings whenever it no longer matches them.
func watch(ctx context.Context, dir *directory.LazyDirectory, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		changed, err := checkChanged(ctx, dir)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Watch %s: %v", dir.Path(), err)
		} else if changed {
			logger.Info("Change detected in %s, listings invalidated", dir.Path())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// checkChanged compares the memoized subdirectories of dir with a fresh count.
func checkChanged(ctx context.Context, dir *directory.LazyDirectory) (bool, error) {
	cached, err := dir.Subdirectories(ctx)
	if err != nil {
		return false, err
	}
	count, err := dir.SubdirectoryCount(ctx)
	if err != nil {
		return false, err
	}

	if count == len(cached) {
		return false, nil
	}

	dir.Invalidate()
	return true, nil
}
