package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittorepo/internal/logger"
	"github.com/marmos91/dittorepo/pkg/config"
	"github.com/marmos91/dittorepo/pkg/directory"
)

const usage = `dittorepo - lazy directory cache for hierarchical repositories

Usage:
  dittorepo init  [--force]
  dittorepo ls    [--config FILE] [--all] [PATH]
  dittorepo tree  [--config FILE] [--all] [--depth N] [PATH]
  dittorepo watch [--config FILE] [--interval DURATION] [PATH]

PATH is resolved against repository.root and defaults to it.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Cancel on SIGINT / SIGTERM so long-running commands stop cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "ls":
		err = runList(ctx, os.Args[2:])
	case "tree":
		err = runTree(ctx, os.Args[2:])
	case "watch":
		err = runWatch(ctx, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := config.InitConfig(*force)
	if err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

// app is everything a browsing command needs, built from configuration.
type app struct {
	cfg     *config.Config
	metrics *config.MetricsResult
	repo    *config.RepositoryResult
	root    *directory.LazyDirectory
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return nil, err
	}

	m := config.InitializeMetrics(cfg)

	repo, err := config.CreateRepositoryClient(ctx, &cfg.Repository, m.Repository)
	if err != nil {
		return nil, err
	}

	locks, err := config.CreateLockProvider(&cfg.Locks)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	root, err := config.OpenDirectory(ctx, cfg, repo.Client, locks, m.Directory)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	logger.Debug("Repository %s opened at %s", cfg.Repository.Type, root.Path())
	return &app{cfg: cfg, metrics: m, repo: repo, root: root}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		logger.Warn("Failed to close repository: %v", err)
	}
}

// resolve finds the directory at path relative to the tree root.
func (a *app) resolve(ctx context.Context, path string) (*directory.LazyDirectory, error) {
	if path == "" || path == "/" {
		return a.root, nil
	}

	dir, err := a.root.FindDirectory(ctx, path)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, fmt.Errorf("no folder at %s", a.root.PathObjectCombination(path))
	}
	return dir, nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	all := fs.Bool("all", false, "Include hidden folders")
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
	return listDirectory(ctx, os.Stdout, dir, *all)
}

func runTree(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	all := fs.Bool("all", false, "Include hidden folders")
	depth := fs.Int("depth", 0, "Maximum depth (0 = unlimited)")
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
	return printTree(ctx, os.Stdout, dir, treeOptions{all: *all, maxDepth: *depth})
}
