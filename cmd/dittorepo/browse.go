package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/marmos91/dittorepo/pkg/directory"
)

// listDirectory prints the subdirectories, then the file entries, of dir.
func listDirectory(ctx context.Context, w io.Writer, dir *directory.LazyDirectory, all bool) error {
	dirs, err := dir.Subdirectories(ctx)
	if err != nil {
		return err
	}
	entries, err := dir.FileEntries(ctx)
	if err != nil {
		return err
	}

	for _, d := range dirs {
		if !all && !d.IsVisible() {
			continue
		}
		fmt.Fprintf(w, "%s/\n", d.Name())
	}
	for _, e := range entries {
		fmt.Fprintln(w, formatEntry(e))
	}
	return nil
}

func formatEntry(e *directory.FileEntry) string {
	line := fmt.Sprintf("%-40s %-14s", e.Name, e.Type)
	if e.IsLocked() {
		line += " " + e.Lock.String()
	}
	return strings.TrimRight(line, " ")
}

type treeOptions struct {
	all      bool
	maxDepth int
}

// printTree walks dir depth first, populating each visited node lazily.
func printTree(ctx context.Context, w io.Writer, dir *directory.LazyDirectory, opts treeOptions) error {
	fmt.Fprintln(w, dir.Path())
	return printChildren(ctx, w, dir, "", 1, opts)
}

func printChildren(ctx context.Context, w io.Writer, dir *directory.LazyDirectory, indent string, depth int, opts treeOptions) error {
	if opts.maxDepth > 0 && depth > opts.maxDepth {
		return nil
	}

	dirs, err := dir.Subdirectories(ctx)
	if err != nil {
		return err
	}
	entries, err := dir.FileEntries(ctx)
	if err != nil {
		return err
	}

	visible := dirs[:0:0]
	for _, d := range dirs {
		if opts.all || d.IsVisible() {
			visible = append(visible, d)
		}
	}

	total := len(visible) + len(entries)
	i := 0
	for _, d := range visible {
		i++
		branch, next := treeBranch(i == total)
		fmt.Fprintf(w, "%s%s%s/\n", indent, branch, d.Name())
		if err := printChildren(ctx, w, d, indent+next, depth+1, opts); err != nil {
			return err
		}
	}
	for _, e := range entries {
		i++
		branch, _ := treeBranch(i == total)
		fmt.Fprintf(w, "%s%s%s\n", indent, branch, e.Name)
	}
	return nil
}

func treeBranch(last bool) (branch, next string) {
	if last {
		return "└── ", "    "
	}
	return "├── ", "│   "
}
