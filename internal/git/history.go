// Package git provides streaming access to repository history and temporary
// clones. History is traversed lazily, one commit at a time, so large
// repositories are never materialized in memory.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrNotRepository marks a root that is not a git repository at all. Callers
// treat this as a fatal input error for history scans.
var ErrNotRepository = errors.New("not a git repository")

func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// Open opens the repository at root. Returns ErrNotRepository when the
// directory exists but carries no repository.
func Open(root string) (*gogit.Repository, error) {
	abs, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	repo, err := gogit.PlainOpen(abs)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
		}
		return nil, err
	}
	return repo, nil
}

// ForEachHistoryBlob walks the commit graph from HEAD and invokes visit for
// every file changed in each commit, with the content the file had at that
// commit. The root commit contributes its full tree. Returning false from
// visit stops the walk early; ctx cancellation does the same. Errors after the
// walk has begun are returned so the caller can degrade to current-tree
// results rather than fail the scan.
func ForEachHistoryBlob(ctx context.Context, repo *gogit.Repository, maxBytes int64, visit func(commit, path string, data []byte) bool) error {
	iter, err := repo.Log(&gogit.LogOptions{})
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	defer iter.Close()

	emit := func(c *object.Commit, f *object.File) (bool, error) {
		if maxBytes > 0 && f.Size > maxBytes {
			return true, nil
		}
		if bin, err := f.IsBinary(); err != nil || bin {
			return true, nil
		}
		s, err := f.Contents()
		if err != nil {
			return true, nil
		}
		return visit(c.Hash.String(), f.Name, []byte(s)), nil
	}

	err = iter.ForEach(func(c *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		tree, err := c.Tree()
		if err != nil {
			return err
		}
		if c.NumParents() == 0 {
			return tree.Files().ForEach(func(f *object.File) error {
				keep, err := emit(c, f)
				if err != nil {
					return err
				}
				if !keep {
					return storer.ErrStop
				}
				return nil
			})
		}
		parent, err := c.Parent(0)
		if err != nil {
			return err
		}
		parentTree, err := parent.Tree()
		if err != nil {
			return err
		}
		changes, err := object.DiffTree(parentTree, tree)
		if err != nil {
			return err
		}
		for _, ch := range changes {
			if ch.To.Name == "" { // deletion
				continue
			}
			f, err := tree.File(ch.To.Name)
			if err != nil {
				continue
			}
			keep, err := emit(c, f)
			if err != nil {
				return err
			}
			if !keep {
				return storer.ErrStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return fmt.Errorf("walking history: %w", err)
	}
	return nil
}
