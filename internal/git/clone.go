package git

import (
	"context"
	"fmt"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// CloneTemp clones url into a fresh temporary directory and returns the
// directory plus a cleanup func. Quick scans use a depth-1 clone; deep scans
// need the full history.
func CloneTemp(ctx context.Context, url, branch string, deep bool) (string, func(), error) {
	dir, err := os.MkdirTemp("", "leakhound-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	opts := &gogit.CloneOptions{URL: url}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}
	if !deep {
		opts.Depth = 1
	}
	if _, err := gogit.PlainCloneContext(ctx, dir, false, opts); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("cloning %s: %w", url, err)
	}
	return dir, cleanup, nil
}
