package blame

import (
	"context"
	"errors"
	"io"

	"github.com/zetaline/blameline/pkg/object"
	"github.com/zetaline/blameline/pkg/plumbing"
)

// runWalk drives C6: it pulls commits newest-to-oldest from w, drives
// the diff driver and matcher per commit, and terminates on exhaustion
// or full claim. It returns the commit hash the walk ultimately
// stopped at, used to attribute any hunks left dangling at the
// boundary (spec §4.4's walk-termination rule).
func runWalk(ctx context.Context, b object.Backend, w *object.Walker, paths *pathSet, trackRenames bool, unclaimed, claimed *hunkSet, target *lineIndex) (plumbing.Hash, error) {
	matcher := newPassingMatcher(unclaimed, claimed, target)

	var lastVisited plumbing.Hash
	for {
		if err := checkAborted(ctx); err != nil {
			return plumbing.ZeroHash, err
		}

		commit, err := w.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return plumbing.ZeroHash, wrapStore(err)
		}
		lastVisited = commit.Hash

		matcher.commitStart(commit.Hash)

		var parent *object.Commit
		if commit.NumParents() > 0 {
			if err := commit.MakeParents().ForEach(ctx, func(c *object.Commit) error {
				parent = c
				return plumbing.ErrStop
			}); err != nil {
				return plumbing.ZeroHash, wrapStore(err)
			}
		}

		// A commit whose first parent was hidden by an oldest_commit
		// bound is treated as a root for matching purposes: the walk
		// must not look past its boundary, so any hunk that reaches it
		// unclaimed is attributed here rather than diffed further back.
		if parent == nil || w.Hidden(parent.Hash) {
			matcher.commitEnd(commit.Hash, 0, plumbing.ZeroHash)
		} else {
			deltas, derr := diffCommitParent(ctx, b, commit, parent, paths, trackRenames)
			if derr != nil {
				switch {
				case isAbortErr(derr):
					return plumbing.ZeroHash, derr
				case isStoreErr(derr):
					// §7: an object-store failure is fatal — the walk
					// cannot trust any state past this point, so it
					// aborts and frees partial state rather than
					// guessing.
					return plumbing.ZeroHash, derr
				default:
					// §4.5.4: a genuine diff-engine failure abandons
					// this commit only; the walk continues with the
					// next one, no hunks move.
					_ = newError(DiffError, derr)
					continue
				}
			}
			matcher.processParentDiff(deltas)
			matcher.commitEnd(commit.Hash, 1, parent.Hash)
		}

		if unclaimed.Len() == 0 {
			return commit.Hash, nil
		}
	}

	// Walker exhausted with unclaimed hunks remaining: claim everything
	// to the last commit the walk actually visited (spec §4.4's
	// walk-termination rule).
	matcher.claimRemaining(lastVisited, paths.target)
	return lastVisited, nil
}
