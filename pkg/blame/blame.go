package blame

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zetaline/blameline/pkg/object"
	"github.com/zetaline/blameline/pkg/plumbing"
)

// Policy selects the matching discipline the matcher runs. Passing is
// the only one this engine implements; Trivial is accepted as an
// option value but BlameFile rejects it with an InvalidArgument
// BlameError — spec
// §4.5 permits an implementation to support passing alone.
type Policy int

const (
	Passing Policy = iota
	Trivial
)

// Flag is a bit field of blame_file options (spec §6).
type Flag uint32

const (
	// TrackFileRenames enables rename detection across the walk.
	// Enabled by default.
	TrackFileRenames Flag = 1 << iota
)

// Options configures BlameFile.
type Options struct {
	// NewestCommit is the revision blame starts from. It is required:
	// BlameFile rejects the zero hash with InvalidArgument and does not
	// resolve a current head, since there is no ambient repository-head
	// concept at this layer.
	NewestCommit plumbing.Hash
	// OldestCommit, if set, is an inclusive lower bound: ancestors of
	// this commit are hidden from the walk.
	OldestCommit plumbing.Hash
	Flags        Flag
	Policy       Policy
}

func (o *Options) flags() Flag {
	if o.Flags == 0 {
		return TrackFileRenames
	}
	return o.Flags
}

// Kind classifies a BlameError the way spec §7 enumerates error kinds.
type Kind string

const (
	InvalidArgument Kind = "invalid_argument"
	NotFound        Kind = "not_found"
	StoreError      Kind = "store_error"
	DiffError       Kind = "diff_error"
	Aborted         Kind = "abort"
)

// BlameError wraps an underlying error with the taxonomy kind callers
// are expected to branch on.
type BlameError struct {
	Kind Kind
	Err  error
}

func (e *BlameError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("blame: %s: %v", e.Kind, e.Err)
}

func (e *BlameError) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *BlameError {
	logrus.WithField("kind", kind).WithError(err).Debug("blame: operation failed")
	return &BlameError{Kind: kind, Err: err}
}

// Result is a completed blame: either file-blame (every hunk's
// FinalCommitID is nonzero) or buffer-blame (a zero FinalCommitID
// marks a line introduced by the overlaid buffer, per spec §4.7).
type Result struct {
	Path     string
	NumLines int

	claimed *hunkSet

	// finalText and finalCommit are retained so BlameBuffer can later
	// overlay a buffer on this result (spec §4.7 step 2 diffs against
	// "R.final_blob").
	finalText   string
	finalCommit plumbing.Hash
}

// HunkCount returns the number of claimed hunks.
func (r *Result) HunkCount() int { return r.claimed.Len() }

// HunkByIndex returns the i-th claimed hunk in final_start order, or
// nil if i is out of range.
func (r *Result) HunkByIndex(i int) *Hunk {
	if i < 0 || i >= r.claimed.Len() {
		return nil
	}
	return r.claimed.At(i)
}

// HunkByLine returns the hunk whose final range contains line, or nil.
func (r *Result) HunkByLine(line int) *Hunk {
	return r.claimed.byFinalLine(line)
}

// BlameFile computes the full blame of path as it exists at
// opts.NewestCommit, walking the ancestry backed by b.
func BlameFile(ctx context.Context, b object.Backend, path string, opts Options) (*Result, error) {
	if path == "" {
		return nil, newError(InvalidArgument, fmt.Errorf("empty path"))
	}
	if opts.NewestCommit.IsZero() {
		return nil, newError(InvalidArgument, fmt.Errorf("NewestCommit is required"))
	}
	if opts.Policy == Trivial {
		return nil, newError(InvalidArgument, fmt.Errorf("trivial matching policy is not implemented"))
	}

	newest, err := b.Commit(ctx, opts.NewestCommit)
	if err != nil {
		if plumbing.IsNoSuchObject(err) {
			return nil, newError(NotFound, err)
		}
		return nil, newError(StoreError, err)
	}

	file, err := newest.File(ctx, path)
	if err != nil {
		if plumbing.IsNoSuchObject(err) {
			return nil, newError(NotFound, err)
		}
		return nil, newError(StoreError, err)
	}
	text, err := file.Contents(ctx)
	if err != nil {
		return nil, newError(StoreError, err)
	}

	target := newLineIndex([]byte(text))
	unclaimed := newHunkSet()
	claimed := newHunkSet()
	if n := target.numLines(); n > 0 {
		unclaimed.insert(&Hunk{FinalStart: 1, Lines: n, OrigStart: 1, OrigPath: path})
	}

	paths := newPathSet(path)
	walker := object.NewWalker(b)
	if err := walker.Push(ctx, opts.NewestCommit); err != nil {
		return nil, newError(StoreError, err)
	}
	if !opts.OldestCommit.IsZero() {
		if err := walker.Hide(ctx, opts.OldestCommit); err != nil {
			return nil, newError(StoreError, err)
		}
	}

	lastVisited, err := runWalk(ctx, b, walker, paths, opts.flags()&TrackFileRenames != 0, unclaimed, claimed, target)
	if err != nil {
		if isAbortErr(err) {
			return nil, newError(Aborted, errors.Unwrap(err))
		}
		return nil, newError(StoreError, err)
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"commit":  opts.NewestCommit.String(),
		"lines":   target.numLines(),
		"hunks":   claimed.Len(),
		"visited": lastVisited.String(),
	}).Debug("blame: file blame complete")

	return &Result{
		Path:        path,
		NumLines:    target.numLines(),
		claimed:     claimed,
		finalText:   text,
		finalCommit: opts.NewestCommit,
	}, nil
}

// BlameBuffer overlays buffer on reference, producing a new Result
// whose zero-commit hunks mark locally modified lines (spec §4.7).
func BlameBuffer(reference *Result, buffer []byte) (*Result, error) {
	if reference == nil {
		return nil, newError(InvalidArgument, fmt.Errorf("nil reference result"))
	}
	bufText := string(buffer)
	claimed := applyBuffer(reference, bufText)

	lines := newLineIndex(buffer).numLines()
	logrus.WithFields(logrus.Fields{
		"path":  reference.Path,
		"lines": lines,
		"hunks": claimed.Len(),
	}).Debug("blame: buffer blame complete")

	return &Result{
		Path:        reference.Path,
		NumLines:    lines,
		claimed:     claimed,
		finalText:   bufText,
		finalCommit: reference.finalCommit,
	}, nil
}
