package object

import (
	"context"
	"io"
	"time"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// Signature identifies who made a commit and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit is a point in the ancestry graph: a tree snapshot plus zero or
// more parents. Parents are ordered the way the object store reported
// them, which the walk loop and blame matcher both rely on (spec §5's
// "parents are processed in the order reported by the object store").
type Commit struct {
	Hash      plumbing.Hash
	Author    Signature
	Committer Signature
	Parents   []plumbing.Hash
	Tree      plumbing.Hash
	Message   string

	b Backend
}

// Less orders commits by commit time, then author time, then hash, so
// that a set of commits can be walked in a stable reverse-chronological
// order (spec §5's ordering guarantee for the revision walker).
func (c *Commit) Less(rhs *Commit) bool {
	if !c.Committer.When.Equal(rhs.Committer.When) {
		return c.Committer.When.Before(rhs.Committer.When)
	}
	if !c.Author.When.Equal(rhs.Author.When) {
		return c.Author.When.Before(rhs.Author.When)
	}
	return c.Hash.Less(rhs.Hash)
}

// NumParents returns the number of parents this commit has. Zero means
// a root commit, which the walk loop treats as an end-of-walk
// terminator (spec §4.5).
func (c *Commit) NumParents() int {
	return len(c.Parents)
}

// Root resolves the commit's tree.
func (c *Commit) Root(ctx context.Context) (*Tree, error) {
	return c.b.Tree(ctx, c.Tree)
}

// File resolves path within this commit's tree, returning
// plumbing.NoSuchObject-flavored errors (via Tree.File) when absent.
func (c *Commit) File(ctx context.Context, path string) (*File, error) {
	tree, err := c.Root(ctx)
	if err != nil {
		return nil, err
	}
	return tree.File(path)
}

// CommitIter is a generic, closable iterator over commits. It is the
// shape every revision-walk strategy in this package returns, and is
// also how parents are enumerated one at a time without materializing
// a slice of *Commit up front.
type CommitIter interface {
	Next(ctx context.Context) (*Commit, error)
	ForEach(ctx context.Context, cb func(*Commit) error) error
	Close()
}

// MakeParents returns an iterator over this commit's parents, resolved
// lazily against the backend that produced c.
func (c *Commit) MakeParents() CommitIter {
	return NewCommitIter(c.b, c.Parents)
}

// lookupIter iterates over a predetermined list of commit hashes,
// resolving each lazily. Grounded on the teacher's lookupIter: a flat
// list walk is all parent-enumeration needs, no graph discovery
// required.
type lookupIter struct {
	b      Backend
	series []plumbing.Hash
	pos    int
}

// NewCommitIter returns a CommitIter over hashes, resolved against b in
// order.
func NewCommitIter(b Backend, hashes []plumbing.Hash) CommitIter {
	return &lookupIter{b: b, series: hashes}
}

func (it *lookupIter) Next(ctx context.Context) (*Commit, error) {
	if it.pos >= len(it.series) {
		return nil, io.EOF
	}
	oid := it.series[it.pos]
	c, err := it.b.Commit(ctx, oid)
	if err != nil {
		return nil, err
	}
	it.pos++
	return c, nil
}

func (it *lookupIter) ForEach(ctx context.Context, cb func(*Commit) error) error {
	defer it.Close()
	for {
		c, err := it.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(c); err != nil {
			if err == plumbing.ErrStop {
				return nil
			}
			return err
		}
	}
}

func (it *lookupIter) Close() {
	it.pos = len(it.series)
}
