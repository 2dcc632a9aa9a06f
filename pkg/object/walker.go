package object

import (
	"container/heap"
	"context"
	"io"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// Walker yields commits reachable from one or more pushed starting
// points in reverse-chronological order (newest first), optionally
// hiding the ancestors of one or more other commits. It realizes spec
// §6's revision-walker contract (`new`, `push`, `hide`, `next`; there
// is no `set_sort`, the order is always newest first), grounded on the heap-ordered traversal in
// antgroup-hugescm/pkg/zeta/blame.go's priorityQueue and the
// seen-map deduplication in commit_walker.go's commitPreIterator.
type Walker struct {
	b      Backend
	pq     commitHeap
	seen   map[plumbing.Hash]bool
	hidden map[plumbing.Hash]bool
}

// NewWalker returns a Walker reading commits from b.
func NewWalker(b Backend) *Walker {
	return &Walker{
		b:      b,
		seen:   make(map[plumbing.Hash]bool),
		hidden: make(map[plumbing.Hash]bool),
	}
}

// Push enqueues oid as a starting point for the walk.
func (w *Walker) Push(ctx context.Context, oid plumbing.Hash) error {
	if w.seen[oid] {
		return nil
	}
	c, err := w.b.Commit(ctx, oid)
	if err != nil {
		return err
	}
	w.seen[oid] = true
	heap.Push(&w.pq, c)
	return nil
}

// Hidden reports whether oid was excluded from the walk by a prior
// Hide call. Callers driving per-commit work outside the walker (the
// blame diff driver) use this to recognize a boundary commit's parent
// as out of bounds, rather than fetching and diffing against it.
func (w *Walker) Hidden(oid plumbing.Hash) bool {
	return w.hidden[oid]
}

// Hide marks every strict ancestor of oid as excluded from the walk.
// oid itself is not hidden: it acts as the inclusive lower boundary
// (spec §4.4's "hide ancestors of oldest_commit").
func (w *Walker) Hide(ctx context.Context, oid plumbing.Hash) error {
	start, err := w.b.Commit(ctx, oid)
	if err != nil {
		return err
	}
	stack := append([]plumbing.Hash(nil), start.Parents...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if w.hidden[h] {
			continue
		}
		w.hidden[h] = true
		c, err := w.b.Commit(ctx, h)
		if err != nil {
			return err
		}
		stack = append(stack, c.Parents...)
	}
	return nil
}

// Next returns the next unhidden commit in reverse-chronological
// order, or io.EOF once the walk is exhausted.
func (w *Walker) Next(ctx context.Context) (*Commit, error) {
	for w.pq.Len() > 0 {
		c := heap.Pop(&w.pq).(*Commit)
		for _, p := range c.Parents {
			if w.seen[p] || w.hidden[p] {
				continue
			}
			w.seen[p] = true
			pc, err := w.b.Commit(ctx, p)
			if err != nil {
				return nil, err
			}
			heap.Push(&w.pq, pc)
		}
		if w.hidden[c.Hash] {
			continue
		}
		return c, nil
	}
	return nil, io.EOF
}

// commitHeap is a max-heap over Commit.Less, so Pop always yields the
// most recent remaining commit.
type commitHeap []*Commit

func (h commitHeap) Len() int            { return len(h) }
func (h commitHeap) Less(i, j int) bool  { return !h[i].Less(h[j]) }
func (h commitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *commitHeap) Push(x any)         { *h = append(*h, x.(*Commit)) }
func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
