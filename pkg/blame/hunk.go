// Package blame implements the line-level blame-passing algorithm: the
// hunk store (C1), line index (C2), path set (C3), diff driver (C4),
// blame matcher (C5), walk loop (C6), and buffer-blame (C7) that
// together answer "who last touched this line".
//
// The design is grounded on antgroup-hugescm/pkg/zeta/blame.go's
// forward-linemap algorithm, generalized from its fixed two-parent
// linemap to the passing scheme's score ≥ parentcount rule (the walk
// diffs only a commit's first parent, so parentcount is 0 or 1), and
// on its BlameResult /
// Line vocabulary for the public surface in blame.go.
package blame

import (
	"sort"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// Hunk is a contiguous, currently-unattributed-or-attributed range of
// lines, carried in one of two coordinate systems at once: final
// (target-file, current-revision) and orig (whichever ancestor
// revision is presently under examination).
type Hunk struct {
	FinalStart int // 1-based, target-file coordinates
	Lines      int
	OrigStart  int // 1-based, current ancestor coordinates
	OrigPath   string

	FinalCommitID plumbing.Hash
	OrigCommitID  plumbing.Hash

	// CurrentScore and ScoredPath are scratch state reset every commit
	// by the matcher's commit-start step; they are never read once a
	// hunk is claimed.
	CurrentScore int
	ScoredPath   string

	// Linemap records, per parent commit, the orig_start a hunk should
	// resume at when the walker reaches that parent. Most hunks see at
	// most one or two parents, so a flat slice beats a map.
	Linemap []linemapEntry
}

type linemapEntry struct {
	parent    plumbing.Hash
	origStart int
}

// linemapGet returns the recorded orig_start for parent, if any.
func (h *Hunk) linemapGet(parent plumbing.Hash) (int, bool) {
	for _, e := range h.Linemap {
		if e.parent == parent {
			return e.origStart, true
		}
	}
	return 0, false
}

// linemapSet records or updates the expected orig_start under parent.
func (h *Hunk) linemapSet(parent plumbing.Hash, origStart int) {
	for i, e := range h.Linemap {
		if e.parent == parent {
			h.Linemap[i].origStart = origStart
			return
		}
	}
	h.Linemap = append(h.Linemap, linemapEntry{parent: parent, origStart: origStart})
}

// finalEnd is the line one past this hunk's final range (exclusive).
func (h *Hunk) finalEnd() int { return h.FinalStart + h.Lines }

// origEnd is the line one past this hunk's orig range (exclusive).
func (h *Hunk) origEnd() int { return h.OrigStart + h.Lines }

// clone produces an independent copy, used when buffer-blame copies a
// reference result's claimed hunks into a new one (spec §4.7 step 1).
func (h *Hunk) clone() *Hunk {
	cp := *h
	cp.Linemap = append([]linemapEntry(nil), h.Linemap...)
	return &cp
}

// hunkSet is an ordered, non-overlapping collection of hunks sorted by
// FinalStart, realizing C1's contract: insert, lookup by final_start,
// lookup by orig_start, split, shift, remove, enumerate.
type hunkSet struct {
	items []*Hunk
}

func newHunkSet() *hunkSet {
	return &hunkSet{}
}

func (s *hunkSet) Len() int { return len(s.items) }

func (s *hunkSet) At(i int) *Hunk { return s.items[i] }

// insert adds h, keeping items sorted by FinalStart. Zero-length hunks
// are rejected per invariant 5 ("zero-length hunks are deleted
// immediately on creation").
func (s *hunkSet) insert(h *Hunk) {
	if h.Lines <= 0 {
		return
	}
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].FinalStart >= h.FinalStart })
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = h
}

// remove deletes h from the set.
func (s *hunkSet) remove(h *Hunk) {
	for i, e := range s.items {
		if e == h {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// byFinalLine returns the hunk whose final range contains line, or nil.
func (s *hunkSet) byFinalLine(line int) *Hunk {
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].finalEnd() > line })
	if i < len(s.items) && s.items[i].FinalStart <= line {
		return s.items[i]
	}
	return nil
}

// byOrigLine returns the hunk whose orig range contains line, or nil.
// Unlike byFinalLine this is a linear scan: orig_start order need not
// track FinalStart order once hunks have been split and shifted
// independently in each coordinate system.
func (s *hunkSet) byOrigLine(line int) *Hunk {
	for _, h := range s.items {
		if h.OrigStart <= line && line < h.origEnd() {
			return h
		}
	}
	return nil
}

// split divides h at relative offset r (0 < r < h.Lines) into a left
// half (kept as h, retaining identity/score/linemap) and a freshly
// inserted right half starting empty, per spec §4.1. Returns the right
// half, or h itself unsplit if r is out of (0, h.Lines).
func (s *hunkSet) split(h *Hunk, r int) *Hunk {
	if r <= 0 || r >= h.Lines {
		return h
	}
	right := &Hunk{
		FinalStart:    h.FinalStart + r,
		Lines:         h.Lines - r,
		OrigStart:     h.OrigStart + r,
		OrigPath:      h.OrigPath,
		FinalCommitID: h.FinalCommitID,
		OrigCommitID:  h.OrigCommitID,
	}
	h.Lines = r
	s.insert(right)
	return right
}

// shiftFinal adds delta to FinalStart for every hunk whose final range
// starts at or after line.
func (s *hunkSet) shiftFinal(line, delta int) {
	for _, h := range s.items {
		if h.FinalStart >= line {
			h.FinalStart += delta
		}
	}
	s.resort()
}

// shiftOrig adds delta to OrigStart for every hunk whose orig range
// starts at or after line.
func (s *hunkSet) shiftOrig(line, delta int) {
	for _, h := range s.items {
		if h.OrigStart >= line {
			h.OrigStart += delta
		}
	}
}

func (s *hunkSet) resort() {
	sort.SliceStable(s.items, func(i, j int) bool { return s.items[i].FinalStart < s.items[j].FinalStart })
}

func (s *hunkSet) all() []*Hunk { return s.items }
