package blame

import (
	"bytes"

	"github.com/zetaline/blameline/pkg/plumbing"
	"github.com/zetaline/blameline/pkg/textdiff"
)

// passingMatcher implements the blame-passing algorithm of spec
// §4.5.1: score every unclaimed hunk against each parent diff and
// claim it to the current commit only when it matched in all of them.
// This is the only matcher this engine implements; the spec permits a
// "trivial" fallback for merge-naive implementations, which this
// package intentionally skips (passing generalizes to the merge case
// the trivial policy special-cases).
type passingMatcher struct {
	unclaimed *hunkSet
	claimed   *hunkSet
	target    *lineIndex
}

func newPassingMatcher(unclaimed, claimed *hunkSet, target *lineIndex) *passingMatcher {
	return &passingMatcher{unclaimed: unclaimed, claimed: claimed, target: target}
}

// commitStart resets per-commit scratch state and restores each
// hunk's orig_start from its linemap entry for commit, if the hunk
// carried one forward from a previous parent visit.
func (m *passingMatcher) commitStart(commit plumbing.Hash) {
	for _, h := range m.unclaimed.all() {
		h.CurrentScore = 0
		h.ScoredPath = ""
		if start, ok := h.linemapGet(commit); ok {
			h.OrigStart = start
		}
	}
}

// processParentDiff runs the per-diff-hunk and per-diff-line steps of
// §4.5.1 against one parent's deltas.
func (m *passingMatcher) processParentDiff(deltas []fileDelta) {
	for _, delta := range deltas {
		if delta.OldPath != "" && delta.OldPath != delta.NewPath {
			m.applyRename(delta.NewPath, delta.OldPath)
		}
		for _, dh := range delta.Hunks {
			m.processDiffHunk(delta, dh)
		}
	}
}

// applyRename updates every unclaimed hunk currently tracked under
// newPath to oldPath, the name the tracked file had in the parent
// being examined. A pure rename (no content change) produces no diff
// hunks to score against, so without this the hunk would claim under
// the wrong historical path even though the path set itself (C3)
// correctly follows the rename.
func (m *passingMatcher) applyRename(newPath, oldPath string) {
	for _, h := range m.unclaimed.all() {
		if h.OrigPath == newPath {
			h.OrigPath = oldPath
		}
	}
}

func (m *passingMatcher) processDiffHunk(delta fileDelta, dh textdiff.Hunk) {
	wedge := dh.OldStart
	if dh.OldLines == 0 {
		wedge = dh.NewStart
	}

	// Per-diff, per-hunk: locate and split the candidate straddling wedge.
	if h := m.unclaimed.byOrigLine(wedge); h != nil {
		if wedge > h.OrigStart {
			m.unclaimed.split(h, wedge-h.OrigStart)
		}
	}
	currentDiffLine := wedge

	var scored *Hunk
	for _, line := range dh.Lines {
		if line.Origin != textdiff.Addition {
			continue
		}
		if h := m.unclaimed.byOrigLine(currentDiffLine); h != nil && h.OrigStart == currentDiffLine {
			if bytes.Equal(m.target.rawLine(h.FinalStart), []byte(line.Content)) {
				h.CurrentScore++
				h.ScoredPath = delta.OldPath
				scored = h
			}
		}
		currentDiffLine++
	}

	// Per-diff, per-hunk end.
	if scored != nil && currentDiffLine > scored.OrigStart {
		m.unclaimed.split(scored, currentDiffLine-scored.OrigStart)
	}
	delta2 := dh.OldLines - dh.NewLines
	if delta2 != 0 {
		for _, h := range m.unclaimed.all() {
			if h.OrigStart > currentDiffLine {
				h.OrigStart += delta2
			}
		}
	}
}

// commitEnd claims every hunk whose current_score meets parentCount to
// commit (per spec §4.5.1's "score ≥ parentcount" rule); the rest
// carry their orig_start forward into parent's linemap entry.
//
// Multi-parent (merge) commits are diffed against their first parent
// only — spec §1's Non-goals explicitly permit "falling back to
// treating one parent only" for merge-commit attribution — so
// parentCount here is always 0 (root) or 1 (everything else), and a
// root commit's score ≥ 0 is trivially true for every hunk: it claims
// them all, which is exactly the "root commits are an end-of-walk
// terminator" rule.
func (m *passingMatcher) commitEnd(commit plumbing.Hash, parentCount int, parent plumbing.Hash) {
	for _, h := range append([]*Hunk(nil), m.unclaimed.all()...) {
		if h.CurrentScore >= parentCount {
			m.claim(h, commit)
			continue
		}
		h.linemapSet(parent, h.OrigStart)
	}
}

// claim moves h from unclaimed to claimed, attributing it to commit. A
// hunk claimed without ever scoring (the root-commit terminator case,
// where score ≥ parentCount is trivially true at parentCount == 0)
// keeps whatever OrigPath it already carried rather than being
// overwritten with an empty ScoredPath.
func (m *passingMatcher) claim(h *Hunk, commit plumbing.Hash) {
	h.FinalCommitID = commit
	h.OrigCommitID = commit
	if h.ScoredPath != "" {
		h.OrigPath = h.ScoredPath
	}
	m.unclaimed.remove(h)
	m.claimed.insert(h)
}

// claimRemaining attributes every still-unclaimed hunk to commit, used
// on walk exhaustion (spec §4.4). Root and boundary commits claim their
// leftovers through commitEnd with parentCount 0 instead. A hunk keeps
// the OrigPath it already carries; path is used only when it has none.
func (m *passingMatcher) claimRemaining(commit plumbing.Hash, path string) {
	for _, h := range append([]*Hunk(nil), m.unclaimed.all()...) {
		h.FinalCommitID = commit
		h.OrigCommitID = commit
		if h.OrigPath == "" {
			h.OrigPath = path
		}
		m.unclaimed.remove(h)
		m.claimed.insert(h)
	}
}
