package blame

import (
	"github.com/zetaline/blameline/pkg/plumbing"
	"github.com/zetaline/blameline/pkg/textdiff"
)

// applyBuffer realizes C7: layer buffer on top of reference's claimed
// hunks, producing a fresh claimed set per spec §4.7. reference's
// hunks are untouched; the returned set holds clones.
func applyBuffer(reference *Result, buffer string) *hunkSet {
	claimed := newHunkSet()
	for _, h := range reference.claimed.all() {
		claimed.insert(h.clone())
	}

	diff := textdiff.Compute(reference.finalText, buffer)
	for _, dh := range diff.Hunks {
		applyBufferHunk(claimed, dh)
	}
	return claimed
}

func applyBufferHunk(claimed *hunkSet, dh textdiff.Hunk) {
	wedge := dh.OldStart
	if dh.OldLines == 0 {
		wedge = dh.NewStart
	}

	current := claimed.byFinalLine(wedge)
	if current == nil {
		// Wedge lands past every hunk (pure trailing append); fall back
		// to the last hunk so insertion still has an anchor.
		if claimed.Len() == 0 {
			return
		}
		current = claimed.At(claimed.Len() - 1)
	}
	if wedge > current.FinalStart {
		current = claimed.split(current, wedge-current.FinalStart)
	}
	currentDiffLine := wedge

	for _, line := range dh.Lines {
		switch line.Origin {
		case textdiff.Addition:
			if current.FinalCommitID.IsZero() && current.finalEnd()-1 <= currentDiffLine {
				current.Lines++
				claimed.shiftFinal(currentDiffLine+1, 1)
			} else {
				claimed.shiftFinal(currentDiffLine, 1)
				fresh := &Hunk{
					FinalStart:    currentDiffLine,
					Lines:         1,
					FinalCommitID: plumbing.ZeroHash,
					OrigCommitID:  plumbing.ZeroHash,
				}
				claimed.insert(fresh)
				current = fresh
			}
			currentDiffLine++
		case textdiff.Deletion:
			current.Lines--
			if current.Lines <= 0 {
				next := claimed.byFinalLine(current.FinalStart + 1)
				claimed.remove(current)
				if next != nil {
					current = next
				}
			}
			claimed.shiftFinal(currentDiffLine+1, -1)
		}
	}
}
