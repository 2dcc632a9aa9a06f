// Package textdiff is the text-diff engine the blame matcher treats as
// an external collaborator (spec §6's "blob_to_buffer" line-origin
// stream; tree-to-tree comparison lives in package difftree). It is built on
// github.com/sergi/go-diff/diffmatchpatch's line-mode encoding trick
// (DiffLinesToChars / DiffMain / DiffCharsToLines), the same technique
// used in theRebelliousNerd-codenerd/internal/diff/diff.go and
// JensRoland-blamebot/internal/format/diff.go.
//
// Unlike those two (which add surrounding context for human-readable
// display), Compute always runs with zero context lines: spec §4.4 and
// §4.6 require the diff driver to request "zero context lines" from
// the diff engine, since the matcher only cares about insertions and
// deletions, never unchanged context.
package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Origin classifies a line within a Hunk.
type Origin int8

const (
	Context Origin = iota
	Addition
	Deletion
)

// Line is one line of a Hunk, in file order.
type Line struct {
	Origin  Origin
	Content string
}

// Hunk is a contiguous run of added/deleted lines, anchored at its
// position in both the old and new text. With zero context (the only
// mode Compute produces), Lines never contains a Context entry — but
// the field exists so a future context-aware variant, or a caller
// replaying one hunk's lines, can use the same type.
type Hunk struct {
	OldStart int // 1-based position in the old text
	OldLines int // count of Deletion lines
	NewStart int // 1-based position in the new text
	NewLines int // count of Addition lines
	Lines    []Line
}

// Diff is the full set of hunks between two texts.
type Diff struct {
	Hunks []Hunk
}

// Compute diffs oldText against newText at line granularity and
// returns the zero-context hunks between them. Line content does not
// include the trailing newline.
func Compute(oldText, newText string) *Diff {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	return buildHunks(diffs)
}

func buildHunks(diffs []diffmatchpatch.Diff) *Diff {
	out := &Diff{}
	oldLine, newLine := 0, 0
	var cur *Hunk

	closeHunk := func() {
		if cur != nil {
			out.Hunks = append(out.Hunks, *cur)
			cur = nil
		}
	}

	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			closeHunk()
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &Hunk{OldStart: oldLine + 1, NewStart: newLine + 1}
			}
			for _, l := range lines {
				cur.Lines = append(cur.Lines, Line{Origin: Deletion, Content: l})
				cur.OldLines++
				oldLine++
			}
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &Hunk{OldStart: oldLine + 1, NewStart: newLine + 1}
			}
			for _, l := range lines {
				cur.Lines = append(cur.Lines, Line{Origin: Addition, Content: l})
				cur.NewLines++
				newLine++
			}
		}
	}
	closeHunk()
	return out
}

// splitLines splits text on "\n", dropping the single trailing empty
// element a newline-terminated string produces. This mirrors the
// contentLines helper in antgroup-hugescm/pkg/zeta/blame.go.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
