// Package difftree computes the set of changed paths between two trees
// and, optionally, detects renames among them. It realizes spec §6's
// "tree_to_tree" / "find_similar" collaborator and is grounded on
// antgroup-hugescm/modules/zeta/object/change.go's Change/ChangeEntry
// vocabulary and the DetectRenames/OnlyExactRenames options wired
// through object.DiffTreeWithOptions in antgroup-hugescm/pkg/zeta/show.go.
package difftree

import (
	"context"
	"sort"
	"strings"

	"github.com/zetaline/blameline/pkg/object"
	"github.com/zetaline/blameline/pkg/plumbing"
)

// Action classifies a Change.
type Action int8

const (
	Modify Action = iota
	Insert
	Delete
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "modify"
	}
}

// Change describes one path's transition between two trees. For an
// Insert, OldPath is empty; for a Delete, NewPath is empty; for a
// rename (a Modify with OldPath != NewPath), both are set.
type Change struct {
	Action  Action
	OldPath string
	NewPath string
	OldHash plumbing.Hash
	NewHash plumbing.Hash
}

// Options configures Diff.
type Options struct {
	// DetectRenames enables matching deletes against inserts by
	// content similarity, turning an (Insert, Delete) pair into a
	// renamed Modify. Corresponds to spec §6's TRACK_FILE_RENAMES.
	DetectRenames bool
	// OnlyExactRenames restricts rename detection to byte-identical
	// content; when false, near-renames are also matched by line
	// overlap (see SimilarityThreshold).
	OnlyExactRenames bool
	// SimilarityThreshold is the minimum fraction of shared lines
	// (0..1) for a near-rename match when OnlyExactRenames is false.
	// Zero defaults to 0.5.
	SimilarityThreshold float64
	// Pathspec restricts the diff to these new/old paths when
	// non-empty, mirroring the path-filtered request in spec §4.6
	// ("configure diff with ... the current path set").
	Pathspec map[string]bool
}

// Diff returns the changes between oldTree and newTree. oldTree may be
// nil, representing a root commit's empty parent.
func Diff(ctx context.Context, b object.Backend, oldTree, newTree *object.Tree, opts *Options) ([]Change, error) {
	if opts == nil {
		opts = &Options{}
	}
	oldEntries := treeEntries(oldTree)
	newEntries := treeEntries(newTree)

	var deletes, inserts []Change
	var changes []Change

	for name, oe := range oldEntries {
		if !pathAllowed(opts.Pathspec, name) {
			continue
		}
		ne, ok := newEntries[name]
		switch {
		case !ok:
			deletes = append(deletes, Change{Action: Delete, OldPath: name, OldHash: oe})
		case ne != oe:
			changes = append(changes, Change{Action: Modify, OldPath: name, NewPath: name, OldHash: oe, NewHash: ne})
		}
	}
	for name, ne := range newEntries {
		if !pathAllowed(opts.Pathspec, name) {
			continue
		}
		if _, ok := oldEntries[name]; !ok {
			inserts = append(inserts, Change{Action: Insert, NewPath: name, NewHash: ne})
		}
	}

	if opts.DetectRenames {
		var err error
		inserts, deletes, err = matchRenames(ctx, b, inserts, deletes, opts, &changes)
		if err != nil {
			return nil, err
		}
	}

	changes = append(changes, inserts...)
	changes = append(changes, deletes...)
	sort.Slice(changes, func(i, j int) bool { return changePath(changes[i]) < changePath(changes[j]) })
	return changes, nil
}

func changePath(c Change) string {
	if c.NewPath != "" {
		return c.NewPath
	}
	return c.OldPath
}

func treeEntries(t *object.Tree) map[string]plumbing.Hash {
	m := make(map[string]plumbing.Hash)
	if t == nil {
		return m
	}
	for _, e := range t.Entries {
		m[e.Name] = e.Hash
	}
	return m
}

func pathAllowed(pathspec map[string]bool, name string) bool {
	if len(pathspec) == 0 {
		return true
	}
	return pathspec[name]
}

// matchRenames pairs deletes with inserts, promoting exact content
// matches unconditionally and, unless OnlyExactRenames, near-matches
// above SimilarityThreshold. Matched pairs are appended to changes and
// removed from the returned insert/delete slices.
func matchRenames(ctx context.Context, b object.Backend, inserts, deletes []Change, opts *Options, changes *[]Change) ([]Change, []Change, error) {
	usedInsert := make([]bool, len(inserts))

	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.5
	}

	var remainingDeletes []Change
	for _, del := range deletes {
		bestIdx := -1
		bestScore := 0.0
		for i, ins := range inserts {
			if usedInsert[i] {
				continue
			}
			if del.OldHash == ins.NewHash {
				bestIdx = i
				bestScore = 1.0
				break
			}
			if opts.OnlyExactRenames {
				continue
			}
			score, err := similarity(ctx, b, del.OldHash, ins.NewHash)
			if err != nil {
				return nil, nil, err
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx >= 0 && (bestScore == 1.0 || (!opts.OnlyExactRenames && bestScore >= threshold)) {
			ins := inserts[bestIdx]
			usedInsert[bestIdx] = true
			*changes = append(*changes, Change{
				Action:  Modify,
				OldPath: del.OldPath,
				NewPath: ins.NewPath,
				OldHash: del.OldHash,
				NewHash: ins.NewHash,
			})
			continue
		}
		remainingDeletes = append(remainingDeletes, del)
	}

	var remainingInserts []Change
	for i, ins := range inserts {
		if !usedInsert[i] {
			remainingInserts = append(remainingInserts, ins)
		}
	}
	return remainingInserts, remainingDeletes, nil
}

// similarity returns the fraction of lines shared between the blobs at
// a and b, out of the larger line count. A cheap line-set overlap
// ratio is enough to decide "is this the same file, renamed" without
// pulling in a full diff for every insert/delete pair.
func similarity(ctx context.Context, b object.Backend, a, c plumbing.Hash) (float64, error) {
	ba, err := b.Blob(ctx, a)
	if err != nil {
		return 0, err
	}
	bc, err := b.Blob(ctx, c)
	if err != nil {
		return 0, err
	}
	linesA := splitLines(string(ba.Data))
	linesC := splitLines(string(bc.Data))
	if len(linesA) == 0 && len(linesC) == 0 {
		return 1.0, nil
	}
	counts := make(map[string]int, len(linesA))
	for _, l := range linesA {
		counts[l]++
	}
	shared := 0
	for _, l := range linesC {
		if counts[l] > 0 {
			counts[l]--
			shared++
		}
	}
	denom := max(len(linesA), len(linesC))
	if denom == 0 {
		return 1.0, nil
	}
	return float64(shared) / float64(denom), nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
