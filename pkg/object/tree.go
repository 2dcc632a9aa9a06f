package object

import (
	"sort"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// TreeEntry is one file recorded in a Tree, named by its full
// "/"-separated path. Trees in this package are flat path->blob maps
// rather than a nested directory structure: blame only ever needs
// tree_entry_by_path / tree-to-tree diff for a single tracked path (and
// its renamed predecessors), never a full filesystem walk, so a nested
// hierarchy buys nothing here.
type TreeEntry struct {
	Name string
	Mode FileMode
	Hash plumbing.Hash
}

// FileMode distinguishes regular files from directories. Directories
// never appear as TreeEntry.Mode in this flat model; it is kept so
// difftree and the rename heuristics can still reason about "is this a
// file" without a separate boolean.
type FileMode uint8

const (
	ModeFile FileMode = iota
	ModeDir
)

// Tree is a directory snapshot: an ordered list of named entries.
type Tree struct {
	Hash    plumbing.Hash
	Entries []TreeEntry

	b Backend
}

func (t *Tree) entry(name string) (TreeEntry, bool) {
	i := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Name >= name })
	if i < len(t.Entries) && t.Entries[i].Name == name {
		return t.Entries[i], true
	}
	return TreeEntry{}, false
}

// File resolves path to a File. It returns a plumbing.NoSuchObject
// error if the path is absent from the tree.
func (t *Tree) File(path string) (*File, error) {
	e, ok := t.entry(path)
	if !ok || e.Mode != ModeFile {
		return nil, plumbing.NoSuchObject(t.Hash)
	}
	return &File{Path: path, Hash: e.Hash, b: t.b}, nil
}

// File is a path resolved within a specific tree: a name plus the blob
// hash backing its content.
type File struct {
	Path string
	Hash plumbing.Hash

	b Backend
}
