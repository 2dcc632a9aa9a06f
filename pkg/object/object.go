// Package object implements the minimal content-addressed object store
// that the blame engine treats as an external collaborator: commit,
// tree and blob lookup, parent enumeration and path-to-blob resolution.
//
// It intentionally does not implement packing, compression or on-disk
// storage — those are orthogonal to blame and are left to whatever
// real object store embeds this package.
package object

import (
	"context"
	"errors"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// Type enumerates the object kinds this store knows about.
type Type int8

const (
	InvalidObject Type = iota
	CommitObject
	TreeObject
	BlobObject
)

func (t Type) String() string {
	switch t {
	case CommitObject:
		return "commit"
	case TreeObject:
		return "tree"
	case BlobObject:
		return "blob"
	default:
		return "invalid"
	}
}

// ErrUnsupportedObject names the error for an object decoded as the
// wrong type. MemoryBackend never returns it: it keeps commits, trees
// and blobs in separate maps, so asking for a tree at an oid that
// stores a blob reports NoSuchObject.
var ErrUnsupportedObject = errors.New("object: unsupported object type")

// Backend is the object-store contract the blame engine relies on. It
// corresponds to spec §6's "lookup_commit / commit_tree / blob_content /
// tree_entry_by_path" capability list.
type Backend interface {
	// Commit fetches and decodes the commit stored at oid.
	Commit(ctx context.Context, oid plumbing.Hash) (*Commit, error)
	// Tree fetches and decodes the tree stored at oid.
	Tree(ctx context.Context, oid plumbing.Hash) (*Tree, error)
	// Blob fetches the blob stored at oid.
	Blob(ctx context.Context, oid plumbing.Hash) (*Blob, error)
}
