package object

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// MemoryBackend is an in-memory Backend. It exists for tests and for
// small embedders that want to drive the blame engine without standing
// up a full on-disk store; it is not a persistence layer (spec's
// Non-goals exclude persisting *blame results*, not the object graph a
// VCS must keep in the first place).
type MemoryBackend struct {
	mu      sync.RWMutex
	commits map[plumbing.Hash]*Commit
	trees   map[plumbing.Hash]*Tree
	blobs   map[plumbing.Hash]*Blob
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		commits: make(map[plumbing.Hash]*Commit),
		trees:   make(map[plumbing.Hash]*Tree),
		blobs:   make(map[plumbing.Hash]*Blob),
	}
}

func (m *MemoryBackend) Commit(_ context.Context, oid plumbing.Hash) (*Commit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.commits[oid]
	if !ok {
		return nil, plumbing.NoSuchObject(oid)
	}
	return c, nil
}

func (m *MemoryBackend) Tree(_ context.Context, oid plumbing.Hash) (*Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trees[oid]
	if !ok {
		return nil, plumbing.NoSuchObject(oid)
	}
	return t, nil
}

func (m *MemoryBackend) Blob(_ context.Context, oid plumbing.Hash) (*Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[oid]
	if !ok {
		return nil, plumbing.NoSuchObject(oid)
	}
	return b, nil
}

// PutBlob stores data and returns its content address.
func (m *MemoryBackend) PutBlob(data []byte) plumbing.Hash {
	oid := plumbing.HashOf("blob", data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[oid] = &Blob{Hash: oid, Data: data}
	return oid
}

// PutTree stores a tree built from entries and returns its content
// address. Entries are sorted by name before hashing so the same file
// set always hashes the same way regardless of insertion order.
func (m *MemoryBackend) PutTree(entries []TreeEntry) plumbing.Hash {
	sorted := append([]TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	var key []byte
	for _, e := range sorted {
		key = append(key, []byte(fmt.Sprintf("%d:%s:%s\n", e.Mode, e.Name, e.Hash))...)
	}
	oid := plumbing.HashOf("tree", key)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees[oid] = &Tree{Hash: oid, Entries: sorted, b: m}
	return oid
}

// PutFileTree is a convenience for tests: it builds a single flat tree
// from a path->content map, writing the blobs along the way.
func (m *MemoryBackend) PutFileTree(files map[string][]byte) plumbing.Hash {
	entries := make([]TreeEntry, 0, len(files))
	for path, data := range files {
		entries = append(entries, TreeEntry{Name: path, Mode: ModeFile, Hash: m.PutBlob(data)})
	}
	return m.PutTree(entries)
}

// PutCommit stores a commit, computing and assigning its hash from its
// tree, parents and signatures. The stored commit carries a reference
// back to m so Commit.Root/File/MakeParents resolve directly.
func (m *MemoryBackend) PutCommit(c *Commit) plumbing.Hash {
	var key []byte
	key = append(key, []byte(fmt.Sprintf("tree:%s\n", c.Tree))...)
	for _, p := range c.Parents {
		key = append(key, []byte(fmt.Sprintf("parent:%s\n", p))...)
	}
	key = append(key, []byte(fmt.Sprintf("author:%s <%s> %d\n", c.Author.Name, c.Author.Email, c.Author.When.UnixNano()))...)
	key = append(key, []byte(fmt.Sprintf("committer:%s <%s> %d\n", c.Committer.Name, c.Committer.Email, c.Committer.When.UnixNano()))...)
	key = append(key, []byte(c.Message)...)

	oid := plumbing.HashOf("commit", key)
	c.Hash = oid
	c.b = m

	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits[oid] = c
	return oid
}
