package difftree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetaline/blameline/pkg/object"
)

func tree(t *testing.T, b *object.MemoryBackend, files map[string][]byte) *object.Tree {
	t.Helper()
	ctx := context.Background()
	oid := b.PutFileTree(files)
	tr, err := b.Tree(ctx, oid)
	require.NoError(t, err)
	return tr
}

func TestDiffInsertAndDelete(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()

	oldTree := tree(t, b, map[string][]byte{"a.txt": []byte("1")})
	newTree := tree(t, b, map[string][]byte{"b.txt": []byte("2")})

	changes, err := Diff(ctx, b, oldTree, newTree, nil)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, Delete, changes[0].Action)
	assert.Equal(t, "a.txt", changes[0].OldPath)
	assert.Equal(t, Insert, changes[1].Action)
	assert.Equal(t, "b.txt", changes[1].NewPath)
}

func TestDiffExactRename(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()

	oldTree := tree(t, b, map[string][]byte{"a.txt": []byte("same content")})
	newTree := tree(t, b, map[string][]byte{"b.txt": []byte("same content")})

	changes, err := Diff(ctx, b, oldTree, newTree, &Options{DetectRenames: true, OnlyExactRenames: true})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Modify, changes[0].Action)
	assert.Equal(t, "a.txt", changes[0].OldPath)
	assert.Equal(t, "b.txt", changes[0].NewPath)
}

func TestDiffNearRenameBySimilarity(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()

	oldTree := tree(t, b, map[string][]byte{"a.txt": []byte("line1\nline2\nline3\nline4\n")})
	newTree := tree(t, b, map[string][]byte{"b.txt": []byte("line1\nline2\nline3\nchanged\n")})

	changes, err := Diff(ctx, b, oldTree, newTree, &Options{DetectRenames: true})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Modify, changes[0].Action)
	assert.Equal(t, "a.txt", changes[0].OldPath)
	assert.Equal(t, "b.txt", changes[0].NewPath)
}

func TestDiffPathspecFilter(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()

	oldTree := tree(t, b, map[string][]byte{"a.txt": []byte("1"), "b.txt": []byte("2")})
	newTree := tree(t, b, map[string][]byte{"a.txt": []byte("1-changed"), "b.txt": []byte("2-changed")})

	changes, err := Diff(ctx, b, oldTree, newTree, &Options{Pathspec: map[string]bool{"a.txt": true}})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "a.txt", changes[0].NewPath)
}
