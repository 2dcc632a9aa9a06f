package blame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetaline/blameline/pkg/object"
	"github.com/zetaline/blameline/pkg/plumbing"
)

func mkCommit(t *testing.T, b *object.MemoryBackend, files map[string][]byte, parents []plumbing.Hash, when time.Time) plumbing.Hash {
	t.Helper()
	tree := b.PutFileTree(files)
	c := &object.Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    object.Signature{Name: "tester", Email: "tester@example.com", When: when},
		Committer: object.Signature{Name: "tester", Email: "tester@example.com", When: when},
		Message:   "commit",
	}
	return b.PutCommit(c)
}

func TestBlameFileTwoCommits(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, base)
	x2 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\nbye!\n")}, []plumbing.Hash{x1}, base.Add(time.Hour))

	res, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x2})
	require.NoError(t, err)
	require.Equal(t, 2, res.HunkCount())

	h0 := res.HunkByIndex(0)
	assert.Equal(t, 1, h0.FinalStart)
	assert.Equal(t, 1, h0.Lines)
	assert.Equal(t, x1, h0.FinalCommitID)

	h1 := res.HunkByIndex(1)
	assert.Equal(t, 2, h1.FinalStart)
	assert.Equal(t, 1, h1.Lines)
	assert.Equal(t, x2, h1.FinalCommitID)
}

func TestBlameFileFourBlocks(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	eContent := "E1\nE2\nE3\nE4\n"
	commitE := mkCommit(t, b, map[string][]byte{"file.txt": []byte(eContent)}, nil, base)

	blankContent := eContent + "\n"
	commitBlank := mkCommit(t, b, map[string][]byte{"file.txt": []byte(blankContent)}, []plumbing.Hash{commitE}, base.Add(time.Hour))

	bContent := blankContent + "B1\nB2\nB3\nB4\n\n"
	commitB := mkCommit(t, b, map[string][]byte{"file.txt": []byte(bContent)}, []plumbing.Hash{commitBlank}, base.Add(2*time.Hour))

	cContent := bContent + "C1\nC2\nC3\nC4\n\n"
	commitC := mkCommit(t, b, map[string][]byte{"file.txt": []byte(cContent)}, []plumbing.Hash{commitB}, base.Add(3*time.Hour))

	res, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: commitC})
	require.NoError(t, err)

	// Non-overlap and coverage invariants (spec §8) over every computed
	// result, regardless of exact block boundaries.
	var prevEnd int
	for i := 0; i < res.HunkCount(); i++ {
		h := res.HunkByIndex(i)
		assert.Equal(t, prevEnd+1, h.FinalStart, "hunk %d must start where the previous one ended", i)
		assert.False(t, h.FinalCommitID.IsZero(), "every claimed hunk must have a commit id")
		prevEnd = h.FinalStart + h.Lines - 1
	}
	assert.Equal(t, res.NumLines, prevEnd)

	assert.Equal(t, commitE, res.HunkByLine(1).FinalCommitID)
	assert.Equal(t, commitBlank, res.HunkByLine(5).FinalCommitID)
	assert.Equal(t, commitB, res.HunkByLine(6).FinalCommitID)
	assert.Equal(t, commitC, res.HunkByLine(11).FinalCommitID)
}

func TestBlameFileRename(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	x1 := mkCommit(t, b, map[string][]byte{"a.txt": []byte("one\ntwo\n")}, nil, base)
	r := mkCommit(t, b, map[string][]byte{"b.txt": []byte("one\ntwo\n")}, []plumbing.Hash{x1}, base.Add(time.Hour))

	res, err := BlameFile(ctx, b, "b.txt", Options{NewestCommit: r, Flags: TrackFileRenames})
	require.NoError(t, err)
	require.Equal(t, 1, res.HunkCount())

	h := res.HunkByIndex(0)
	assert.Equal(t, x1, h.FinalCommitID, "renamed-but-unchanged lines stay attributed to the commit that introduced them")
	assert.Equal(t, "a.txt", h.OrigPath)
}

func TestBlameBufferAdditionAndDeletion(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, base)
	x2 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\nbye!\n")}, []plumbing.Hash{x1}, base.Add(time.Hour))

	ref, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x2})
	require.NoError(t, err)

	added, err := BlameBuffer(ref, []byte("hi\nFOO\nbye!\n"))
	require.NoError(t, err)
	require.Equal(t, 3, added.HunkCount())
	assert.Equal(t, x1, added.HunkByIndex(0).FinalCommitID)
	assert.True(t, added.HunkByIndex(1).FinalCommitID.IsZero(), "the inserted line is marked locally modified")
	assert.Equal(t, x2, added.HunkByIndex(2).FinalCommitID)

	deleted, err := BlameBuffer(ref, []byte("hi\n"))
	require.NoError(t, err)
	require.Equal(t, 1, deleted.HunkCount())
	assert.Equal(t, x1, deleted.HunkByIndex(0).FinalCommitID)
}

func TestBlameBufferIdempotence(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, base)
	x2 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\nbye!\n")}, []plumbing.Hash{x1}, base.Add(time.Hour))

	ref, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x2})
	require.NoError(t, err)

	same, err := BlameBuffer(ref, []byte("hi\nbye!\n"))
	require.NoError(t, err)
	require.Equal(t, ref.HunkCount(), same.HunkCount())
	for i := 0; i < ref.HunkCount(); i++ {
		assert.Equal(t, ref.HunkByIndex(i).FinalCommitID, same.HunkByIndex(i).FinalCommitID)
		assert.Equal(t, ref.HunkByIndex(i).FinalStart, same.HunkByIndex(i).FinalStart)
		assert.Equal(t, ref.HunkByIndex(i).Lines, same.HunkByIndex(i).Lines)
	}
}

func TestBlameFileBoundedWalk(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, base)
	x2 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\nbye!\n")}, []plumbing.Hash{x1}, base.Add(time.Hour))
	x3 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\nbye!\nthree\n")}, []plumbing.Hash{x2}, base.Add(2*time.Hour))

	res, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x3, OldestCommit: x2})
	require.NoError(t, err)
	require.Equal(t, 2, res.HunkCount(), "lines 1-2 stay one contiguous hunk once both are claimed to the boundary commit")

	// Lines introduced at or after x2 resolve normally; anything that
	// would otherwise require visiting x1 (hidden) is claimed to the
	// boundary commit x2 instead.
	assert.Equal(t, x2, res.HunkByLine(1).FinalCommitID)
	assert.Equal(t, x2, res.HunkByLine(2).FinalCommitID)
	assert.Equal(t, x3, res.HunkByLine(3).FinalCommitID)
}

func TestBlameFileEmptyFile(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	x1 := mkCommit(t, b, map[string][]byte{"empty.txt": []byte("")}, nil, time.Now().UTC().Truncate(0))

	res, err := BlameFile(ctx, b, "empty.txt", Options{NewestCommit: x1})
	require.NoError(t, err)
	assert.Equal(t, 0, res.NumLines)
	assert.Equal(t, 0, res.HunkCount())
}

func TestBlameFileInvalidArgument(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()

	_, err := BlameFile(ctx, b, "", Options{NewestCommit: plumbing.NewHash("ab")})
	require.Error(t, err)
	var be *BlameError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, InvalidArgument, be.Kind)
}

func TestBlameFileContextCanceled(t *testing.T) {
	b := object.NewMemoryBackend()
	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, time.Now().UTC().Truncate(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x1})
	require.Error(t, err)
	var be *BlameError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, Aborted, be.Kind)
}

func TestBlameFileStoreErrorAborts(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	when := time.Now().UTC().Truncate(0)

	missingParent := plumbing.NewHash("does-not-exist")
	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\nbye!\n")}, []plumbing.Hash{missingParent}, when)

	_, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x1})
	require.Error(t, err)
	var be *BlameError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, StoreError, be.Kind)
}

func TestBlameFileTrivialPolicyRejected(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, time.Now().UTC().Truncate(0))

	_, err := BlameFile(ctx, b, "file.txt", Options{NewestCommit: x1, Policy: Trivial})
	require.Error(t, err)
	var be *BlameError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, InvalidArgument, be.Kind)
}

func TestBlameFileNotFound(t *testing.T) {
	ctx := context.Background()
	b := object.NewMemoryBackend()
	x1 := mkCommit(t, b, map[string][]byte{"file.txt": []byte("hi\n")}, nil, time.Now().UTC().Truncate(0))

	_, err := BlameFile(ctx, b, "missing.txt", Options{NewestCommit: x1})
	require.Error(t, err)
	var be *BlameError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, NotFound, be.Kind)
}
