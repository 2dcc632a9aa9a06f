package object

import (
	"context"

	"github.com/zetaline/blameline/pkg/plumbing"
)

// Blob is raw file content addressed by its hash.
type Blob struct {
	Hash plumbing.Hash
	Data []byte
}

// Contents reads and returns the full text of f.
func (f *File) Contents(ctx context.Context) (string, error) {
	blob, err := f.b.Blob(ctx, f.Hash)
	if err != nil {
		return "", err
	}
	return string(blob.Data), nil
}
