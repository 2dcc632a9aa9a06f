package blame

import "bytes"

// lineIndex records the byte offset of every line of a blob, so the
// matcher can fetch raw_line(n) for content comparison without
// re-splitting the blob on every lookup (spec §4.2, C2).
type lineIndex struct {
	data   []byte
	offset []int // offset[k] = start of line k+1; offset[0] = 0
	count  int
}

// newLineIndex builds the index over data. A trailing newline produces
// no extra empty line; a final line without one still counts, per
// spec §4.2 ("plus one if the blob does not end in newline").
func newLineIndex(data []byte) *lineIndex {
	idx := &lineIndex{data: data}
	idx.offset = append(idx.offset, 0)
	for {
		start := idx.offset[len(idx.offset)-1]
		if start >= len(data) {
			break
		}
		rel := bytes.IndexByte(data[start:], '\n')
		if rel < 0 {
			idx.offset = append(idx.offset, len(data))
			break
		}
		idx.offset = append(idx.offset, start+rel+1)
	}
	idx.count = len(idx.offset) - 1
	return idx
}

// numLines returns the number of lines in the indexed blob.
func (idx *lineIndex) numLines() int { return idx.count }

// rawLine returns line n (1-based) without its trailing newline.
func (idx *lineIndex) rawLine(n int) []byte {
	if n < 1 || n > idx.count {
		return nil
	}
	start := idx.offset[n-1]
	end := idx.offset[n]
	line := idx.data[start:end]
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line
}
