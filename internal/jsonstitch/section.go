package jsonstitch

import (
	"io"

	"github.com/inodb/vibe-vep/internal/bgzf"
)

// sectionReader decompresses successive BGZF blocks starting at a given
// virtual offset, discarding the first blockOffset.WithinBlock() bytes of
// the first block's content so a caller reading from a mid-block section
// start sees only that section's bytes.
type sectionReader struct {
	br      *bgzf.BlockReader
	pending []byte
	skipped bool
	skip    uint16
}

func newSectionReader(br *bgzf.BlockReader, skip uint16) *sectionReader {
	return &sectionReader{br: br, skip: skip}
}

func (r *sectionReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		b, err := r.br.NextBlock()
		if err != nil {
			return 0, err
		}
		data, err := b.Decompress()
		if err != nil {
			return 0, err
		}
		if !r.skipped {
			if int(r.skip) < len(data) {
				data = data[r.skip:]
			} else {
				data = nil
			}
			r.skipped = true
		}
		r.pending = data
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

var _ io.Reader = (*sectionReader)(nil)
