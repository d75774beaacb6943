package bgzf

import (
	"encoding/binary"
	"io"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

// BlockReader reads successive raw BGZF blocks from a seekable stream. It
// never inflates a block's payload itself; callers that need the content
// call Block.Decompress.
type BlockReader struct {
	r   io.ReadSeeker
	off int64
}

// NewBlockReader wraps r, starting at its current position.
func NewBlockReader(r io.ReadSeeker) (*BlockReader, error) {
	off, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &BlockReader{r: r, off: off}, nil
}

// Offset returns the current file offset: the start of the block that will
// be returned by the next call to NextBlock.
func (br *BlockReader) Offset() int64 {
	return br.off
}

// Seek repositions the reader at the given file offset, which must be the
// start of a BGZF block.
func (br *BlockReader) Seek(fileOffset int64) error {
	if _, err := br.r.Seek(fileOffset, io.SeekStart); err != nil {
		return err
	}
	br.off = fileOffset
	return nil
}

// NextBlock reads the next raw block and advances the reader past it.
// Returns io.EOF when the stream is exhausted with nothing left to read.
func (br *BlockReader) NextBlock() (*Block, error) {
	start := br.off
	fixed := make([]byte, fixedHeaderLen)
	n, err := io.ReadFull(br.r, fixed)
	if n == 0 && err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading bgzf header at offset %d", start)
	}

	if fixed[0] != gzipID1 || fixed[1] != gzipID2 || fixed[2] != gzipCM {
		return nil, coreerr.New(coreerr.BgzfCorrupt, "bad gzip magic at offset %d", start)
	}
	if fixed[3]&flagExtra == 0 {
		return nil, coreerr.New(coreerr.BgzfCorrupt, "bgzf block at offset %d has no FEXTRA field", start)
	}

	xlen := int(binary.LittleEndian.Uint16(fixed[10:12]))
	extra := make([]byte, xlen)
	if _, err := io.ReadFull(br.r, extra); err != nil {
		return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading bgzf extra field at offset %d", start)
	}

	bsize, ok := findBCSubfieldBSize(extra)
	if !ok {
		return nil, coreerr.New(coreerr.BgzfCorrupt, "bgzf block at offset %d missing BC subfield", start)
	}

	totalSize := int(bsize) + 1
	headerLen := fixedHeaderLen + xlen
	payloadLen := totalSize - headerLen - trailerLen
	if payloadLen < 0 {
		return nil, coreerr.New(coreerr.BgzfCorrupt, "bgzf block at offset %d has an impossible BSIZE", start)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(br.r, payload); err != nil {
		return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading bgzf payload at offset %d", start)
	}

	trailer := make([]byte, trailerLen)
	if _, err := io.ReadFull(br.r, trailer); err != nil {
		return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading bgzf trailer at offset %d", start)
	}

	raw := make([]byte, 0, totalSize)
	raw = append(raw, fixed...)
	raw = append(raw, extra...)
	raw = append(raw, payload...)
	raw = append(raw, trailer...)

	b := &Block{
		FileOffset:       start,
		Raw:              raw,
		CompressedSize:   totalSize,
		UncompressedSize: binary.LittleEndian.Uint32(trailer[4:8]),
		CRC32:            binary.LittleEndian.Uint32(trailer[0:4]),
		payloadStart:     headerLen,
		payloadEnd:       headerLen + payloadLen,
	}
	br.off += int64(totalSize)
	return b, nil
}

// WriteThrough copies a block's raw bytes verbatim to w, for pass-through
// splicing that never touches the deflate layer.
func WriteThrough(w io.Writer, b *Block) error {
	_, err := w.Write(b.Raw)
	return err
}
