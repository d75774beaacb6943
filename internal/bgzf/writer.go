package bgzf

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// MaxBlockPayload is the largest uncompressed payload permitted in a single
// BGZF block. Mirrors the conventional BAM/VCF.gz block-size ceiling so a
// worst-case incompressible block still fits BSIZE's 16-bit field.
const MaxBlockPayload = 65280

// BlockWriter emits a BGZF stream one block at a time. Each call to
// WriteBlock is an independent gzip member; callers control chunking by
// choosing how much to pass per call (up to MaxBlockPayload).
type BlockWriter struct {
	w   io.Writer
	off int64
}

// NewBlockWriter wraps w.
func NewBlockWriter(w io.Writer) *BlockWriter {
	return &BlockWriter{w: w}
}

// Offset returns the file offset the next WriteBlock call will start at.
func (bw *BlockWriter) Offset() int64 {
	return bw.off
}

// WriteBlock compresses payload into a single BGZF member and writes it,
// returning the virtual offset of the block's start.
func (bw *BlockWriter) WriteBlock(payload []byte) (VirtualOffset, error) {
	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err := fw.Write(payload); err != nil {
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}

	totalSize := fixedHeaderLen + bcSubfieldLen + compressed.Len() + trailerLen
	bsize := uint16(totalSize - 1)

	header := make([]byte, fixedHeaderLen+bcSubfieldLen)
	header[0], header[1], header[2] = gzipID1, gzipID2, gzipCM
	header[3] = flagExtra
	// bytes 4-7 (MTIME) left zero; byte 8 (XFL) left zero; byte 9 (OS) 0xff (unknown)
	header[9] = 0xff
	binary.LittleEndian.PutUint16(header[10:12], bcSubfieldLen)
	header[12], header[13] = 'B', 'C'
	binary.LittleEndian.PutUint16(header[14:16], 2)
	binary.LittleEndian.PutUint16(header[16:18], bsize)

	trailer := make([]byte, trailerLen)
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(payload)))

	start := bw.off
	for _, chunk := range [][]byte{header, compressed.Bytes(), trailer} {
		if _, err := bw.w.Write(chunk); err != nil {
			return 0, err
		}
	}
	bw.off += int64(totalSize)
	return PackVirtualOffset(start, 0), nil
}

// Close writes the canonical empty BGZF EOF marker.
func (bw *BlockWriter) Close() error {
	n, err := bw.w.Write(eofMarker)
	bw.off += int64(n)
	return err
}
