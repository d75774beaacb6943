package bgzf

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

const (
	gzipID1, gzipID2, gzipCM = 0x1f, 0x8b, 8
	flagExtra                = 0x04
	fixedHeaderLen            = 12 // ID1,ID2,CM,FLG,MTIME(4),XFL,OS,XLEN(2)
	trailerLen                = 8  // CRC32(4) + ISIZE(4)
	bcSubfieldLen             = 6  // SI1,SI2,SLEN(2),BSIZE(2)
)

// Block is one raw BGZF member as read from a stream: the complete header,
// extra field, compressed payload, and trailer, kept opaque so a pass-through
// copy never touches the deflate layer.
type Block struct {
	FileOffset       int64
	Raw              []byte // header + extra + compressed payload + trailer, verbatim
	CompressedSize   int    // BSIZE + 1: total on-disk size of this member
	UncompressedSize uint32 // ISIZE from the trailer
	CRC32            uint32

	payloadStart int // offset of the compressed payload within Raw
	payloadEnd   int
}

// EndOffset is the file offset one past this block, i.e. the start of the
// next block.
func (b *Block) EndOffset() int64 {
	return b.FileOffset + int64(b.CompressedSize)
}

// IsEOFMarker reports whether this block is the canonical empty BGZF EOF
// block (28 bytes, zero uncompressed content).
func (b *Block) IsEOFMarker() bool {
	return b.UncompressedSize == 0 && bytes.Equal(b.Raw, eofMarker)
}

// Decompress inflates the block's payload and verifies it against the
// trailer's CRC32 and ISIZE. A mismatch or a corrupt deflate stream yields a
// BgzfCorrupt error.
func (b *Block) Decompress() ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(b.Raw[b.payloadStart:b.payloadEnd]))
	defer fr.Close()

	data, err := io.ReadAll(fr)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "inflating bgzf block at offset %d", b.FileOffset)
	}
	if uint32(len(data)) != b.UncompressedSize {
		return nil, coreerr.New(coreerr.BgzfCorrupt, "bgzf block at offset %d: ISIZE says %d bytes, got %d", b.FileOffset, b.UncompressedSize, len(data))
	}
	if crc32.ChecksumIEEE(data) != b.CRC32 {
		return nil, coreerr.New(coreerr.BgzfCorrupt, "bgzf block at offset %d: CRC32 mismatch", b.FileOffset)
	}
	return data, nil
}

// eofMarker is the canonical 28-byte empty BGZF block every well-formed
// stream ends with.
var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff,
	0x06, 0x00, 0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

func findBCSubfieldBSize(extra []byte) (uint16, bool) {
	i := 0
	for i+4 <= len(extra) {
		si1, si2 := extra[i], extra[i+1]
		slen := int(binary.LittleEndian.Uint16(extra[i+2 : i+4]))
		if i+4+slen > len(extra) {
			return 0, false
		}
		if si1 == 'B' && si2 == 'C' && slen == 2 {
			return binary.LittleEndian.Uint16(extra[i+4 : i+6]), true
		}
		i += 4 + slen
	}
	return 0, false
}
