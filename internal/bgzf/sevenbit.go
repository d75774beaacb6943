package bgzf

import (
	"io"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

// maxSevenBitBytes bounds a 7-bit encoded int32: 5 groups of 7 bits cover 35
// bits, more than enough for a 32-bit value, so a 6th continuation byte can
// only mean a corrupt stream.
const maxSevenBitBytes = 5

// Read7BitEncodedInt decodes a .NET-style 7-bit encoded integer: each byte
// contributes its low 7 bits to the result, high bit set means "more bytes
// follow". Used by the binary jasix index reader for its length-prefixed
// section-tag strings. Returns OptInt7bit if the value does not terminate
// within its advertised span.
func Read7BitEncodedInt(r io.ByteReader) (int, error) {
	var result int
	var shift uint
	for i := 0; i < maxSevenBitBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, coreerr.Wrap(coreerr.OptInt7bit, err, "reading 7-bit encoded int")
		}
		result |= int(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, coreerr.New(coreerr.OptInt7bit, "7-bit encoded int did not terminate within its advertised span")
}

// Write7BitEncodedInt encodes v in the same format Read7BitEncodedInt reads.
func Write7BitEncodedInt(w io.ByteWriter, v int) error {
	u := uint(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
		if u == 0 {
			return nil
		}
	}
}
