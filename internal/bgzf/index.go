package bgzf

import (
	"bufio"
	"encoding/binary"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

// section holds the (begin,end) virtual-offset pair for one sidecar section.
type section struct {
	Begin VirtualOffset `json:"begin"`
	End   VirtualOffset `json:"end"`
}

// Index is the sidecar index mapping section tags ("positions", "genes") to
// (beginVirtualOffset, endVirtualOffset) pairs. Tags never registered return
// UndefinedOffset for both ends.
type Index struct {
	sections map[string]section
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{sections: make(map[string]section)}
}

// Set registers the virtual-offset span for tag.
func (idx *Index) Set(tag string, begin, end VirtualOffset) {
	idx.sections[tag] = section{Begin: begin, End: end}
}

// Begin returns the begin virtual offset for tag, or UndefinedOffset if tag
// was never registered.
func (idx *Index) Begin(tag string) VirtualOffset {
	if s, ok := idx.sections[tag]; ok {
		return s.Begin
	}
	return UndefinedOffset
}

// End returns the end virtual offset for tag, or UndefinedOffset if tag was
// never registered.
func (idx *Index) End(tag string) VirtualOffset {
	if s, ok := idx.sections[tag]; ok {
		return s.End
	}
	return UndefinedOffset
}

// SaveJSON writes the index as JSON, the primary sidecar format: a tool
// invoking `vibe-vep stitch` reads this back to find each input's positions
// and genes sections.
func (idx *Index) SaveJSON(w io.Writer) error {
	out := make(map[string]section, len(idx.sections))
	for tag, s := range idx.sections {
		out[tag] = s
	}
	return gojson.NewEncoder(w).Encode(out)
}

// LoadJSON reads an index previously written by SaveJSON.
func LoadJSON(r io.Reader) (*Index, error) {
	var raw map[string]section
	if err := gojson.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	idx := NewIndex()
	for tag, s := range raw {
		idx.sections[tag] = s
	}
	return idx, nil
}

// SaveBinary writes a compact alternative encoding: a 4-byte section count
// followed by, per section, a 7-bit-length-prefixed UTF-8 tag and two 8-byte
// little-endian virtual offsets. Mirrors the length-prefixed string
// convention of Nirvana's jasix companion reader.
func (idx *Index) SaveBinary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(idx.sections)))
	if _, err := bw.Write(countBuf[:]); err != nil {
		return err
	}
	for tag, s := range idx.sections {
		if err := Write7BitEncodedInt(bw, len(tag)); err != nil {
			return err
		}
		if _, err := bw.WriteString(tag); err != nil {
			return err
		}
		var offBuf [16]byte
		binary.LittleEndian.PutUint64(offBuf[0:8], uint64(s.Begin))
		binary.LittleEndian.PutUint64(offBuf[8:16], uint64(s.End))
		if _, err := bw.Write(offBuf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadBinary reads an index previously written by SaveBinary.
func LoadBinary(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	var countBuf [4]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading jasix section count")
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	idx := NewIndex()
	for i := uint32(0); i < count; i++ {
		tagLen, err := Read7BitEncodedInt(br)
		if err != nil {
			return nil, err
		}
		tagBytes := make([]byte, tagLen)
		if _, err := io.ReadFull(br, tagBytes); err != nil {
			return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading jasix section tag")
		}

		var offBuf [16]byte
		if _, err := io.ReadFull(br, offBuf[:]); err != nil {
			return nil, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading jasix section offsets")
		}
		begin := VirtualOffset(binary.LittleEndian.Uint64(offBuf[0:8]))
		end := VirtualOffset(binary.LittleEndian.Uint64(offBuf[8:16]))
		idx.sections[string(tagBytes)] = section{Begin: begin, End: end}
	}
	return idx, nil
}

