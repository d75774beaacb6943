package jsonstitch

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-vep/internal/bgzf"
	"github.com/inodb/vibe-vep/internal/coreerr"
)

// positionsTag and genesTag are the sidecar index section names produced
// alongside the annotated JSON stream (spec.md §4.5).
const (
	positionsTag = "positions"
	genesTag     = "genes"
)

// commaYoke is the BGZF-compressed ",\n" block written between shards so the
// merged positions arrays stay valid JSON.
const commaYoke = ",\n"

// footer is the literal JSON suffix every annotated shard ends with.
const footer = "]}"

// Input is one shard to stitch: the BGZF-compressed annotated JSON stream
// and its sidecar jasix index stream.
type Input struct {
	JSON  io.ReadSeeker
	Jasix io.Reader
}

// Result reports what a Stitch call observed, for logging and tests.
type Result struct {
	PositionBlockCount int
	TotalGeneLines     int
	UniqueGeneLines    int
}

// Stitcher merges shards of annotated JSON output.
type Stitcher struct {
	logger *zap.Logger
}

// NewStitcher creates a Stitcher that logs through logger.
func NewStitcher(logger *zap.Logger) *Stitcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stitcher{logger: logger}
}

// Stitch merges inputs, in order, into out. Gene lines are deduplicated by
// exact string equality and emitted in ascending lexicographic order.
func (s *Stitcher) Stitch(inputs []Input, out io.Writer) (Result, error) {
	bw := bgzf.NewBlockWriter(out)
	seen := make(map[string]struct{})

	var result Result
	for i, in := range inputs {
		if i > 0 {
			if _, err := bw.WriteBlock([]byte(commaYoke)); err != nil {
				return result, coreerr.Wrap(coreerr.BgzfCorrupt, err, "writing comma yoke before shard %d", i)
			}
		}

		idx, err := bgzf.LoadJSON(in.Jasix)
		if err != nil {
			return result, coreerr.Wrap(coreerr.BgzfCorrupt, err, "loading jasix index for shard %d", i)
		}

		posEnd := idx.End(positionsTag)
		count, err := s.writePositionBlocks(in.JSON, posEnd, i == 0, out)
		if err != nil {
			return result, err
		}
		result.PositionBlockCount += count

		geneBegin := idx.Begin(genesTag)
		if geneBegin.IsUndefined() {
			s.logger.Warn("shard has no genes section", zap.Int("shard", i))
			continue
		}
		lines, err := s.readGeneLines(in.JSON, geneBegin, seen)
		if err != nil {
			return result, err
		}
		result.TotalGeneLines += lines
	}

	if err := s.writeGeneSection(bw, seen); err != nil {
		return result, err
	}
	result.UniqueGeneLines = len(seen)

	if err := bw.Close(); err != nil {
		return result, err
	}

	s.logger.Info("stitch complete",
		zap.Int("position_blocks", result.PositionBlockCount),
		zap.Int("total_gene_lines", result.TotalGeneLines),
		zap.Int("unique_gene_lines", result.UniqueGeneLines),
	)
	return result, nil
}

// writePositionBlocks copies the positions section of one shard through
// verbatim: the first compressed block of the first shard (its header) is
// kept, header blocks from later shards are dropped, and copying stops
// before the block containing end.
func (s *Stitcher) writePositionBlocks(r io.ReadSeeker, end bgzf.VirtualOffset, isFirstShard bool, out io.Writer) (int, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	br, err := bgzf.NewBlockReader(r)
	if err != nil {
		return 0, err
	}

	count := 0
	for blockIndex := 0; end.IsUndefined() || br.Offset() < end.FileOffset(); blockIndex++ {
		b, err := br.NextBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}

		isHeaderBlock := blockIndex == 0
		if isHeaderBlock && !isFirstShard {
			continue
		}
		if err := bgzf.WriteThrough(out, b); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// readGeneLines decompresses a shard's gene section, folding every
// non-empty, non-footer line into seen after normalizing its trailing comma.
func (s *Stitcher) readGeneLines(r io.ReadSeeker, geneBegin bgzf.VirtualOffset, seen map[string]struct{}) (int, error) {
	br, err := bgzf.NewBlockReader(r)
	if err != nil {
		return 0, err
	}
	if err := br.Seek(geneBegin.FileOffset()); err != nil {
		return 0, err
	}

	scanner := bufio.NewScanner(newSectionReader(br, geneBegin.WithinBlock()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	total := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == footer {
			break
		}
		total++
		if !strings.HasSuffix(line, ",") {
			line += ","
		}
		seen[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return total, coreerr.Wrap(coreerr.BgzfCorrupt, err, "reading gene section")
	}
	return total, nil
}

// writeGeneSection emits the deduplicated gene lines, in lexicographic
// order, as a single BGZF block.
func (s *Stitcher) writeGeneSection(bw *bgzf.BlockWriter, seen map[string]struct{}) error {
	if len(seen) == 0 {
		_, err := bw.WriteBlock([]byte(footer))
		return err
	}

	lines := make([]string, 0, len(seen))
	for line := range seen {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	lines[len(lines)-1] = strings.TrimSuffix(lines[len(lines)-1], ",")

	var sb strings.Builder
	sb.WriteString("\n],\"genes\":[")
	for _, line := range lines {
		sb.WriteString(line)
	}
	sb.WriteString(footer)

	_, err := bw.WriteBlock([]byte(sb.String()))
	return err
}
