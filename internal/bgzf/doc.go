// Package bgzf implements the Block GZIP Format used by BAM and VCF.gz: a
// sequence of independent gzip members, each declaring its own compressed
// size in a "BC" extra subfield, addressable by 64-bit virtual offsets. The
// reader yields compressed blocks without decompressing them so callers that
// only need to copy or splice blocks never pay the deflate cost.
package bgzf
