package variant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

// Breakend alt-allele grammars, compiled once at process lifetime so hot
// paths never recompile a pattern (spec.md §9).
var (
	forwardBreakendRe = regexp.MustCompile(`\w+([\[\]])([^:]+):(\d+)([\[\]])`)
	reverseBreakendRe = regexp.MustCompile(`([\[\]])([^:]+):(\d+)([\[\]])\w+`)
)

// looksLikeBreakend reports whether alt contains bracket notation at all,
// used by the classifier (spec.md §4.3.1 rule 2) and to decide whether a
// non-matching alt is a BreakendParse failure versus simply not a breakend.
func looksLikeBreakend(alt string) bool {
	return strings.ContainsAny(alt, "[]")
}

// parseBreakendAllele parses an explicit breakend alt allele (spec.md
// §4.3.3). The shape (forward vs reverse) is chosen by testing whether alt
// starts with the ref allele.
func parseBreakendAllele(chroms ChromosomeLookup, chrom1 Chromosome, pos1 int, ref, alt string) (BreakEnd, error) {
	if strings.HasPrefix(alt, ref) {
		m := forwardBreakendRe.FindStringSubmatch(alt)
		if m == nil {
			return BreakEnd{}, coreerr.New(coreerr.BreakendParse, "alt %q does not match the forward breakend grammar", alt)
		}
		pos2, err := strconv.Atoi(m[3])
		if err != nil {
			return BreakEnd{}, coreerr.Wrap(coreerr.BreakendParse, err, "alt %q has a non-numeric breakend position", alt)
		}
		return BreakEnd{
			Chromosome1: chrom1,
			Chromosome2: chroms.Lookup(m[2]),
			Position1:   pos1,
			Position2:   pos2,
			IsSuffix1:   false,
			IsSuffix2:   m[4] == "[",
		}, nil
	}

	m := reverseBreakendRe.FindStringSubmatch(alt)
	if m == nil {
		return BreakEnd{}, coreerr.New(coreerr.BreakendParse, "alt %q does not match the reverse breakend grammar", alt)
	}
	pos2, err := strconv.Atoi(m[3])
	if err != nil {
		return BreakEnd{}, coreerr.Wrap(coreerr.BreakendParse, err, "alt %q has a non-numeric breakend position", alt)
	}
	return BreakEnd{
		Chromosome1: chrom1,
		Chromosome2: chroms.Lookup(m[2]),
		Position1:   pos1,
		Position2:   pos2,
		IsSuffix1:   true,
		IsSuffix2:   m[1] == "[",
	}, nil
}

// symbolicBreakends derives the canonical breakend pair for a symbolic SV
// (spec.md §4.3.2). Returns ok=false when the SV type has no breakend
// contract (e.g. insertion, CNV, STR) or END is undefined.
func symbolicBreakends(c Chromosome, start, end int, svType SVType, isInv3, isInv5, hasEnd bool) ([]BreakEnd, bool) {
	if !hasEnd {
		return nil, false
	}

	switch svType {
	case SVTypeDeletion:
		return []BreakEnd{
			{Chromosome1: c, Chromosome2: c, Position1: start, Position2: end + 1, IsSuffix1: false, IsSuffix2: true},
			{Chromosome1: c, Chromosome2: c, Position1: end + 1, Position2: start, IsSuffix1: true, IsSuffix2: false},
		}, true
	case SVTypeDuplication, SVTypeTandemDuplication:
		return []BreakEnd{
			{Chromosome1: c, Chromosome2: c, Position1: end, Position2: start, IsSuffix1: false, IsSuffix2: true},
			{Chromosome1: c, Chromosome2: c, Position1: start, Position2: end, IsSuffix1: true, IsSuffix2: false},
		}, true
	case SVTypeInversion:
		switch {
		case isInv3:
			return []BreakEnd{
				{Chromosome1: c, Chromosome2: c, Position1: start, Position2: end, IsSuffix1: false, IsSuffix2: false},
				{Chromosome1: c, Chromosome2: c, Position1: end, Position2: start, IsSuffix1: false, IsSuffix2: false},
			}, true
		case isInv5:
			return []BreakEnd{
				{Chromosome1: c, Chromosome2: c, Position1: start + 1, Position2: end + 1, IsSuffix1: true, IsSuffix2: true},
				{Chromosome1: c, Chromosome2: c, Position1: end + 1, Position2: start + 1, IsSuffix1: true, IsSuffix2: true},
			}, true
		default:
			return []BreakEnd{
				{Chromosome1: c, Chromosome2: c, Position1: start, Position2: end, IsSuffix1: false, IsSuffix2: false},
				{Chromosome1: c, Chromosome2: c, Position1: end + 1, Position2: start + 1, IsSuffix1: true, IsSuffix2: true},
			}, true
		}
	default:
		return nil, false
	}
}
