package variant

import (
	"math"
	"strconv"
	"strings"
)

// recognizedFormatTags lists every FORMAT tag the extractor understands.
// Tags outside this set are skipped silently when building FormatIndices.
var recognizedFormatTags = map[string]bool{
	"GT": true, "GQ": true, "GQX": true, "DP": true, "DPI": true, "DPF": true,
	"AD": true, "VF": true, "TIR": true, "TAR": true, "NR": true, "NV": true,
	"AU": true, "CU": true, "GU": true, "TU": true, "FT": true, "PR": true,
	"SR": true, "DQ": true, "CN": true, "MCC": true, "DST": true, "DID": true,
	"DCS": true, "SCH": true, "PCN": true, "PLG": true, "MAD": true, "CHC": true,
	"PCH": true,
}

// ParseFormatIndices builds a tag->column-index mapping from a VCF FORMAT
// column. Returns nil for an empty/"." FORMAT. Unrecognized tags are skipped.
func ParseFormatIndices(format string) *FormatIndices {
	if format == "" || format == "." {
		return nil
	}

	indices := make(map[string]int)
	for i, tag := range strings.Split(format, ":") {
		if recognizedFormatTags[tag] {
			indices[tag] = i
		}
	}
	return &FormatIndices{indices: indices}
}

// ParseSample decodes one colon-delimited per-sample column.
//
// isMultiAllelic indicates whether the VCF record carries more than one ALT
// allele: several tie-break rules (total depth, allele depth, variant
// frequency) only apply on single-alt records.
//
// lineDP, when non-nil, is the per-line DP override supplied by the caller
// (used for variant callers such as Pisces that only report depth at the
// record level). ref and alt are single-base alleles used to map Strelka's
// per-base AU/CU/GU/TU counts onto a [ref, alt] pair; pass empty strings when
// the record is not a single-base substitution.
func ParseSample(indices *FormatIndices, column string, isMultiAllelic bool, lineDP *int, ref, alt string) *Sample {
	if column == "" || column == "." {
		return &Sample{IsEmpty: true}
	}

	fields := strings.Split(column, ":")
	// raw reports a tag's cell whenever the tag is present, "." included.
	raw := func(tag string) (string, bool) {
		i, ok := indices.Index(tag)
		if !ok || i >= len(fields) {
			return "", false
		}
		return fields[i], true
	}
	get := func(tag string) (string, bool) {
		v, ok := raw(tag)
		if !ok || v == "." || v == "" {
			return "", false
		}
		return v, true
	}

	s := &Sample{}

	if gt, ok := get("GT"); ok {
		s.Genotype, s.HasGenotype = classifyGenotype(gt)
	}

	if gqx, ok := get("GQX"); ok {
		s.GenotypeQuality = parseOptInt(gqx)
	} else if gq, ok := get("GQ"); ok {
		s.GenotypeQuality = parseOptInt(gq)
	}

	if ft, ok := get("FT"); ok {
		s.FailedFilter = ft != "PASS"
	}

	s.TotalDepth = extractTotalDepth(raw, isMultiAllelic, lineDP)

	ad, adSource := extractAlleleDepths(get, isMultiAllelic, ref, alt)
	s.AlleleDepths = ad
	s.VariantFreq = extractVariantFrequency(get, ad, adSource)

	if pr, ok := get("PR"); ok {
		s.PairEndReads = parseIntPair(pr)
	}
	if sr, ok := get("SR"); ok {
		s.SplitReads = parseIntPair(sr)
	}
	if dq, ok := get("DQ"); ok {
		s.DeNovoQual = parseOptInt(dq)
	}

	if dst, ok := get("DST"); ok {
		s.DiseaseAffectedStatus, s.HasDiseaseAffectedStatus = dst, true
	}
	if did, ok := get("DID"); ok {
		s.DiseaseIDs = strings.Split(did, ",")
	}
	if dcs, ok := get("DCS"); ok {
		s.DiseaseClassificationSource = strings.Split(dcs, ",")
	}
	if sch, ok := get("SCH"); ok {
		s.SilentCarrierHaplotype, s.HasSilentCarrierHaplotype = sch, true
	}
	if pcn, ok := get("PCN"); ok {
		s.ParalogousGeneCopyNumbers = parseIntList(pcn)
	}
	if plg, ok := get("PLG"); ok {
		s.ParalogousEntrezGeneIDs = parseIntList(plg)
	}
	if mad, ok := get("MAD"); ok {
		s.MpileupAlleleDepths = parseIntList(mad)
	}
	if chc, ok := get("CHC"); ok {
		s.CHC, s.HasCHC = chc, true
	}

	if cn, ok := get("CN"); ok {
		s.CopyNumber = parseOptInt(cn)
	}
	if mcc, ok := get("MCC"); ok {
		s.MajorChromosomeCopy = parseOptInt(mcc)
	}
	s.IsLossOfHeterozygosity = s.MajorChromosomeCopy.Defined && s.CopyNumber.Defined &&
		s.MajorChromosomeCopy.Value == s.CopyNumber.Value && s.CopyNumber.Value >= 2

	return s
}

// classifyGenotype implements the GT tie-break rule of spec.md §4.2.2: a
// fully-missing genotype is preserved verbatim, but a leading-dot genotype
// whose first allele is unknown (anything else starting with ".") is
// undefined.
func classifyGenotype(gt string) (string, bool) {
	if gt == "./." || gt == ".|." {
		return gt, true
	}
	if strings.HasPrefix(gt, ".") {
		return "", false
	}
	return gt, true
}

type fieldGetter func(tag string) (string, bool)

// extractTotalDepth implements the source-preference chain of spec.md
// §4.2.2. A "." value at the first matched source yields undefined rather
// than falling through to the next source.
func extractTotalDepth(get fieldGetter, isMultiAllelic bool, lineDP *int) OptInt {
	if !isMultiAllelic {
		if tar, ok := get("TAR"); ok {
			if tir, ok := get("TIR"); ok {
				tarTier1, tarOK := firstTierCount(tar)
				tirTier1, tirOK := firstTierCount(tir)
				if tarOK && tirOK {
					return OptInt{Value: tarTier1 + tirTier1, Defined: true}
				}
				return OptInt{}
			}
		}
		if au, ok := get("AU"); ok {
			if cu, ok2 := get("CU"); ok2 {
				if gu, ok3 := get("GU"); ok3 {
					if tu, ok4 := get("TU"); ok4 {
						sum := 0
						allOK := true
						for _, base := range []string{au, cu, gu, tu} {
							v, ok := firstTierCount(base)
							if !ok {
								allOK = false
								break
							}
							sum += v
						}
						if allOK {
							return OptInt{Value: sum, Defined: true}
						}
						return OptInt{}
					}
				}
			}
		}
	}

	if dpi, ok := get("DPI"); ok {
		return parseOptInt(dpi)
	}
	if dp, ok := get("DP"); ok {
		return parseOptInt(dp)
	}
	if lineDP != nil {
		return OptInt{Value: *lineDP, Defined: true}
	}
	return OptInt{}
}

// alleleDepthSource identifies which rule produced an allele-depth result,
// needed downstream to derive VariantFrequency from the same numerator.
type alleleDepthSource int

const (
	adSourceNone alleleDepthSource = iota
	adSourceTierTarTir
	adSourceNRNV
	adSourceStrelka
	adSourceAD
)

// extractAlleleDepths implements the source-preference chain of spec.md
// §4.2.2 for allele depths ([ref, alt]). ref/alt are single-base alleles
// used to map Strelka's AU/CU/GU/TU counts; pass "" to skip that source.
func extractAlleleDepths(get fieldGetter, isMultiAllelic bool, ref, alt string) (IntPair, alleleDepthSource) {
	if !isMultiAllelic {
		if tar, ok := get("TAR"); ok {
			if tir, ok2 := get("TIR"); ok2 {
				tarTier1, tarOK := firstTierCount(tar)
				tirTier1, tirOK := firstTierCount(tir)
				if tarOK && tirOK {
					return IntPair{Ref: tarTier1, Alt: tirTier1, Defined: true}, adSourceTierTarTir
				}
				return IntPair{}, adSourceNone
			}
		}

		if nr, ok := get("NR"); ok {
			if nv, ok2 := get("NV"); ok2 {
				nrVal, nrOK := strconv.Atoi(nr)
				nvVal, nvOK := strconv.Atoi(nv)
				if nrOK == nil && nvOK == nil {
					return IntPair{Ref: nrVal - nvVal, Alt: nvVal, Defined: true}, adSourceNRNV
				}
				return IntPair{}, adSourceNone
			}
		}

		if pair, ok := strelkaAlleleDepths(get, ref, alt); ok {
			return pair, adSourceStrelka
		}
	}

	if ad, ok := get("AD"); ok {
		parts := strings.SplitN(ad, ",", 2)
		if len(parts) == 2 {
			refV, errR := strconv.Atoi(parts[0])
			altV, errA := strconv.Atoi(parts[1])
			if errR == nil && errA == nil {
				return IntPair{Ref: refV, Alt: altV, Defined: true}, adSourceAD
			}
		}
		return IntPair{}, adSourceNone
	}

	return IntPair{}, adSourceNone
}

// strelkaAlleleDepths maps Strelka's per-base AU/CU/GU/TU tier-1 counts onto
// [ref, alt] using the ref/alt base letters. Returns ok=false if ref/alt are
// not single bases, a field is missing, or the selected tier-1 cell is ".".
func strelkaAlleleDepths(get fieldGetter, ref, alt string) (IntPair, bool) {
	if len(ref) != 1 || len(alt) != 1 {
		return IntPair{}, false
	}

	refField, refOK := baseFieldTag(ref[0])
	altField, altOK := baseFieldTag(alt[0])
	if !refOK || !altOK {
		return IntPair{}, false
	}

	refRaw, ok := get(refField)
	if !ok {
		return IntPair{}, false
	}
	altRaw, ok := get(altField)
	if !ok {
		return IntPair{}, false
	}

	refV, refTierOK := firstTierCount(refRaw)
	altV, altTierOK := firstTierCount(altRaw)
	if !refTierOK || !altTierOK {
		return IntPair{}, false
	}
	return IntPair{Ref: refV, Alt: altV, Defined: true}, true
}

func baseFieldTag(base byte) (string, bool) {
	switch base {
	case 'A', 'a':
		return "AU", true
	case 'C', 'c':
		return "CU", true
	case 'G', 'g':
		return "GU", true
	case 'T', 't':
		return "TU", true
	default:
		return "", false
	}
}

// extractVariantFrequency derives VariantFrequency from the allele-depth
// source just computed, honoring an explicit VF override when present and
// numeric. Result is clamped to [0, 1] and rounded to four decimal places.
func extractVariantFrequency(get fieldGetter, ad IntPair, source alleleDepthSource) OptFloat {
	if vf, ok := get("VF"); ok {
		if f, err := strconv.ParseFloat(vf, 64); err == nil {
			return OptFloat{Value: clampRound4(f), Defined: true}
		}
	}

	if source == adSourceNone || !ad.Defined {
		return OptFloat{}
	}

	denom := ad.Ref + ad.Alt
	if denom == 0 {
		return OptFloat{Value: 0, Defined: true}
	}
	freq := float64(ad.Alt) / float64(denom)
	return OptFloat{Value: clampRound4(freq), Defined: true}
}

func clampRound4(f float64) float64 {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return math.Round(f*10000) / 10000
}

// firstTierCount parses the first, tier-1, comma-separated count of a
// Strelka-style "tier1,tier2" field. Returns ok=false for "." or a malformed
// value.
func firstTierCount(value string) (int, bool) {
	if value == "." || value == "" {
		return 0, false
	}
	first := value
	if i := strings.IndexByte(value, ','); i >= 0 {
		first = value[:i]
	}
	v, err := strconv.Atoi(first)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseOptInt(value string) OptInt {
	if value == "." || value == "" {
		return OptInt{}
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return OptInt{}
	}
	return OptInt{Value: v, Defined: true}
}

func parseIntPair(value string) IntPair {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return IntPair{}
	}
	refV, errR := strconv.Atoi(parts[0])
	altV, errA := strconv.Atoi(parts[1])
	if errR != nil || errA != nil {
		return IntPair{}
	}
	return IntPair{Ref: refV, Alt: altV, Defined: true}
}

func parseIntList(value string) []int {
	parts := strings.Split(value, ",")
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		result = append(result, v)
	}
	return result
}
