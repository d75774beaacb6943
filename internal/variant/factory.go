package variant

import (
	"strings"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

// Factory classifies alt alleles and constructs Variant records, borrowing
// the chromosome lookup and ref-minor provider for the lifetime of a single
// processing pass. A Factory is not safe for concurrent use by multiple
// goroutines against the same record, but distinct Factory values (or
// distinct calls) may run in parallel.
type Factory struct {
	Chroms   ChromosomeLookup
	RefMinor RefMinorProvider
}

// NewFactory creates a Factory over the given collaborators.
func NewFactory(chroms ChromosomeLookup, refMinor RefMinorProvider) *Factory {
	return &Factory{Chroms: chroms, RefMinor: refMinor}
}

// Classify implements the alt-allele classification rules of spec.md
// §4.3.1. All alts on one line share a single category; the first rule that
// matches any alt wins, checked in order.
func Classify(alts []string) VariantCategory {
	if len(alts) == 1 && isRefLikeAlt(alts[0]) {
		return CategoryReference
	}

	for _, a := range alts {
		if looksLikeBreakend(a) {
			return CategorySV
		}
	}

	anySymbolic := false
	for _, a := range alts {
		if NonInformativeAlts[a] {
			continue
		}
		if isSymbolicAllele(a) {
			anySymbolic = true
			break
		}
	}
	if !anySymbolic {
		return CategorySmallVariant
	}

	for _, a := range alts {
		if strings.HasPrefix(a, "<STR") {
			return CategoryRepeatExpansion
		}
	}
	for _, a := range alts {
		if strings.HasPrefix(a, "<CN") {
			return CategoryCNV
		}
	}
	return CategorySV
}

func isRefLikeAlt(a string) bool {
	return a == "." || a == "<NON_REF>"
}

func isSymbolicAllele(a string) bool {
	return len(a) >= 2 && strings.HasPrefix(a, "<") && strings.HasSuffix(a, ">")
}

func symbolicTag(alt string) string {
	return strings.Trim(alt, "<>")
}

// CreateVariants classifies the given alts and constructs one Variant per
// informative alt (or exactly one Reference variant). Returns (nil, nil) —
// undefined, never an empty slice — when no alt is informative.
func (f *Factory) CreateVariants(chromName string, start int, ref string, alts []string, info *InfoData) ([]Variant, error) {
	if info == nil {
		info = &InfoData{}
	}
	chrom := f.Chroms.Lookup(chromName)
	category := Classify(alts)

	if category == CategoryReference {
		v := Variant{
			Chromosome: chrom,
			Start:      start,
			End:        start + len(ref) - 1,
			Ref:        ref,
			Alt:        alts[0],
			Type:       VariantTypeReference,
			Category:   CategoryReference,
		}
		if f.RefMinor != nil {
			if major, ok := f.RefMinor.GlobalMajorAllele(chrom, start); ok {
				v.GlobalMajorAllele = major
				v.HasGlobalMajor = true
			}
		}
		return []Variant{v}, nil
	}

	var result []Variant
	for _, alt := range alts {
		if NonInformativeAlts[alt] {
			continue
		}

		var (
			v   Variant
			err error
		)
		switch category {
		case CategorySmallVariant:
			v = f.createSmallVariant(chrom, start, ref, alt)
		case CategorySV:
			v, err = f.createSV(chrom, start, ref, alt, info)
		case CategoryCNV:
			v = f.createCNV(chrom, start, ref, alt, info)
		case CategoryRepeatExpansion:
			v = f.createRepeatExpansion(chrom, start, ref, alt, info)
		default:
			// UnknownCategory is an internal programming error: Classify
			// only ever returns the five known categories.
			err = coreerr.New(coreerr.UnknownCategory, "unhandled variant category %v", category)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}

	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

func (f *Factory) createSmallVariant(chrom Chromosome, start int, ref, alt string) Variant {
	return Variant{
		Chromosome: chrom,
		Start:      start,
		End:        start + len(ref) - 1,
		Ref:        ref,
		Alt:        alt,
		Type:       smallVariantType(ref, alt),
		Category:   CategorySmallVariant,
	}
}

func smallVariantType(ref, alt string) VariantType {
	switch {
	case len(ref) == 1 && len(alt) == 1:
		return VariantTypeSNV
	case len(ref) == len(alt):
		return VariantTypeMNV
	case len(ref) == 0 || len(alt) == 0:
		// Defensive: VCF alleles are never empty, but guard anyway.
		return VariantTypeIndel
	case len(alt) > len(ref) && strings.HasPrefix(alt, ref):
		return VariantTypeInsertion
	case len(ref) > len(alt) && strings.HasPrefix(ref, alt):
		return VariantTypeDeletion
	default:
		return VariantTypeIndel
	}
}

func (f *Factory) createSV(chrom Chromosome, start int, ref, alt string, info *InfoData) (Variant, error) {
	if looksLikeBreakend(alt) {
		be, err := parseBreakendAllele(f.Chroms, chrom, start, ref, alt)
		if err != nil {
			return Variant{}, err
		}
		return Variant{
			Chromosome: chrom,
			Start:      start,
			End:        start,
			Ref:        ref,
			Alt:        alt,
			Type:       VariantTypeTranslocationBreakend,
			Category:   CategorySV,
			BreakEnds:  []BreakEnd{be},
		}, nil
	}

	end := start
	if info.HasEnd {
		end = info.End
	}

	v := Variant{
		Chromosome: chrom,
		Start:      start,
		End:        end,
		Ref:        ref,
		Alt:        alt,
		Type:       svVariantType(alt, info),
		Category:   CategorySV,
	}
	if bes, ok := symbolicBreakends(chrom, start, end, info.SVType, info.IsInv3, info.IsInv5, info.HasEnd); ok {
		v.BreakEnds = bes
	}
	return v, nil
}

func (f *Factory) createCNV(chrom Chromosome, start int, ref, alt string, info *InfoData) Variant {
	end := start
	if info.HasEnd {
		end = info.End
	}
	return Variant{
		Chromosome: chrom,
		Start:      start,
		End:        end,
		Ref:        ref,
		Alt:        alt,
		Type:       VariantTypeCopyNumberVariation,
		Category:   CategoryCNV,
	}
}

func (f *Factory) createRepeatExpansion(chrom Chromosome, start int, ref, alt string, info *InfoData) Variant {
	end := start
	if info.HasEnd {
		end = info.End
	}
	return Variant{
		Chromosome: chrom,
		Start:      start,
		End:        end,
		Ref:        ref,
		Alt:        alt,
		Type:       VariantTypeShortTandemRepeatVariation,
		Category:   CategoryRepeatExpansion,
	}
}

// svVariantType picks the observable VariantType for a symbolic SV alt,
// preferring the parsed INFO SVTYPE and falling back to the alt's own
// symbolic tag when SVTYPE is absent or unrecognized.
func svVariantType(alt string, info *InfoData) VariantType {
	switch info.SVType {
	case SVTypeDeletion:
		return VariantTypeDeletion
	case SVTypeTandemDuplication:
		return VariantTypeTandemDuplication
	case SVTypeDuplication:
		return VariantTypeDuplication
	case SVTypeInversion:
		return VariantTypeInversion
	case SVTypeInsertion:
		return VariantTypeInsertion
	case SVTypeCNV:
		return VariantTypeCopyNumberVariation
	case SVTypeSTR:
		return VariantTypeShortTandemRepeatVariation
	case SVTypeBND:
		return VariantTypeTranslocationBreakend
	}

	tag := symbolicTag(alt)
	switch {
	case tag == "DEL":
		return VariantTypeDeletion
	case tag == "DUP" || strings.HasPrefix(tag, "DUP:"):
		if strings.Contains(tag, "TANDEM") {
			return VariantTypeTandemDuplication
		}
		return VariantTypeDuplication
	case tag == "INV":
		return VariantTypeInversion
	case tag == "INS":
		return VariantTypeInsertion
	case strings.HasPrefix(tag, "CN"):
		return VariantTypeCopyNumberVariation
	case strings.HasPrefix(tag, "STR"):
		return VariantTypeShortTandemRepeatVariation
	default:
		return VariantTypeComplexStructuralAlteration
	}
}
