package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vep/internal/coreerr"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		alts []string
		want VariantCategory
	}{
		{"reference dot", []string{"."}, CategoryReference},
		{"reference non_ref", []string{"<NON_REF>"}, CategoryReference},
		{"small variant snv", []string{"G"}, CategorySmallVariant},
		{"small variant multi", []string{"G", "T"}, CategorySmallVariant},
		{"explicit breakend", []string{"A[chr3:500["}, CategorySV},
		{"repeat expansion", []string{"<STR39>"}, CategoryRepeatExpansion},
		{"cnv", []string{"<CN0>"}, CategoryCNV},
		{"symbolic deletion", []string{"<DEL>"}, CategorySV},
		{"symbolic tandem dup", []string{"<DUP:TANDEM>"}, CategorySV},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.alts))
		})
	}
}

func TestClassify_StableUnderPermutation(t *testing.T) {
	a := Classify([]string{"G", "<DEL>"})
	b := Classify([]string{"<DEL>", "G"})
	assert.Equal(t, a, b)
}

func TestCreateVariants_SmallVariant(t *testing.T) {
	f := NewFactory(newTestChromLookup(), nil)
	variants, err := f.CreateVariants("chr1", 100, "A", []string{"G"}, nil)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	v := variants[0]
	assert.Equal(t, CategorySmallVariant, v.Category)
	assert.Equal(t, VariantTypeSNV, v.Type)
	assert.Equal(t, 100, v.Start)
	assert.Equal(t, 100, v.End)
}

func TestCreateVariants_DeletionBreakends(t *testing.T) {
	// scenario 2 from spec.md §8
	f := NewFactory(newTestChromLookup(), nil)
	info, err := ParseInfo("SVTYPE=DEL;END=2000")
	require.NoError(t, err)

	variants, err := f.CreateVariants("chr1", 1000, "N", []string{"<DEL>"}, info)
	require.NoError(t, err)
	require.Len(t, variants, 1)

	require.Len(t, variants[0].BreakEnds, 2)
	be0, be1 := variants[0].BreakEnds[0], variants[0].BreakEnds[1]
	assert.Equal(t, 1000, be0.Position1)
	assert.Equal(t, 2001, be0.Position2)
	assert.False(t, be0.IsSuffix1)
	assert.True(t, be0.IsSuffix2)

	assert.Equal(t, 2001, be1.Position1)
	assert.Equal(t, 1000, be1.Position2)
	assert.True(t, be1.IsSuffix1)
	assert.False(t, be1.IsSuffix2)
}

func TestCreateVariants_InversionINV3(t *testing.T) {
	// scenario 3 from spec.md §8
	f := NewFactory(newTestChromLookup(), nil)
	info, err := ParseInfo("SVTYPE=INV;END=2000;INV3")
	require.NoError(t, err)

	variants, err := f.CreateVariants("chr1", 1000, "N", []string{"<INV>"}, info)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	require.Len(t, variants[0].BreakEnds, 2)

	be0, be1 := variants[0].BreakEnds[0], variants[0].BreakEnds[1]
	assert.Equal(t, BreakEnd{
		Chromosome1: be0.Chromosome1, Chromosome2: be0.Chromosome2,
		Position1: 1000, Position2: 2000, IsSuffix1: false, IsSuffix2: false,
	}, be0)
	assert.Equal(t, BreakEnd{
		Chromosome1: be1.Chromosome1, Chromosome2: be1.Chromosome2,
		Position1: 2000, Position2: 1000, IsSuffix1: false, IsSuffix2: false,
	}, be1)
}

func TestCreateVariants_BreakendForward(t *testing.T) {
	// scenario 4 from spec.md §8
	f := NewFactory(newTestChromLookup(), nil)
	variants, err := f.CreateVariants("chr1", 700, "A", []string{"A[chr3:500["}, nil)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	require.Len(t, variants[0].BreakEnds, 1)

	be := variants[0].BreakEnds[0]
	assert.Equal(t, 700, be.Position1)
	assert.Equal(t, 500, be.Position2)
	assert.False(t, be.IsSuffix1)
	assert.True(t, be.IsSuffix2)
	assert.Equal(t, "3", be.Chromosome2.EnsemblName)
}

func TestCreateVariants_BreakendReverseShape(t *testing.T) {
	f := NewFactory(newTestChromLookup(), nil)
	variants, err := f.CreateVariants("chr1", 700, "A", []string{"]chr3:500]A"}, nil)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	be := variants[0].BreakEnds[0]
	assert.True(t, be.IsSuffix1)
	assert.False(t, be.IsSuffix2)
}

func TestCreateVariants_MalformedBreakendFails(t *testing.T) {
	f := NewFactory(newTestChromLookup(), nil)
	_, err := f.CreateVariants("chr1", 700, "A", []string{"A[not-a-breakend"}, nil)
	require.Error(t, err)
	var typed *coreerr.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, coreerr.BreakendParse, typed.Kind)
}

func TestCreateVariants_SkipsNonInformativeAlts(t *testing.T) {
	f := NewFactory(newTestChromLookup(), nil)
	variants, err := f.CreateVariants("chr1", 100, "A", []string{"G", "*"}, nil)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "G", variants[0].Alt)
}

func TestCreateVariants_AllNonInformativeYieldsUndefined(t *testing.T) {
	f := NewFactory(newTestChromLookup(), nil)
	info, err := ParseInfo("SVTYPE=DEL;END=200")
	require.NoError(t, err)
	variants, err := f.CreateVariants("chr1", 100, "N", []string{"*"}, info)
	require.NoError(t, err)
	assert.Nil(t, variants)
}

func TestCreateVariants_ReferenceGlobalMajorAllele(t *testing.T) {
	refMinor := mapRefMinor{"chr1:100": "G"}
	f := NewFactory(newTestChromLookup(), refMinor)
	variants, err := f.CreateVariants("chr1", 100, "A", []string{"."}, nil)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.True(t, variants[0].HasGlobalMajor)
	assert.Equal(t, "G", variants[0].GlobalMajorAllele)
}

func TestCreateVariants_UnknownChromosomeFallsBackToEmpty(t *testing.T) {
	f := NewFactory(newTestChromLookup(), nil)
	variants, err := f.CreateVariants("chrUnplaced", 1, "A", []string{"G"}, nil)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.True(t, variants[0].Chromosome.IsEmpty())
}
