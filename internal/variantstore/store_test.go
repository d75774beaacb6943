package variantstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vep/internal/variant"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s)
}

func TestWriteAndLookupVariant(t *testing.T) {
	s := openInMemory(t)

	records := []Record{
		{
			Chrom: "12", Pos: 25245350, End: 25245350, Ref: "C", Alt: "A",
			VariantType: variant.VariantTypeSNV, Category: variant.CategorySmallVariant,
			Sample: &variant.Sample{
				Genotype: "0/1", HasGenotype: true,
				AlleleDepths: variant.IntPair{Ref: 5, Alt: 7, Defined: true},
			},
		},
	}
	require.NoError(t, s.WriteVariants(records))

	rec, err := s.LookupVariant("12", 25245350, "C", "A")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, variant.VariantTypeSNV, rec.VariantType)
	require.NotNil(t, rec.Sample)
	assert.Equal(t, "0/1", rec.Sample.Genotype)
	assert.Equal(t, 5, rec.Sample.AlleleDepths.Ref)
}

func TestLookupVariantMissingReturnsNil(t *testing.T) {
	s := openInMemory(t)
	rec, err := s.LookupVariant("1", 100, "A", "T")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestWriteVariantsDedupesByKey(t *testing.T) {
	s := openInMemory(t)

	records := []Record{
		{Chrom: "1", Pos: 100, End: 100, Ref: "A", Alt: "G", VariantType: variant.VariantTypeSNV},
		{Chrom: "1", Pos: 100, End: 100, Ref: "A", Alt: "G", VariantType: variant.VariantTypeSNV},
	}
	require.NoError(t, s.WriteVariants(records))

	results, err := s.SearchByChromosome("1")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchByChromosomeOrdersByPosition(t *testing.T) {
	s := openInMemory(t)

	records := []Record{
		{Chrom: "7", Pos: 200, End: 200, Ref: "A", Alt: "T", VariantType: variant.VariantTypeSNV},
		{Chrom: "7", Pos: 100, End: 100, Ref: "C", Alt: "G", VariantType: variant.VariantTypeSNV},
	}
	require.NoError(t, s.WriteVariants(records))

	results, err := s.SearchByChromosome("7")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(100), results[0].Pos)
	assert.Equal(t, int64(200), results[1].Pos)
}

func TestClearVariants(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteVariants([]Record{
		{Chrom: "1", Pos: 100, End: 100, Ref: "A", Alt: "T", VariantType: variant.VariantTypeSNV},
	}))
	require.NoError(t, s.ClearVariants())

	results, err := s.SearchByChromosome("1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWriteAndLookupBreakends(t *testing.T) {
	s := openInMemory(t)
	chr1 := variant.Chromosome{EnsemblName: "1", RefName: "chr1"}

	require.NoError(t, s.WriteVariants([]Record{
		{
			Chrom: "1", Pos: 1000, End: 2000, Ref: "N", Alt: "<DEL>",
			VariantType: variant.VariantTypeDeletion, Category: variant.CategorySV,
			BreakEnds: []variant.BreakEnd{
				{Chromosome1: chr1, Chromosome2: chr1, Position1: 1000, Position2: 2001, IsSuffix2: true},
				{Chromosome1: chr1, Chromosome2: chr1, Position1: 2001, Position2: 1000, IsSuffix1: true},
			},
		},
	}))

	rec, err := s.LookupVariant("1", 1000, "N", "<DEL>")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Len(t, rec.BreakEnds, 2)
	assert.Equal(t, 2001, rec.BreakEnds[0].Position2)
}
