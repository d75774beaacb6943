package main

import (
	"fmt"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vep/internal/chromtable"
	"github.com/inodb/vibe-vep/internal/refminor"
	"github.com/inodb/vibe-vep/internal/variant"
	"github.com/inodb/vibe-vep/internal/variantstore"
	"github.com/inodb/vibe-vep/internal/vcf"
)

// parsedVariant is the JSON-serializable shape emitted by `vibe-vep parse`,
// one per alt allele per VCF record.
type parsedVariant struct {
	Chrom    string             `json:"chrom"`
	Start    int                `json:"start"`
	End      int                `json:"end"`
	Ref      string             `json:"ref"`
	Alt      string             `json:"alt"`
	Type     variant.VariantType `json:"type"`
	Category string             `json:"category"`
	Samples  []*variant.Sample  `json:"samples,omitempty"`
}

func newParseCmd() *cobra.Command {
	var (
		chromTablePath string
		refMinorPath   string
		storePath      string
		outputPath     string
	)

	cmd := &cobra.Command{
		Use:   "parse <input.vcf|->",
		Short: "Parse a VCF file into normalized variants",
		Long: `Parse reads a VCF (optionally gzipped) file, classifies every alt allele
of every record, derives breakends for structural variants, extracts
per-sample FORMAT fields, and writes the result as a JSON array.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			return runParse(args[0], chromTablePath, refMinorPath, storePath, outputPath, logger)
		},
	}

	cmd.Flags().StringVar(&chromTablePath, "chrom-table", "", "DuckDB database backing chromosome name lookup (optional)")
	cmd.Flags().StringVar(&refMinorPath, "ref-minor", "", "DuckDB database backing ref-minor global-major lookup (optional)")
	cmd.Flags().StringVar(&storePath, "store", "", "persist parsed variants to this DuckDB file (optional)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runParse(inputPath, chromTablePath, refMinorPath, storePath, outputPath string, logger *zap.Logger) error {
	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return fmt.Errorf("open vcf: %w", err)
	}
	defer parser.Close()

	chroms, closeChroms, err := openChromLookup(chromTablePath)
	if err != nil {
		return err
	}
	defer closeChroms()

	refMinor, closeRefMinor, err := openRefMinor(refMinorPath)
	if err != nil {
		return err
	}
	defer closeRefMinor()

	factory := variant.NewFactory(chroms, refMinor)

	var store *variantstore.Store
	if storePath != "" {
		store, err = variantstore.Open(storePath)
		if err != nil {
			return fmt.Errorf("open variant store: %w", err)
		}
		defer store.Close()
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := gojson.NewEncoder(out)
	if _, err := out.WriteString("[\n"); err != nil {
		return err
	}

	first := true
	var pending []variantstore.Record
	for {
		v, err := parser.Next()
		if err != nil {
			return fmt.Errorf("read record at line %d: %w", parser.LineNumber(), err)
		}
		if v == nil {
			break
		}

		alts := strings.Split(v.Alt, ",")
		info, err := variant.ParseInfo(v.RawInfo)
		if err != nil {
			logger.Warn("skipping record with unparsable INFO", zap.Int("line", parser.LineNumber()), zap.Error(err))
			continue
		}

		variants, err := factory.CreateVariants(v.Chrom, int(v.Pos), v.Ref, alts, info)
		if err != nil {
			logger.Warn("skipping record", zap.Int("line", parser.LineNumber()), zap.Error(err))
			continue
		}

		// variants is indexed over informative alts only (or a single
		// synthetic entry for a Reference record); mirror that filtering
		// here so samples[i] lines up with variants[i].
		informativeAlts := alts
		if len(variants) != len(alts) {
			informativeAlts = nil
			for _, a := range alts {
				if !variant.NonInformativeAlts[a] {
					informativeAlts = append(informativeAlts, a)
				}
			}
		}
		samples := parseSamples(v, alts, informativeAlts)

		for i, vv := range variants {
			pv := parsedVariant{
				Chrom:    vv.Chromosome.RefName,
				Start:    vv.Start,
				End:      vv.End,
				Ref:      vv.Ref,
				Alt:      vv.Alt,
				Type:     vv.Type,
				Category: vv.Category.String(),
			}
			if i < len(samples) && samples[i] != nil {
				pv.Samples = samples[i]
			}

			if !first {
				if _, err := out.WriteString(",\n"); err != nil {
					return err
				}
			}
			first = false
			if err := enc.Encode(pv); err != nil {
				return fmt.Errorf("encode variant: %w", err)
			}

			if store != nil {
				rec := variantstore.Record{
					Chrom: vv.Chromosome.RefName, Pos: int64(vv.Start), End: int64(vv.End),
					Ref: vv.Ref, Alt: vv.Alt, VariantType: vv.Type, Category: vv.Category,
					BreakEnds: vv.BreakEnds,
				}
				if i < len(samples) && len(samples[i]) == 1 {
					rec.Sample = samples[i][0]
				}
				pending = append(pending, rec)
			}
		}
	}

	if _, err := out.WriteString("\n]\n"); err != nil {
		return err
	}

	if store != nil && len(pending) > 0 {
		if err := store.WriteVariants(pending); err != nil {
			return fmt.Errorf("persist variants: %w", err)
		}
		logger.Info("persisted variants", zap.Int("count", len(pending)))
	}

	return nil
}

// parseSamples extracts, for every informative alt allele in order, the
// per-sample records carried by the record's FORMAT/sample columns. The
// outer slice is indexed to match factory.CreateVariants' returned variants.
// isMultiAllelic reflects the full original ALT list, since AD/DP column
// layout depends on how many alleles the record actually carries, not on how
// many turned out informative.
func parseSamples(v *vcf.Variant, allAlts, informativeAlts []string) [][]*variant.Sample {
	if v.SampleColumns == "" {
		return nil
	}
	cols := strings.Split(v.SampleColumns, "\t")
	if len(cols) < 2 {
		return nil
	}
	formatIndices := variant.ParseFormatIndices(cols[0])
	sampleCols := cols[1:]

	isMultiAllelic := len(allAlts) > 1
	var lineDP *int
	if dp, ok := v.Info["DP"]; ok {
		if s, ok := dp.(string); ok {
			if n, convErr := parseIntOrNil(s); convErr == nil {
				lineDP = &n
			}
		}
	}

	result := make([][]*variant.Sample, len(informativeAlts))
	for i, alt := range informativeAlts {
		samples := make([]*variant.Sample, 0, len(sampleCols))
		for _, col := range sampleCols {
			samples = append(samples, variant.ParseSample(formatIndices, col, isMultiAllelic, lineDP, v.Ref, alt))
		}
		result[i] = samples
	}
	return result
}

func parseIntOrNil(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func openChromLookup(path string) (variant.ChromosomeLookup, func(), error) {
	if path == "" {
		return passthroughChroms{}, func() {}, nil
	}
	store, err := chromtable.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open chrom table: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func openRefMinor(path string) (variant.RefMinorProvider, func(), error) {
	if path == "" {
		return noRefMinor{}, func() {}, nil
	}
	store, err := refminor.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open ref-minor table: %w", err)
	}
	return store, func() { store.Close() }, nil
}

// passthroughChroms is the fallback ChromosomeLookup used when no
// --chrom-table is given: every name resolves to itself.
type passthroughChroms struct{}

func (passthroughChroms) Lookup(name string) variant.Chromosome {
	return variant.EmptyChromosome(name)
}

// noRefMinor is the fallback RefMinorProvider used when no --ref-minor
// database is given: no site is ever treated as ref-minor.
type noRefMinor struct{}

func (noRefMinor) GlobalMajorAllele(chrom variant.Chromosome, pos int) (string, bool) {
	return "", false
}
