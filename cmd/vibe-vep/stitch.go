package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vep/internal/jsonstitch"
)

func newStitchCmd() *cobra.Command {
	var (
		jsonPaths  []string
		jasixPaths []string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "stitch",
		Short: "Merge sharded BGZF annotated-JSON output into one document",
		Long: `Stitch merges the BGZF-compressed annotated JSON output of several shards,
using each shard's sidecar jasix index to locate its positions and genes
sections, into a single valid JSON document written as one BGZF stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(jsonPaths) == 0 {
				return fmt.Errorf("at least one --json shard is required")
			}
			if len(jsonPaths) != len(jasixPaths) {
				return fmt.Errorf("--json and --jasix must be given the same number of times (%d vs %d)", len(jsonPaths), len(jasixPaths))
			}

			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			return runStitch(jsonPaths, jasixPaths, outputPath, logger)
		},
	}

	cmd.Flags().StringArrayVar(&jsonPaths, "json", nil, "path to a shard's BGZF annotated JSON file (repeatable, in shard order)")
	cmd.Flags().StringArrayVar(&jasixPaths, "jasix", nil, "path to the matching shard's jasix index file (repeatable, same order as --json)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output BGZF JSON file (default: stdout)")

	return cmd
}

func runStitch(jsonPaths, jasixPaths []string, outputPath string, logger *zap.Logger) error {
	inputs := make([]jsonstitch.Input, len(jsonPaths))
	for i := range jsonPaths {
		jsonFile, err := os.Open(jsonPaths[i])
		if err != nil {
			return fmt.Errorf("open shard %d json: %w", i, err)
		}
		defer jsonFile.Close()

		jasixFile, err := os.Open(jasixPaths[i])
		if err != nil {
			return fmt.Errorf("open shard %d jasix: %w", i, err)
		}
		defer jasixFile.Close()

		inputs[i] = jsonstitch.Input{JSON: jsonFile, Jasix: jasixFile}
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

	st := jsonstitch.NewStitcher(logger)
	result, err := st.Stitch(inputs, out)
	if err != nil {
		return fmt.Errorf("stitch: %w", err)
	}

	logger.Info("stitch complete",
		zap.Int("shards", len(inputs)),
		zap.Int("position_blocks", result.PositionBlockCount),
		zap.Int("total_gene_lines", result.TotalGeneLines),
		zap.Int("unique_gene_lines", result.UniqueGeneLines),
	)
	return nil
}
