package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/spliceai-lookup/internal/output"
	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

func newBatchCmd() *cobra.Command {
	var (
		params       resolve.Params
		outputFile   string
		outputFormat string
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "batch <input.vcf>",
		Short: "Score every variant of a VCF file",
		Long: `Score every variant of a VCF file (plain or gzipped, '-' for stdin) and write
one tab-delimited line per transcript score, or the input records with a
SpliceAI INFO field (-f vcf). Variants that cannot be scored are logged; the
VCF output keeps them unannotated. Multi-allelic records are skipped.`,
		Example: `  spliceai-lookup batch input.vcf.gz
  spliceai-lookup batch --hg 37 --distance 500 -o scores.tsv input.vcf
  spliceai-lookup batch -f vcf -o annotated.vcf input.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()
			if params.GenomeVersion != "37" && params.GenomeVersion != "38" {
				return fmt.Errorf("--hg must be 37 or 38, got %q", params.GenomeVersion)
			}
			if err := checkDistance(v, params.Distance); err != nil {
				return err
			}
			if params.Mask != 0 && params.Mask != 1 {
				return fmt.Errorf("--mask must be 0 or 1, got %d", params.Mask)
			}
			if outputFormat != "tab" && outputFormat != "vcf" {
				return fmt.Errorf("unknown output format %q", outputFormat)
			}
			if !cmd.Flags().Changed("workers") {
				workers = v.GetInt("scoring.workers")
			}

			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cache, err := openScoreCache(v, logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			stats, err := runBatch(cmd.Context(), newResolver(v, cache, logger), args[0], out, outputFormat, params, workers, logger)
			logger.Info("batch finished",
				zap.Int("variants", stats.Variants),
				zap.Int("scored", stats.Scored),
				zap.Int("lookup", stats.Lookup),
				zap.Int("failed", stats.Failed),
				zap.Int("skipped", stats.Skipped))
			return err
		},
	}

	cmd.Flags().StringVar(&params.GenomeVersion, "hg", "38", "genome version: 37 or 38")
	cmd.Flags().IntVar(&params.Distance, "distance", scorecache.DefaultDistance, "maximum distance between the variant and gained/lost splice site")
	cmd.Flags().IntVar(&params.Mask, "mask", resolve.DefaultMask, "mask scores of annotated gains and unannotated losses: 0 or 1")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "f", "tab", "output format: tab, vcf")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default from scoring.workers)")

	return cmd
}

// batchStats counts batch outcomes.
type batchStats struct {
	Variants int
	Scored   int
	Lookup   int
	Failed   int
	Skipped  int
}

// runBatch resolves every record of the VCF at inputPath and writes the
// results to out in input order.
func runBatch(ctx context.Context, r *resolve.Resolver, inputPath string, out io.Writer, format string, p resolve.Params, workers int, logger *zap.Logger) (batchStats, error) {
	var stats batchStats

	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return stats, err
	}
	defer parser.Close()

	writer, err := newResultWriter(format, out, parser)
	if err != nil {
		return stats, err
	}
	if err := writer.WriteHeader(); err != nil {
		return stats, fmt.Errorf("writing header: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan resolve.WorkItem, 2*max(workers, 1))

	g.Go(func() error {
		defer close(items)
		return feedVariants(gctx, parser, items, &stats, logger)
	})

	g.Go(func() error {
		results := r.ParallelResolve(gctx, items, p, workers)
		return resolve.OrderedCollect(results, func(wr resolve.WorkResult) error {
			if wr.Result.Err != nil {
				stats.Failed++
				logger.Warn("variant not scored",
					zap.String("variant", wr.Variant.String()),
					zap.Bool("user_error", resolve.IsUserError(wr.Result.Err)),
					zap.Error(wr.Result.Err))
			} else {
				stats.Scored++
				if wr.Result.Source == resolve.SourceLookup {
					stats.Lookup++
				}
			}
			return writer.Write(wr.Variant, wr.Result)
		})
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := writer.Flush(); err != nil {
		return stats, fmt.Errorf("flushing output: %w", err)
	}
	return stats, nil
}

func newResultWriter(format string, out io.Writer, parser vcf.VariantParser) (output.ResultWriter, error) {
	switch format {
	case "tab":
		return output.NewTabWriter(out), nil
	case "vcf":
		return output.NewVCFWriter(out, parser.Header()), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// feedVariants sends each single-allele record of parser to items, numbered
// in input order.
func feedVariants(ctx context.Context, parser vcf.VariantParser, items chan<- resolve.WorkItem, stats *batchStats, logger *zap.Logger) error {
	seq := 0
	for {
		v, err := parser.Next()
		if err != nil {
			return err
		}
		if v == nil {
			return nil
		}
		stats.Variants++
		if v.IsMultiAllelic() {
			stats.Skipped++
			logger.Warn("skipping multi-allelic record",
				zap.Int("line", parser.LineNumber()),
				zap.String("chrom", v.Chrom),
				zap.Int64("pos", v.Pos),
				zap.String("alt", v.Alt))
			continue
		}
		select {
		case items <- resolve.WorkItem{Seq: seq, Variant: v}:
			seq++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
