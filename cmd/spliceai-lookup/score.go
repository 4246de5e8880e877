package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/spliceai-lookup/internal/liftover"
	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
)

func newScoreCmd() *cobra.Command {
	var (
		genomeVersion string
		distance      int
		mask          int
	)

	cmd := &cobra.Command{
		Use:   "score <variant>",
		Short: "Resolve one variant to SpliceAI scores and print them as JSON",
		Example: `  spliceai-lookup score chr8-140300615-C-G
  spliceai-lookup score --hg 37 --distance 500 --mask 1 "8:140300615 C>G"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()
			if genomeVersion != "37" && genomeVersion != "38" {
				return fmt.Errorf("--hg must be 37 or 38, got %q", genomeVersion)
			}
			if mask != 0 && mask != 1 {
				return fmt.Errorf("--mask must be 0 or 1, got %d", mask)
			}
			if err := checkDistance(v, distance); err != nil {
				return err
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

			res := newResolver(v, cache, logger).Resolve(cmd.Context(), args[0], genomeVersion, distance, mask)
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			return res.Err
		},
	}

	cmd.Flags().StringVar(&genomeVersion, "hg", "38", "genome version: 37 or 38")
	cmd.Flags().IntVar(&distance, "distance", scorecache.DefaultDistance, "maximum distance between the variant and gained/lost splice site")
	cmd.Flags().IntVar(&mask, "mask", resolve.DefaultMask, "mask scores of annotated gains and unannotated losses: 0 or 1")

	return cmd
}

func newLiftoverCmd() *cobra.Command {
	var (
		hg     string
		format string
		req    liftover.Request
	)

	cmd := &cobra.Command{
		Use:   "liftover",
		Short: "Lift an interval, position or variant over between hg19 and hg38",
		Example: `  spliceai-lookup liftover --hg hg19-to-hg38 --format interval --chrom chr8 --start 140300615 --end 140300620
  spliceai-lookup liftover --hg hg38-to-hg19 --format variant --chrom 8 --pos 140300615 --ref C --alt G`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Direction, err = liftover.ParseDirection(hg); err != nil {
				return err
			}
			if req.Format, err = liftover.ParseFormat(format); err != nil {
				return err
			}

			v := viper.GetViper()
			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runLiftover(cmd.Context(), newTransformer(v, logger), req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&hg, "hg", string(liftover.HG19ToHG38), "direction: hg19-to-hg38 or hg38-to-hg19")
	cmd.Flags().StringVar(&format, "format", string(liftover.FormatInterval), "request format: interval, position or variant")
	cmd.Flags().StringVar(&req.Chrom, "chrom", "", "chromosome")
	cmd.Flags().Int64Var(&req.Start, "start", 0, "interval start (0-based)")
	cmd.Flags().Int64Var(&req.End, "end", 0, "interval end (exclusive)")
	cmd.Flags().Int64Var(&req.Pos, "pos", 0, "position (1-based) for position and variant formats")
	cmd.Flags().StringVar(&req.Ref, "ref", "", "reference allele for variant format")
	cmd.Flags().StringVar(&req.Alt, "alt", "", "alternate allele for variant format")
	cmd.MarkFlagRequired("chrom")

	return cmd
}

func runLiftover(ctx context.Context, t *liftover.Transformer, req liftover.Request, w io.Writer) error {
	res, err := t.Liftover(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(w, res)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// checkDistance enforces 0 <= distance <= scoring.max_distance.
func checkDistance(v *viper.Viper, distance int) error {
	if maxDistance := v.GetInt("scoring.max_distance"); distance < 0 || distance > maxDistance {
		return fmt.Errorf("--distance must be between 0 and %d, got %d", maxDistance, distance)
	}
	return nil
}
