package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/duckdb"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
)

func newImportCmd() *cobra.Command {
	var (
		keyName string
		dbPath  string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "import <scores.vcf.gz>",
		Short: "Load a SpliceAI score file into the DuckDB score store",
		Long: `Load a SpliceAI score file into the DuckDB score store named by cache.duckdb
(or --db). The key is masking.class.assembly, e.g. raw.snv.hg38. When --key is
omitted it is taken from a conventional file name such as
spliceai_scores.raw.snv.hg38.vcf.gz. Importing a key replaces its previous
records; an unchanged file that was already imported is skipped.`,
		Example: `  spliceai-lookup import spliceai_scores.raw.snv.hg38.vcf.gz
  spliceai-lookup import --key masked.indel.hg19 --db scores.duckdb subset.vcf.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()
			if dbPath == "" {
				dbPath = v.GetString("cache.duckdb")
			}
			if dbPath == "" {
				return fmt.Errorf("no DuckDB store: set cache.duckdb or pass --db")
			}

			k, err := importKey(keyName, args[0])
			if err != nil {
				return err
			}

			logger, err := newLogger(v)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := duckdb.Open(expandHome(dbPath))
			if err != nil {
				return err
			}
			defer store.Close()

			return runImport(cmd.Context(), store, k, args[0], force, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&keyName, "key", "", "score key masking.class.assembly (default from file name)")
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB file (default from cache.duckdb)")
	cmd.Flags().BoolVar(&force, "force", false, "import even if the file is unchanged since the last import")

	return cmd
}

// importKey returns the key named by --key, or the key encoded in a
// conventional score file name.
func importKey(keyName, path string) (scorecache.Key, error) {
	if keyName != "" {
		return scorecache.ParseKey(keyName)
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(strings.TrimPrefix(base, "spliceai_scores."), ".vcf.gz")
	k, err := scorecache.ParseKey(name)
	if err != nil {
		return scorecache.Key{}, fmt.Errorf("cannot infer key from %s, pass --key: %w", base, err)
	}
	return k, nil
}

func runImport(ctx context.Context, store *duckdb.Store, k scorecache.Key, path string, force bool, w io.Writer, logger *zap.Logger) error {
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return err
	}
	if !force && store.Current(k, fp) {
		fmt.Fprintf(w, "%s is up to date with %s\n", k, path)
		return nil
	}

	logger.Info("importing scores", zap.String("key", k.String()), zap.String("path", path))
	n, err := store.ImportScores(ctx, k, path)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	fmt.Fprintf(w, "Imported %d records for %s into %s\n", n, k, store.Path())
	return nil
}
