package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/duckdb"
	"github.com/inodb/spliceai-lookup/internal/liftover"
	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/scorer"
)

// scoreFile is one entry of cache.files.
type scoreFile struct {
	Key  string `mapstructure:"key"`
	Path string `mapstructure:"path"`
}

// scoreCache owns the score files and optional DuckDB store opened at startup.
type scoreCache struct {
	set   *scorecache.Set
	store *duckdb.Store
}

func (c *scoreCache) Close() error {
	err := c.set.Close()
	if c.store != nil {
		if serr := c.store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// openScoreCache opens the score files named by cache.files, or the
// conventionally named files in cache.dir. Keys still missing are served from
// cache.duckdb when it is set.
func openScoreCache(v *viper.Viper, logger *zap.Logger) (*scoreCache, error) {
	var files []scoreFile
	if err := v.UnmarshalKey("cache.files", &files); err != nil {
		return nil, fmt.Errorf("cache.files: %w", err)
	}

	var set *scorecache.Set
	var err error
	switch {
	case len(files) > 0:
		paths := make(map[string]string, len(files))
		for _, f := range files {
			paths[f.Key] = expandHome(f.Path)
		}
		set, err = scorecache.OpenFiles(paths)
	case v.GetString("cache.dir") != "":
		set, err = scorecache.OpenDir(expandHome(v.GetString("cache.dir")))
	default:
		set = scorecache.NewSet()
	}
	if err != nil {
		return nil, err
	}
	c := &scoreCache{set: set}

	if dbPath := v.GetString("cache.duckdb"); dbPath != "" {
		store, err := duckdb.Open(expandHome(dbPath))
		if err != nil {
			set.Close()
			return nil, err
		}
		c.store = store

		keys, err := store.Keys()
		if err != nil {
			c.Close()
			return nil, err
		}
		for _, k := range keys {
			if !set.Has(k) {
				set.Add(k, store.Fetcher(k))
				logger.Info("serving scores from duckdb", zap.String("key", k.String()))
			}
		}
	}

	for _, k := range set.Keys() {
		logger.Debug("score cache key available", zap.String("key", k.String()))
	}
	if set.Len() == 0 {
		logger.Warn("no score files configured; every variant will be scored by the model")
	}
	return c, nil
}

// newScorer creates the model scorer from the spliceai.* keys.
func newScorer(v *viper.Viper, logger *zap.Logger) *scorer.Command {
	s := scorer.NewCommand(v.GetString("spliceai.command"), scorer.Annotators{
		"37": {
			Annotation: v.GetString("spliceai.annotation.hg19"),
			Reference:  expandHome(v.GetString("spliceai.reference.hg19")),
		},
		"38": {
			Annotation: v.GetString("spliceai.annotation.hg38"),
			Reference:  expandHome(v.GetString("spliceai.reference.hg38")),
		},
	})
	s.SetLogger(logger)
	return s
}

// newResolver wires the score cache and model scorer together.
func newResolver(v *viper.Viper, cache *scoreCache, logger *zap.Logger) *resolve.Resolver {
	r := resolve.NewResolver(cache.set, newScorer(v, logger))
	r.SetLogger(logger)
	return r
}

// newTransformer creates the liftover transformer from the liftover.* keys.
func newTransformer(v *viper.Viper, logger *zap.Logger) *liftover.Transformer {
	chains := make(map[liftover.Direction]string, len(liftover.Directions))
	for _, d := range liftover.Directions {
		chains[d] = expandHome(v.GetString("liftover.chains." + string(d)))
	}
	tool := liftover.NewUCSCTool(v.GetString("liftover.command"), chains)
	tool.SetLogger(logger)
	return liftover.NewTransformer(tool)
}
