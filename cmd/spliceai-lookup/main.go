// Package main provides the spliceai-lookup command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".spliceai-lookup"

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spliceai-lookup",
		Short: "SpliceAI score lookup and hg19/hg38 liftover",
		Long: `spliceai-lookup resolves variants to SpliceAI delta scores. Scores are read
from precomputed score files when possible and computed with the SpliceAI model
otherwise. It also lifts coordinates over between hg19 and hg38.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/"+configName+".yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newLiftoverCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spliceai-lookup version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// setDefaults registers the default value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.quiet_remote_addrs", []string{})

	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.duckdb", "")

	v.SetDefault("spliceai.command", "spliceai")
	v.SetDefault("spliceai.reference.hg19", "~/hg19.fa")
	v.SetDefault("spliceai.reference.hg38", "~/hg38.fa")
	v.SetDefault("spliceai.annotation.hg19", "grch37")
	v.SetDefault("spliceai.annotation.hg38", "grch38")

	v.SetDefault("liftover.command", "liftOver")
	v.SetDefault("liftover.chains.hg19-to-hg38", "hg19ToHg38.over.chain.gz")
	v.SetDefault("liftover.chains.hg38-to-hg19", "hg38ToHg19.over.chain.gz")

	v.SetDefault("scoring.max_distance", 10000)
	v.SetDefault("scoring.workers", runtime.NumCPU())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func initConfig() error {
	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("SPLICEAI_LOOKUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("server.port", "SPLICEAI_LOOKUP_SERVER_PORT", "PORT"); err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// newLogger builds the process logger from log.level and log.development.
func newLogger(v *viper.Viper) (*zap.Logger, error) {
	var cfg zap.Config
	if v.GetBool("log.development") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	cfg.Level = level
	return cfg.Build()
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
