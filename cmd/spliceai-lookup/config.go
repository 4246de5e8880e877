package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage spliceai-lookup configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/` + configName + `.yaml.
'config' shows the effective settings; 'config set' writes only the given key
and keys already present in the file.`,
		Example: `  spliceai-lookup config                                   # show effective config
  spliceai-lookup config set cache.dir /mnt/disks/cache    # use precomputed score files
  spliceai-lookup config set server.quiet_remote_addrs 10.0.0.1,10.0.0.2
  spliceai-lookup config get liftover.chains.hg19-to-hg38  # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout(), viper.GetViper())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file. Integer keys take a number,
boolean keys take true/false (or yes/no, on/off) and list keys take a
comma-separated list. cache.files must be edited in the file directly.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			return runConfigSet(cmd.OutOrStdout(), path, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), viper.GetViper(), args[0])
		},
	}
}

func runConfigShow(w io.Writer, v *viper.Viper) error {
	out, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if cfg := v.ConfigFileUsed(); cfg != "" {
		fmt.Fprintf(w, "# Config file: %s\n", cfg)
	} else {
		fmt.Fprintf(w, "# No config file found, showing defaults. Config file: ~/%s.yaml\n", configName)
	}
	_, err = w.Write(out)
	return err
}

// configPath returns the config file in use, or the default location.
func configPath() (string, error) {
	if cfg := viper.ConfigFileUsed(); cfg != "" {
		return cfg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// runConfigSet stores key in the config file at path. Defaults and
// environment overrides are not written, so they keep applying.
func runConfigSet(w io.Writer, path, key, value string) error {
	key = strings.ToLower(key)
	val, err := configValue(key, value)
	if err != nil {
		return err
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	file.Set(key, val)

	if err := file.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %v in %s\n", key, val, path)
	return nil
}

// configValue converts value to the type of key's default. Keys without a
// default are rejected.
func configValue(key, value string) (any, error) {
	defaults := viper.New()
	setDefaults(defaults)
	if !slices.Contains(defaults.AllKeys(), key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}

	switch defaults.Get(key).(type) {
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", key, value)
		}
		return n, nil
	case bool:
		switch strings.ToLower(value) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("%s must be true or false, got %q", key, value)
	case []string:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	}
	return value, nil
}

func runConfigGet(w io.Writer, v *viper.Viper, key string) error {
	val := v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
