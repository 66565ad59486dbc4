package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	fdb "github.com/mattkeenan/fdb/pkg"
)

// newConfigCommand creates the `fdb config` command tree
func newConfigCommand(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fdb configuration",
		Long: `Manage fdb configuration.

Configuration is an INI file stored in:
  - Linux: ~/.config/fdb/config
  - macOS: ~/Library/Application Support/fdb/config

Sections and keys:
  [filehash]     default       hash algorithm (md5)
  [inventory]    ignore        comma separated basenames to skip
  [log]          level, format
  [performance]  hash_workers  concurrent hash workers (4)
  [output]       format        duplicate report format (human)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(a)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(a)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, a.cfg.Path())
			return nil
		},
	})

	return cfgCmd
}

func showConfig(a *app) error {
	path := a.cfg.Path()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(a.stdout, "; Config file: %s\n", path)
	} else {
		fmt.Fprintln(a.stdout, "; Config file: (using defaults)")
	}
	_, err := a.cfg.WriteTo(a.stdout)
	return err
}

func initConfig(a *app) error {
	path := a.cfg.Path()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists: %s", fdb.ErrUsage, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := a.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(a.stdout, "Created config file: %s\n", path)
	return nil
}
