package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fdb "github.com/mattkeenan/fdb/pkg"
)

func newMkCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "mk <input-directory> <output-file>",
		Short:       "Make a database of a directory",
		Args:        usageArgs(cobra.ExactArgs(2)),
		Annotations: map[string]string{needsDatabase: "true", scansTree: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.db.MakeDatabase(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			a.logger.Info("Database written", "path", args[1], "records", len(inv),
				"complete", inv.Complete(), "size", fdb.FormatSize(inv.TotalSize()))
			return nil
		},
	}
}

func newFdCommand(a *app) *cobra.Command {
	var report bool
	var format string

	cmd := &cobra.Command{
		Use:   "fd <input-file> <output-file>",
		Short: "Find duplicates in a database",
		Long: `Find duplicates in a database.

Every record whose hash occurs at least twice is written to the output
database. With --report the duplicate groups are also printed to stdout.`,
		Args:        usageArgs(cobra.ExactArgs(2)),
		Annotations: map[string]string{needsDatabase: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.GetOutputConfig().Format
			}
			if err := fdb.ValidateOutputFormat(format); err != nil {
				return err
			}

			dupes, err := a.db.FindDuplicatesDatabase(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !report {
				return nil
			}
			return fdb.WriteDuplicateGroups(a.stdout, fdb.DuplicateGroups(dupes), format)
		},
	}

	cmd.Flags().BoolVar(&report, "report", false, "print the duplicate groups")
	cmd.Flags().StringVar(&format, "format", "", "report format: human, json, fdupes (default from config)")
	return cmd
}

func newDiffCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <source-db> <destination-db> <output-file>",
		Short: "Files of the source database whose content is missing from the destination",
		Long: `Compare two databases by content.

Every record of the source whose hash does not occur in the destination is
written to the output database. Paths and names are not compared.`,
		Args:        usageArgs(cobra.ExactArgs(3)),
		Annotations: map[string]string{needsDatabase: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.db.DiffDatabases(cmd.Context(), args[0], args[1], args[2])
			return err
		},
	}
}

func newHdCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "hd <directory>",
		Short:       "Aggregate digest of a directory",
		Args:        usageArgs(cobra.ExactArgs(1)),
		Annotations: map[string]string{needsDatabase: "true", scansTree: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.db.HashDirectory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, result)
			return nil
		},
	}
}

func newHdbCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "hdb <input-file>",
		Short:       "Aggregate digest of a database",
		Args:        usageArgs(cobra.ExactArgs(1)),
		Annotations: map[string]string{needsDatabase: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.db.HashDatabase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, result)
			return nil
		},
	}
}

func newFindCommand(a *app) *cobra.Command {
	var opts fdb.SearchOptions
	var size string
	var count, long bool

	cmd := &cobra.Command{
		Use:   "find <input-file>",
		Short: "Search a database",
		Long: `Search a database for records matching every given filter.

Examples:
  fdb find photos.csv --name '*.jpg'
  fdb find photos.csv --hash-prefix 9e107d
  fdb find photos.csv --degraded`,
		Args:        usageArgs(cobra.ExactArgs(1)),
		Annotations: map[string]string{needsDatabase: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("size") {
				exact, err := fdb.ParseHumanSize(size)
				if err != nil {
					return fmt.Errorf("%w: invalid --size: %v", fdb.ErrUsage, err)
				}
				opts.ExactSize = &exact
			}

			matches, err := a.db.SearchDatabase(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			if count {
				fmt.Fprintln(a.stdout, len(matches))
				return nil
			}
			for _, rec := range matches {
				switch {
				case !long:
					fmt.Fprintln(a.stdout, rec.Path)
				case rec.Degraded:
					fmt.Fprintf(a.stdout, "%-32s %12s %s\n", fdb.NotAvailable, fdb.NotAvailable, rec.Path)
				default:
					fmt.Fprintf(a.stdout, "%s %12d %s\n", rec.Hash, rec.Size, rec.Path)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Pattern, "name", "", "basename glob pattern")
	flags.StringVar(&opts.PathPrefix, "path", "", "path prefix")
	flags.StringVar(&opts.HashPrefix, "hash-prefix", "", "hash prefix")
	flags.StringVar(&size, "size", "", "exact file size, e.g. 512, 4k, 2M")
	flags.BoolVar(&opts.DegradedOnly, "degraded", false, "only unreadable files")
	flags.BoolVar(&count, "count", false, "print the number of matches only")
	flags.BoolVarP(&long, "long", "l", false, "print hash and size with each path")
	return cmd
}
