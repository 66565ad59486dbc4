package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	fdb "github.com/mattkeenan/fdb/pkg"
)

// Exit codes
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// version is set via -ldflags
var version = "dev"

// macOSIgnoreList is offered on Darwin when no ignore list was given
const macOSIgnoreList = `.DS_Store,Icon\r`

// app carries the flag values and the objects built from them for one run
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	goos   string

	configPath string
	logLevel   string
	logFormat  string
	ignore     string
	hash       string
	workers    int
	overrides  []string

	cfg    *fdb.Config
	logger *log.Logger
	db     *fdb.FileDB
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		goos:   runtime.GOOS,
	}
}

// run executes one command line and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := setupSignalContext(context.Background(), stderr)
	defer stop()

	a := newApp(stdin, stdout, stderr)
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return a.exitCode(root.ExecuteContext(ctx))
}

// needsDatabase marks commands that hash or read databases
const needsDatabase = "fdb/needs-database"

// scansTree marks commands that traverse a directory tree
const scansTree = "fdb/scans-tree"

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fdb",
		Short: "File database utility",
		Long: `fdb builds a content-addressed inventory of a directory tree and
derives duplicate, differential and aggregate analyses from it.

Examples:
  fdb mk ~/photos photos.csv            Build a database of a directory
  fdb fd photos.csv dupes.csv           Keep files whose content is duplicated
  fdb diff laptop.csv backup.csv out.csv  Files of laptop missing from backup
  fdb hd ~/photos                       Aggregate digest of a directory
  fdb hdb photos.csv                    Aggregate digest of a database`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", fdb.ErrUsage, err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/fdb/config)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warning, error, critical (default warning)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json, logfmt (default text)")
	flags.StringVar(&a.ignore, "ignore", "", `comma separated basenames to skip, escapes allowed (e.g. ".DS_Store,Icon\r")`)
	flags.StringVar(&a.hash, "hash", "", "hash algorithm: md5, sha1, sha256, sha512 (default md5)")
	flags.IntVar(&a.workers, "workers", 0, "number of concurrent hash workers (default 4)")
	flags.StringArrayVar(&a.overrides, "set", nil, "override a config value, as key:value (repeatable)")

	rootCmd.AddCommand(newMkCommand(a))
	rootCmd.AddCommand(newFdCommand(a))
	rootCmd.AddCommand(newDiffCommand(a))
	rootCmd.AddCommand(newHdCommand(a))
	rootCmd.AddCommand(newHdbCommand(a))
	rootCmd.AddCommand(newFindCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// setup loads the configuration, layers overrides and flags on top, and
// builds the logger and the FileDB the commands use
func (a *app) setup(cmd *cobra.Command) error {
	configPath := a.configPath
	if configPath == "" {
		configPath = fdb.DefaultConfigPath()
	}
	cfg, err := fdb.LoadConfig(configPath)
	if err != nil {
		return err
	}

	overrides := append([]string{}, a.overrides...)
	flags := cmd.Flags()
	if flags.Changed("hash") {
		overrides = append(overrides, "default:"+a.hash)
	}
	if flags.Changed("ignore") {
		overrides = append(overrides, "ignore:"+a.ignore)
	}
	if flags.Changed("log-level") {
		overrides = append(overrides, "level:"+a.logLevel)
	}
	if flags.Changed("log-format") {
		overrides = append(overrides, "log_format:"+a.logFormat)
	}
	if flags.Changed("workers") {
		overrides = append(overrides, "hash_workers:"+strconv.Itoa(a.workers))
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	all := cfg.GetAllConfig()
	logger, err := fdb.NewLogger(a.stderr, all.Log.Level, all.Log.Format)
	if err != nil {
		return fmt.Errorf("%w: %v", fdb.ErrUsage, err)
	}
	a.logger = logger
	logger.Debug("Configuration loaded", "path", cfg.Path(), "hash", all.Hash.Default,
		"ignore", all.Inventory.Ignore, "workers", all.Performance.HashWorkers)

	if cmd.Annotations[needsDatabase] == "" {
		return nil
	}

	ignoreList := all.Inventory.Ignore
	if cmd.Annotations[scansTree] != "" && ignoreList == "" {
		ignoreList = a.offerMacOSIgnore(ignoreList)
	}
	ignore, err := fdb.ParseIgnoreList(ignoreList)
	if err != nil {
		return err
	}

	algorithm, err := fdb.GetHashAlgorithm(all.Hash.Default)
	if err != nil {
		return fmt.Errorf("%w: %v", fdb.ErrUsage, err)
	}

	a.db, err = fdb.NewFileDB(fdb.Options{
		Ignore:    ignore,
		Algorithm: algorithm,
		Workers:   all.Performance.HashWorkers,
		Logger:    logger,
	})
	return err
}

// offerMacOSIgnore asks, on Darwin only, whether the Finder metadata files
// should be skipped and returns the ignore list to use
func (a *app) offerMacOSIgnore(current string) string {
	if a.goos != "darwin" {
		return current
	}

	fmt.Fprint(a.stderr, "Detected macOS: Exclude files '.DS_Store' and 'Icon' from search? (y/n)\n> ")
	answer, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return current
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return macOSIgnoreList
	default:
		return current
	}
}

// exitCode logs err and maps it to the process exit code
func (a *app) exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	logger := a.logger
	if logger == nil {
		logger = log.NewWithOptions(a.stderr, log.Options{Prefix: "fdb"})
	}

	if fdb.IsUsageError(err) {
		logger.Error(err)
		return exitUsage
	}
	if errors.Is(err, context.Canceled) {
		logger.Error("Interrupted", "err", err)
		return exitFatal
	}
	logger.Log(log.FatalLevel, err)
	return exitFatal
}

// usageArgs wraps a cobra argument validator so its failures are usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", fdb.ErrUsage, err)
		}
		return nil
	}
}
