package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkex/internal/config"
	"github.com/nao1215/linkex/internal/database"
	"github.com/nao1215/linkex/internal/extract"
	"github.com/nao1215/linkex/internal/fetch"
	"github.com/nao1215/linkex/internal/log"
	"github.com/nao1215/linkex/internal/model"
	"github.com/nao1215/linkex/internal/pipeline"
	"github.com/nao1215/linkex/internal/report"
)

// NewRootCmd creates the root command for linkex.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkex [base-url]",
		Short: "Extract, canonicalize and de-duplicate links from HTML or text",
		Long: `linkex reads HTML or free text, finds link references and prints them
as absolute URLs, one per line.

Relative links are joined with the optional base URL. Links starting with
"www" get an "http://" prefix. Links that differ only by scheme
(http vs https) are printed once, in the order they were found.

By default only href="..." attribute values are extracted. With --all the
whole text is also scanned for bare http(s):// and www. URLs.

Input is read from standard input unless --source is given.

Examples:
  # Extract links from a saved page
  linkex https://example.com < page.html

  # Fetch the page, scan the whole text and keep only GitHub links
  linkex --all --source https://example.com/page --filter github.com https://example.com

  # Fetch through a local Tor daemon
  linkex -s http://exampleonionaddress.onion -x 127.0.0.1:9050 http://exampleonionaddress.onion

  # Record the run and review it later
  linkex --save https://example.com < page.html
  linkex history`,
		Version:       getVersion(),
		Args:          cobra.MaximumNArgs(1),
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging on stderr")
	cmd.PersistentFlags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Extraction flags
	cmd.Flags().BoolP("all", "a", false,
		"Scan the whole text for bare http(s):// and www. URLs, not only href values")
	cmd.Flags().StringP("filter", "f", "",
		"Print only links containing this substring (case-sensitive)")

	// Source flags
	cmd.Flags().StringP("source", "s", "",
		"Fetch the input from this http(s) URL instead of standard input")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address for --source (e.g., 127.0.0.1:9050)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for fetching --source (0 disables it)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkex in current or home directory)")

	// History
	cmd.Flags().Bool("save", false, "Record this run in the history database")

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runRootCmd extracts links from the configured source.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	src, err := newSource(cfg, cmd.InOrStdin(), logger)
	if err != nil {
		return err
	}

	return runExtract(ctx, cfg, src, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir returns the history database directory from the --db-dir flag,
// falling back to the XDG data directory.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		dir, err = cmd.Root().PersistentFlags().GetString("db-dir")
		if err != nil {
			dir = ""
		}
	}
	if dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// buildConfig creates a Config from the configuration file and flags.
// Precedence, lowest first: built-in defaults, the file's defaults, the
// file's entry for the source host, explicitly set flags, the base URL
// argument.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Source, err = cmd.Flags().GetString("source")
	if err != nil {
		return nil, err
	}

	file, err := loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	cfg.Apply(file.GetSourceConfig(cfg.Source))
	if cfg.Source == "" {
		// A proxy from the file only applies to fetched sources.
		cfg.ProxyAddress = ""
	}

	flags := cmd.Flags()
	if flags.Changed("all") {
		if cfg.All, err = flags.GetBool("all"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("filter") {
		if cfg.Filter, err = flags.GetString("filter"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	cfg.SaveToDB, err = flags.GetBool("save")
	if err != nil {
		return nil, err
	}
	cfg.DBDir = getDBDir(cmd)
	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) > 0 {
		cfg.Base = args[0]
	}

	return cfg, nil
}

// loadConfigFile loads the configuration file. A missing file is an error
// only when its path was given explicitly.
func loadConfigFile(path string) (*config.File, error) {
	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return &config.File{Sources: make(map[string]config.SourceConfig)}, nil
	}

	file, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return file, nil
}

// newSource returns the Source described by cfg. Without a source URL the
// input is read from stdin.
func newSource(cfg *config.Config, stdin io.Reader, logger *slog.Logger) (fetch.Source, error) {
	if cfg.Source == "" {
		return fetch.NewReaderSource(stdin), nil
	}

	opts := []fetch.HTTPOption{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithHeaders(cfg.Headers),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}

	src, err := fetch.NewHTTPSource(cfg.Source, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return src, nil
}

// runExtract reads src, runs the extraction pipeline, writes the links to
// out and optionally records the run.
func runExtract(ctx context.Context, cfg *config.Config, src fetch.Source, out io.Writer, logger *slog.Logger) error {
	content, err := src.Read(ctx)
	if err != nil {
		return err
	}

	run := model.NewRun(src.Name(), content)

	p := pipeline.DefaultPipeline(
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineMode(extract.ModeFor(cfg.All)),
		pipeline.WithPipelineBase(cfg.Base),
		pipeline.WithPipelineFilter(cfg.Filter),
	)
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if _, err := report.NewSimpleWriter(out).WriteRun(run); err != nil {
		return fmt.Errorf("failed to write links: %w", err)
	}

	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	seen, err := db.CountByContentHash(ctx, run.ContentHash)
	if err != nil {
		return err
	}
	if seen > 0 {
		logger.Info("input already recorded", "runs", seen, "contentHash", run.ContentHash)
	}

	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}
	logger.Info("run saved", "id", run.ID, "db", db.Path())

	return nil
}
