package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvanloock/dupdirs/pkg/analyze"
	"github.com/jvanloock/dupdirs/pkg/cache"
	"github.com/jvanloock/dupdirs/pkg/config"
	"github.com/jvanloock/dupdirs/pkg/logging"
	"github.com/jvanloock/dupdirs/pkg/match"
	"github.com/jvanloock/dupdirs/pkg/models"
	"github.com/jvanloock/dupdirs/pkg/output"
	"github.com/jvanloock/dupdirs/pkg/progress"
	"github.com/jvanloock/dupdirs/pkg/storage"
)

// Exit codes by outcome.
const (
	exitOK        = 0
	exitWithSkips = 1
	exitFailed    = 2
	exitCancelled = 3
)

// AnalyzeFlags holds analyze command flags
type AnalyzeFlags struct {
	MinSimilarity float64
	MinSize       string
	Workers       int
	Bandwidth     string
	Exclude       []string
	Timeout       time.Duration
	Output        string
	CacheFile     string
	Details       bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var analyzeFlags AnalyzeFlags

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <root>...",
		Short: "Find duplicate folders under one or more roots",
		Long: `Scan one or more directory trees, detect files duplicated across
folders, and report folder pairs ranked by similarity.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Float64Var(&analyzeFlags.MinSimilarity, "min-similarity", -1, "minimum similarity percentage to report (default: 50)")
	cmd.Flags().StringVar(&analyzeFlags.MinSize, "min-size", "", "minimum folder size to report (e.g. \"1M\", default: 1M)")
	cmd.Flags().IntVarP(&analyzeFlags.Workers, "parallel", "p", 0, "number of parallel workers (default: CPU count - 1)")
	cmd.Flags().StringVarP(&analyzeFlags.Bandwidth, "bandwidth", "b", "", "hash read bandwidth limit (e.g. \"10M\", \"1G\")")
	cmd.Flags().StringSliceVar(&analyzeFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().DurationVar(&analyzeFlags.Timeout, "timeout", 0, "abort the analysis after this duration (e.g. \"30m\")")
	cmd.Flags().StringVarP(&analyzeFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&analyzeFlags.CacheFile, "cache", "", "snapshot file to load before and save after the run")
	cmd.Flags().BoolVar(&analyzeFlags.Details, "details", false, "show the per-pair file listing under each match")

	// Logging flags
	cmd.Flags().StringVar(&analyzeFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&analyzeFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&analyzeFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	roots, err := validateRoots(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cfg); err != nil {
		return err
	}

	logger, err := createLogger(analyzeFlags.LogFile, analyzeFlags.LogFormat, analyzeFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	backend := storage.NewLocal()
	store := cache.NewStore()

	cacheFile := analyzeFlags.CacheFile
	if cacheFile == "" {
		cacheFile = cfg.Analysis.CacheFile
	}
	if cacheFile != "" {
		if err := loadSnapshot(ctx, cacheFile, store, backend); err != nil {
			return err
		}
	}

	var reporter progress.Reporter
	var bars *output.BarReporter
	if cfg.Output.Progress && !cfg.Output.Quiet && cfg.Output.Format == "human" {
		bars = output.NewBarReporter(os.Stderr)
		reporter = bars
	}

	criteria := cfg.Criteria()

	session := analyze.NewSession(analyze.Options{
		Roots:          roots,
		Criteria:       criteria,
		Workers:        cfg.Performance.MaxWorkers,
		BufferSize:     cfg.Performance.BufferSize,
		BandwidthLimit: cfg.Performance.BandwidthLimit,
		Excludes:       cfg.Exclude,
		Timeout:        analyzeFlags.Timeout,
		Backend:        backend,
		Store:          store,
		Logger:         logger,
		Reporter:       reporter,
	})

	result, err := session.Run(ctx)
	if bars != nil {
		bars.Close()
	}

	formatter := newFormatter(cfg, session)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			formatter.Error(fmt.Errorf("analysis cancelled: %w", err))
			os.Exit(exitCancelled)
		}
		formatter.Error(err)
		os.Exit(exitFailed)
	}

	if cacheFile != "" {
		if err := cache.SaveSnapshot(store.ExportSnapshot(roots), cacheFile); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	if err := formatter.Complete(result); err != nil {
		return err
	}

	if result.Errors.HasErrors() {
		os.Exit(exitWithSkips)
	}
	os.Exit(exitOK)
	return nil
}

// newFormatter builds the output formatter, wiring detail lookups
// against the session store for the human renderer.
func newFormatter(cfg *config.Config, session *analyze.Session) output.Formatter {
	formatter := output.ForFormat(cfg.Output.Format)
	if human, ok := formatter.(*output.HumanFormatter); ok {
		human.ShowDetails = analyzeFlags.Details
		human.Details = func(m models.FolderMatch) []models.FileDetail {
			details := match.BuildFileDetails(m.LeftFolder, m.RightFolder, m.DuplicateFiles, session.Store())
			return match.FilterDetails(details, globalFlags.Verbose)
		}
	}

	out := os.Stdout
	if cfg.Output.Quiet && cfg.Output.Format == "human" {
		return discardFormatter{formatter}
	}
	formatter.Start(out)
	return formatter
}

// discardFormatter suppresses human output in quiet mode while still
// letting errors through to stderr.
type discardFormatter struct {
	output.Formatter
}

func (d discardFormatter) Complete(*analyze.Result) error { return nil }

func (d discardFormatter) Error(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return nil
}

// loadSnapshot restores the store from a snapshot file when one
// exists; a missing file is a fresh start, not an error.
func loadSnapshot(ctx context.Context, path string, store *cache.Store, backend storage.Backend) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	snap, err := cache.LoadSnapshot(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := store.ImportSnapshot(ctx, snap, backend); err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}
	return nil
}

// createLogger creates a logger based on configuration
func createLogger(logFile, logFormat, logLevel string) (logging.Logger, error) {
	// If no log file specified, return null logger
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch logFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:   logFile,
		Format: format,
		Level:  logging.ParseLevel(logLevel),
	})
}
