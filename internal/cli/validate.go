package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jvanloock/dupdirs/pkg/config"
)

// validateRoots checks that every root exists and is a directory, and
// resolves each to an absolute path.
func validateRoots(args []string) ([]string, error) {
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("root path does not exist: %s", arg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to access root path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root path is not a directory: %s", arg)
		}

		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path: %w", err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) error {
	if analyzeFlags.MinSimilarity >= 0 {
		if analyzeFlags.MinSimilarity > 100 {
			return fmt.Errorf("invalid --min-similarity: %v (must be between 0 and 100)", analyzeFlags.MinSimilarity)
		}
		cfg.Analysis.MinSimilarityPercent = analyzeFlags.MinSimilarity
	}

	if analyzeFlags.MinSize != "" {
		size, err := parseByteSize(analyzeFlags.MinSize)
		if err != nil {
			return fmt.Errorf("invalid --min-size: %w", err)
		}
		cfg.Analysis.MinSizeBytes = size
	}

	if analyzeFlags.Workers > 0 {
		cfg.Performance.MaxWorkers = analyzeFlags.Workers
	}

	if analyzeFlags.Bandwidth != "" {
		limit, err := parseByteSize(analyzeFlags.Bandwidth)
		if err != nil {
			return fmt.Errorf("invalid --bandwidth: %w", err)
		}
		cfg.Performance.BandwidthLimit = limit
	}

	if len(analyzeFlags.Exclude) > 0 {
		cfg.Exclude = analyzeFlags.Exclude
	}

	if analyzeFlags.Output != "" {
		cfg.Output.Format = analyzeFlags.Output
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", cfg.Output.Format)
	}

	return nil
}
