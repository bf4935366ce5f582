package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvanloock/dupdirs/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify dupdirs configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Min Similarity: %.1f%%\n", cfg.Analysis.MinSimilarityPercent)
			fmt.Printf("Min Size: %d bytes\n", cfg.Analysis.MinSizeBytes)
			fmt.Printf("Cache File: %s\n", orNone(cfg.Analysis.CacheFile))
			fmt.Printf("Max Workers: %s\n", workersString(cfg.Performance.MaxWorkers))
			fmt.Printf("Buffer Size: %d bytes\n", cfg.Performance.BufferSize)
			fmt.Printf("Bandwidth Limit: %s\n", bandwidthString(cfg.Performance.BandwidthLimit))
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
			fmt.Printf("Exclude: %v\n", cfg.Exclude)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func workersString(n int) string {
	if n == 0 {
		return "automatic"
	}
	return fmt.Sprintf("%d", n)
}

func bandwidthString(n int64) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d bytes/s", n)
}
