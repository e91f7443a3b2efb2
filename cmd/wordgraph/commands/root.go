package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wordgraph/internal/config"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "wordgraph",
	Short: "In-memory word graph store",
	Long: `wordgraph keeps a directed, weighted graph of words in memory.

Text is tokenized into nodes, consecutive words are linked by edges whose
strength grows each time the pair recurs, and the graph can be queried,
traversed and exported over HTTP or saved as a snapshot.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/wordgraph.yaml", "Path to YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(convertCmd)
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

// configOrDefault reads the config file when it exists and falls back to
// built-in defaults otherwise. Offline commands use it; serve requires the file.
func configOrDefault() (*config.Config, error) {
	l, err := config.NewLoader(cfgFile)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", cfgFile)
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return l.Config(), nil
}
