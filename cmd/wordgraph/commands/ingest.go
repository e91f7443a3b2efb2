package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wordgraph/internal/codec"
	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
	"github.com/gyaneshwarpardhi/wordgraph/internal/ingest"
)

var (
	ingestOut    string
	ingestFormat string
	ingestAppend bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Build a snapshot from text files",
	Long: `Tokenize each text file into the graph and write the result as a snapshot.

With --append the existing snapshot at --out is loaded first and extended.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configOrDefault()
		if err != nil {
			return err
		}
		out := ingestOut
		if out == "" {
			out = cfg.Snapshot.Path
		}
		if out == "" {
			return fmt.Errorf("no output path: pass --out or set snapshot.path")
		}
		format := ingestFormat
		if format == "" && ingestOut == "" {
			format = cfg.Snapshot.Format
		}

		codecs := codec.Default()
		c, err := codecs.Resolve(format, out)
		if err != nil {
			return err
		}

		store, err := ingestTarget(c, out, cfg.Store.CacheCapacity)
		if err != nil {
			return err
		}

		eng := ingest.New(cmd.Context(), store, cfg.Ingest)
		defer eng.Shutdown()

		for _, path := range args {
			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			res := eng.Ingest(cmd.Context(), &ingest.Document{Source: filepath.Base(path), Text: string(text)})
			if res.Error != "" {
				return fmt.Errorf("ingest %s: %s", path, res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tokens, %d sentences, %d new nodes (%dms)\n",
				path, res.Tokens, res.Sentences, res.NewNodes, res.DurationMs)
		}

		if err := codec.SaveStore(c, out, store); err != nil {
			return err
		}
		st := store.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s): %d nodes, %d edges\n", out, c.Format(), st.Nodes, st.Edges)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOut, "out", "o", "", "Snapshot to write (default snapshot.path)")
	ingestCmd.Flags().StringVarP(&ingestFormat, "format", "f", "", "Snapshot format (default by extension)")
	ingestCmd.Flags().BoolVar(&ingestAppend, "append", false, "Extend the existing snapshot instead of replacing it")
}

func ingestTarget(c codec.Codec, path string, cacheCapacity int) (*graph.Store, error) {
	if !ingestAppend {
		return graph.NewStore(cacheCapacity)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return graph.NewStore(cacheCapacity)
	}
	store, err := codec.LoadStore(c, path, cacheCapacity)
	if store == nil {
		return nil, err
	}
	if err != nil {
		slog.Warn("existing snapshot loaded with errors", "path", path, "err", err)
	}
	return store, nil
}
