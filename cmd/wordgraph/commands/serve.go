package commands

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wordgraph/internal/api"
	"github.com/gyaneshwarpardhi/wordgraph/internal/codec"
	"github.com/gyaneshwarpardhi/wordgraph/internal/config"
	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
	"github.com/gyaneshwarpardhi/wordgraph/internal/ingest"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API over a single in-memory store.

The config file is watched; edits to ingest.edge_increment apply
immediately, other settings need a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides server.addr)")
}

func serve(parent context.Context) error {
	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(cfgFile)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	// ── Store ─────────────────────────────────────────────────────────────────
	codecs := codec.Default()
	store, err := openStore(codecs, cfg)
	if err != nil {
		return err
	}
	st := store.Stats()
	slog.Info("store ready", "nodes", st.Nodes, "edges", st.Edges, "cache_capacity", st.CacheCap)

	// ── Ingest engine ─────────────────────────────────────────────────────────
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	eng := ingest.New(ctx, store, cfg.Ingest)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	current := cfg
	loader.OnChange(func(next *config.Config) {
		if keys := config.RestartRequired(current, next); len(keys) > 0 {
			slog.Warn("config change needs a restart to take effect", "settings", keys)
		}
		eng.SetIncrement(next.Ingest.EdgeIncrement)
		slog.Info("config hot-reloaded", "edge_increment", next.Ingest.EdgeIncrement)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(store, eng, loader, codecs),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	errC := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errC:
		slog.Error("server error", "err", err)
		return err
	}
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown()
	cancel()

	if snap := loader.Config().Snapshot; snap.SaveOnExit {
		if err := saveStore(codecs, snap, store); err != nil {
			slog.Error("snapshot on exit failed", "path", snap.Path, "err", err)
		}
	}
	slog.Info("goodbye")
	return nil
}

// openStore restores the snapshot named in cfg when requested and present,
// or returns an empty store.
func openStore(codecs *codec.Registry, cfg *config.Config) (*graph.Store, error) {
	snap := cfg.Snapshot
	if !snap.LoadOnStart {
		return graph.NewStore(cfg.Store.CacheCapacity)
	}
	if _, err := os.Stat(snap.Path); errors.Is(err, fs.ErrNotExist) {
		slog.Info("no snapshot to restore", "path", snap.Path)
		return graph.NewStore(cfg.Store.CacheCapacity)
	}
	c, err := codecs.Resolve(snap.Format, snap.Path)
	if err != nil {
		return nil, err
	}
	store, err := codec.LoadStore(c, snap.Path, cfg.Store.CacheCapacity)
	if store == nil {
		return nil, err
	}
	if err != nil {
		slog.Warn("snapshot restored with errors", "path", snap.Path, "err", err)
	}
	return store, nil
}

func saveStore(codecs *codec.Registry, snap config.SnapshotConf, store *graph.Store) error {
	c, err := codecs.Resolve(snap.Format, snap.Path)
	if err != nil {
		return err
	}
	if err := codec.SaveStore(c, snap.Path, store); err != nil {
		return err
	}
	slog.Info("snapshot written", "path", snap.Path, "format", c.Format())
	return nil
}
