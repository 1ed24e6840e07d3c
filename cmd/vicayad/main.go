// Command vicayad is the long-running indexing daemon: it cold-scans the
// configured roots, watches them for changes, and answers search/status/
// rebuild/shutdown requests over a Unix domain socket. Flags are parsed
// with ff.Parse from github.com/peterbourgon/ff/v3 over a plain
// flag.FlagSet; there are no ffcli subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"

	"github.com/vicaya/vicaya"
	"github.com/vicaya/vicaya/config"
	"github.com/vicaya/vicaya/daemon"
	"github.com/vicaya/vicaya/index"
	"github.com/vicaya/vicaya/scanner"
	"github.com/vicaya/vicaya/snapshot"
	"github.com/vicaya/vicaya/watcher"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vicayad:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("vicayad", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "path to vicaya.toml")
		dev        = fs.Bool("dev", false, "use a development logger")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("VICAYAD")); err != nil {
		return err
	}

	if *configPath == "" {
		return fmt.Errorf("-config is required")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dev {
		cfg.Logging.Dev = true
	}

	log, err := newLogger(cfg.Logging.Dev)
	if err != nil {
		return err
	}
	defer log.Sync()

	snap, err := loadOrBuild(cfg, log)
	if err != nil {
		return err
	}

	store := index.New(snap, cfg.Index.RebuildThreshold)

	rebuild := func() (*vicaya.Snapshot, error) {
		return coldScan(cfg)
	}

	srv := daemon.New(store, cfg.Index.SnapshotPath, rebuild, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := watcher.New(cfg.Index.Roots, excludeFunc(cfg.Index.Exclusions), time.Duration(cfg.Index.WatchDebounceMs)*time.Millisecond)
	if err != nil {
		return err
	}
	go w.Run(ctx)
	go applyWatchEvents(w, store, rebuild, log)
	go watchMemory(ctx, store, cfg.Index.MaxMemoryMB, log)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sig
		log.Info("vicayad: received shutdown signal, flushing index")
		if err := srv.Flush(); err != nil {
			log.Error("vicayad: flush failed", zap.Error(err))
		}
		srv.Stop()
		cancel()
	}()

	log.Info("vicayad: listening", zap.String("socket", cfg.Daemon.SocketPath))
	return srv.ListenAndServe(ctx, cfg.Daemon.SocketPath)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadOrBuild loads the persisted snapshot if one exists and is valid,
// falling back to a full cold scan otherwise - the same "bad index, just
// rebuild" recovery spec §7 expects of a corrupted snapshot.
func loadOrBuild(cfg config.Config, log *zap.Logger) (*vicaya.Snapshot, error) {
	if snap, err := snapshot.Load(cfg.Index.SnapshotPath); err == nil {
		log.Info("vicayad: loaded snapshot", zap.String("path", cfg.Index.SnapshotPath))
		return snap, nil
	}
	log.Info("vicayad: no usable snapshot, performing cold scan")
	return coldScan(cfg)
}

func coldScan(cfg config.Config) (*vicaya.Snapshot, error) {
	snap := vicaya.NewSnapshot()
	out := make(chan scanner.Entry, 1024)

	errCh := make(chan error, 1)
	go func() {
		errCh <- scanner.Scan(scanner.Options{Roots: cfg.Index.Roots, Exclusions: cfg.Index.Exclusions}, out)
	}()

	for e := range out {
		name := filepath.Base(e.AbsPath)
		pathOff, pathLen := snap.Arena.AddString(e.AbsPath)
		nameOff, nameLen := snap.Arena.AddString(name)
		id, err := snap.Files.Insert(vicaya.FileMeta{
			PathOffset: pathOff,
			PathLen:    pathLen,
			NameOffset: nameOff,
			NameLen:    nameLen,
			Size:       uint64(e.Size),
			Mtime:      e.ModTime,
			Dev:        e.Dev,
			Ino:        e.Ino,
			Mode:       e.Mode,
		})
		if err != nil {
			return nil, err
		}
		snap.Trigrams.Add(id, name)
	}

	if err := <-errCh; err != nil {
		return nil, err
	}
	return snap, nil
}

// applyWatchEvents applies every watcher event to store and, per the
// tombstone-ratio rebuild rule, triggers a fresh cold scan whenever
// store.NeedsRebuild reports the tombstone ratio has crossed
// cfg.Index.RebuildThreshold.
func applyWatchEvents(w *watcher.Watcher, store *index.Store, rebuild daemon.Rebuilder, log *zap.Logger) {
	for ev := range w.Events() {
		kind := index.EventModify
		switch ev.Kind {
		case watcher.Create:
			kind = index.EventCreate
		case watcher.Delete, watcher.Move:
			kind = index.EventDelete
		}

		info, err := os.Stat(ev.Path)
		if kind != index.EventDelete && err != nil {
			continue
		}

		e := index.Event{Kind: kind, Path: ev.Path}
		if info != nil {
			e.Size = uint64(info.Size())
			e.Mtime = info.ModTime().Unix()
			e.Mode = uint32(info.Mode())
		}
		store.Apply(e)

		if store.NeedsRebuild() {
			log.Info("vicayad: tombstone ratio crossed threshold, rebuilding")
			fresh, err := rebuild()
			if err != nil {
				log.Error("vicayad: rebuild failed", zap.Error(err))
				continue
			}
			store.Rebuild(fresh)
		}
	}
}

// watchMemory polls the index's allocated bytes and logs a warning when it
// crosses maxMemoryMB. vicayad never enforces a hard cap - spec only calls
// for a warning, leaving eviction or refusal to a future layer.
func watchMemory(ctx context.Context, store *index.Store, maxMemoryMB int, log *zap.Logger) {
	if maxMemoryMB <= 0 {
		return
	}
	limit := maxMemoryMB * 1024 * 1024

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if allocated := store.Stats().AllocatedBytes; allocated > limit {
				log.Warn("vicayad: index memory usage exceeds configured limit",
					zap.Int("allocated_bytes", allocated),
					zap.Int("max_memory_mb", maxMemoryMB))
			}
		}
	}
}

// excludeFunc adapts the config's exclusion patterns to the watcher's
// per-path predicate, reusing the same bare-name-vs-full-path matching
// rule as scanner.Scan.
func excludeFunc(patterns []string) func(string) bool {
	return func(p string) bool {
		name := filepath.Base(p)
		for _, pat := range patterns {
			if !strings.Contains(pat, "/") {
				if ok, _ := doublestar.Match(pat, name); ok {
					return true
				}
				continue
			}
			if ok, _ := doublestar.Match(pat, p); ok {
				return true
			}
		}
		return false
	}
}
