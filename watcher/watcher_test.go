package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainEvents(t *testing.T, w *Watcher, timeout time.Duration) []Event {
	t.Helper()
	var got []Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			return got
		}
	}
}

func TestWatcherEmitsCreateEvent(t *testing.T) {
	root := t.TempDir()
	w, err := New([]string{root}, nil, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	target := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	events := drainEvents(t, w, 500*time.Millisecond)
	require.NotEmpty(t, events)
	assert.Equal(t, target, events[0].Path)
}

func TestWatcherExcludedPathsAreIgnored(t *testing.T) {
	root := t.TempDir()
	excludeDir := filepath.Join(root, "node_modules")
	require.NoError(t, os.Mkdir(excludeDir, 0o755))

	w, err := New([]string{root}, func(p string) bool {
		return filepath.Base(p) == "node_modules"
	}, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(excludeDir, "pkg.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("x"), 0o644))

	events := drainEvents(t, w, 500*time.Millisecond)
	for _, ev := range events {
		assert.NotContains(t, ev.Path, "node_modules")
	}
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "hot.txt")
	require.NoError(t, os.WriteFile(target, []byte("0"), 0o644))

	w, err := New([]string{root}, nil, 100*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	events := drainEvents(t, w, 500*time.Millisecond)

	count := 0
	for _, ev := range events {
		if ev.Path == target {
			count++
		}
	}
	assert.LessOrEqual(t, count, 1, "rapid writes to the same path should collapse into one debounced event")
}

func TestClassifyMapsFsnotifyOps(t *testing.T) {
	assert.Equal(t, Create, classify(1))
	assert.Equal(t, Delete, classify(4))
}
