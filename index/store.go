// Package index holds the live snapshot behind a single-writer/many-reader
// lock and applies incremental scanner/watcher events to it. The lock shape
// is zoekt's shardedSearcher: one sync.RWMutex guarding the pointer that
// readers see, swapped wholesale by Rebuild or mutated in place by Apply.
package index

import (
	"path"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vicaya/vicaya"
	"github.com/vicaya/vicaya/query"
)

var (
	metricIndexedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vicaya_indexed_files",
		Help: "Number of files currently tracked by the index.",
	})
	metricAllocatedBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vicaya_allocated_bytes",
		Help: "Estimated heap bytes held by the current snapshot.",
	})
	metricTombstones = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vicaya_tombstones",
		Help: "Number of logically removed, not-yet-compacted file table rows.",
	})
	metricRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vicaya_rebuilds_total",
		Help: "Total number of full index rebuilds performed.",
	})
	metricApplyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vicaya_apply_events_total",
		Help: "Total number of incremental update events applied, by kind.",
	}, []string{"kind"})
)

// EventKind identifies the kind of incremental change Apply should make.
type EventKind int

const (
	EventCreate EventKind = iota
	EventModify
	EventDelete
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event is one incremental change to apply to the index.
type Event struct {
	Kind  EventKind
	Path  string
	Size  uint64
	Mtime int64
	Dev   uint64
	Ino   uint64
	Mode  uint32
}

// tombstonePathLen marks a FileTable row as logically removed without compacting
// the table, matching spec §3's "higher layer tombstones" design: a removed
// row's PathLen is zeroed so it can never satisfy a later path lookup, and
// its trigrams are pruned from the index up front.
const tombstonePathLen = 0

// Store owns the live snapshot and the lock that makes it safe to read
// while a single writer incrementally updates or rebuilds it.
type Store struct {
	mu sync.RWMutex

	snap *vicaya.Snapshot
	// byPath resolves an indexed file's path to its FileId for incremental
	// updates. It is rebuilt whenever a new snapshot is installed.
	byPath map[string]vicaya.FileId

	tombstones int
	// rebuildThreshold is the tombstone/total ratio (a plain fraction) at
	// or above which Apply's caller should trigger Rebuild. See
	// NeedsRebuild.
	rebuildThreshold float64
}

// New wraps snap in a Store. rebuildThreshold is the tombstone ratio
// (0 < ratio <= 1) at or above which NeedsRebuild reports true.
func New(snap *vicaya.Snapshot, rebuildThreshold float64) *Store {
	s := &Store{rebuildThreshold: rebuildThreshold}
	s.installLocked(snap)
	return s
}

func (s *Store) installLocked(snap *vicaya.Snapshot) {
	s.snap = snap
	s.byPath = make(map[string]vicaya.FileId, snap.Files.Len())
	s.tombstones = 0

	snap.Files.Iter(func(id vicaya.FileId, meta vicaya.FileMeta) bool {
		if meta.PathLen == tombstonePathLen {
			s.tombstones++
			return true
		}
		p, ok := snap.Arena.GetString(meta.PathOffset, meta.PathLen)
		if ok {
			s.byPath[p] = id
		}
		return true
	})

	s.reportMetricsLocked()
}

func (s *Store) reportMetricsLocked() {
	metricIndexedFiles.Set(float64(len(s.byPath)))
	metricAllocatedBytes.Set(float64(s.snap.Stats().AllocatedBytes))
	metricTombstones.Set(float64(s.tombstones))
}

// Query runs req against the current snapshot under a read lock.
func (s *Store) Query(req query.Request) []vicaya.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eng := query.New(s.snap)
	return eng.Search(req)
}

// Stats returns a point-in-time summary of the current snapshot.
// IndexedFiles counts live files only; tombstoned rows are excluded.
func (s *Store) Stats() vicaya.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.snap.Stats()
	st.IndexedFiles = len(s.byPath)
	return st
}

// Snapshot returns the live snapshot for the codec to serialize. Callers
// must not mutate it; Flush should be the only caller in practice.
func (s *Store) Snapshot() *vicaya.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Apply incrementally updates the index for a single scanner/watcher event.
// A Create/Modify for a path already indexed is treated as a remove-then-
// reinsert, which keeps the trigram postings and arena entry consistent
// without a table compaction.
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metricApplyTotal.WithLabelValues(ev.Kind.String()).Inc()

	if id, ok := s.byPath[ev.Path]; ok {
		s.removeLocked(id, ev.Path)
	}

	if ev.Kind == EventDelete {
		s.reportMetricsLocked()
		return
	}

	name := path.Base(ev.Path)
	pathOff, pathLen := s.snap.Arena.AddString(ev.Path)
	nameOff, nameLen := s.snap.Arena.AddString(name)

	id, err := s.snap.Files.Insert(vicaya.FileMeta{
		PathOffset: pathOff,
		PathLen:    pathLen,
		NameOffset: nameOff,
		NameLen:    nameLen,
		Size:       ev.Size,
		Mtime:      ev.Mtime,
		Dev:        ev.Dev,
		Ino:        ev.Ino,
		Mode:       ev.Mode,
	})
	if err != nil {
		// The table is at capacity; the caller (daemon) should trigger a
		// Rebuild. We drop the event rather than panic the writer.
		s.reportMetricsLocked()
		return
	}

	s.snap.Trigrams.Add(id, name)
	s.byPath[ev.Path] = id

	s.reportMetricsLocked()
}

// removeLocked tombstones id: it prunes id's trigram postings and zeroes
// its path length so Get still succeeds (Get never goes out of range) but
// the row can never again resolve to a live path. The caller holds mu.
func (s *Store) removeLocked(id vicaya.FileId, oldPath string) {
	meta := s.snap.Files.GetPtr(id)
	if meta == nil {
		return
	}

	name := path.Base(oldPath)
	s.snap.Trigrams.RemoveText(id, name)

	meta.PathLen = tombstonePathLen
	meta.NameLen = 0
	delete(s.byPath, oldPath)
	s.tombstones++
}

// NeedsRebuild reports whether the tombstone ratio has crossed the
// configured threshold, the signal spec §3's "Lifecycle" leaves to a higher
// layer.
func (s *Store) NeedsRebuild() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.snap.Files.Len()
	if total == 0 {
		return false
	}
	return float64(s.tombstones)/float64(total) >= s.rebuildThreshold
}

// Rebuild installs a freshly built snapshot wholesale, discarding all
// tombstones. The caller is responsible for constructing snap (typically
// via a fresh scanner.Scan pass).
func (s *Store) Rebuild(snap *vicaya.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metricRebuildsTotal.Inc()
	s.installLocked(snap)
}
