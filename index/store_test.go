package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicaya/vicaya"
	"github.com/vicaya/vicaya/query"
)

func TestApplyCreateThenQueryFindsFile(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.3)

	s.Apply(Event{Kind: EventCreate, Path: "/home/user/project/main.go", Size: 10, Mtime: 1})

	results := s.Query(query.Request{Term: "main.go", Limit: 10})
	require.Len(t, results, 1)
	assert.Equal(t, "/home/user/project/main.go", results[0].Path)
}

func TestApplyDeleteRemovesFileFromQueries(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.3)
	s.Apply(Event{Kind: EventCreate, Path: "/home/user/project/main.go", Size: 10, Mtime: 1})
	s.Apply(Event{Kind: EventDelete, Path: "/home/user/project/main.go"})

	results := s.Query(query.Request{Term: "main.go", Limit: 10})
	assert.Empty(t, results)
}

func TestApplyModifyReplacesMetadata(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.3)
	s.Apply(Event{Kind: EventCreate, Path: "/home/user/project/main.go", Size: 10, Mtime: 1})
	s.Apply(Event{Kind: EventModify, Path: "/home/user/project/main.go", Size: 99, Mtime: 2})

	results := s.Query(query.Request{Term: "main.go", Limit: 10})
	require.Len(t, results, 1)
	assert.Equal(t, uint64(99), results[0].Size)
	assert.Equal(t, int64(2), results[0].Mtime)
}

func TestDeleteDoesNotLeakTombstonedRowsIntoQueries(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.3)
	s.Apply(Event{Kind: EventCreate, Path: "/home/user/project/alpha.go"})
	s.Apply(Event{Kind: EventCreate, Path: "/home/user/project/beta.go"})
	s.Apply(Event{Kind: EventDelete, Path: "/home/user/project/alpha.go"})

	results := s.Query(query.Request{Term: "a", Limit: 100})
	for _, r := range results {
		assert.NotEqual(t, "/home/user/project/alpha.go", r.Path)
	}
}

func TestNeedsRebuildCrossesThreshold(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.5)
	s.Apply(Event{Kind: EventCreate, Path: "/a"})
	s.Apply(Event{Kind: EventCreate, Path: "/b"})
	assert.False(t, s.NeedsRebuild())

	s.Apply(Event{Kind: EventDelete, Path: "/a"})
	assert.True(t, s.NeedsRebuild())
}

func TestRebuildClearsTombstones(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.1)
	s.Apply(Event{Kind: EventCreate, Path: "/a"})
	s.Apply(Event{Kind: EventDelete, Path: "/a"})
	require.True(t, s.NeedsRebuild())

	fresh := vicaya.NewSnapshot()
	s.Rebuild(fresh)
	assert.False(t, s.NeedsRebuild())
}

func TestStatsReflectsLiveFileCount(t *testing.T) {
	s := New(vicaya.NewSnapshot(), 0.3)
	s.Apply(Event{Kind: EventCreate, Path: "/a.go"})
	s.Apply(Event{Kind: EventCreate, Path: "/b.go"})

	assert.Equal(t, 2, s.Stats().IndexedFiles)
}
