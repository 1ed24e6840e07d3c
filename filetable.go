// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vicaya

import "math"

// FileId identifies a row in a FileTable. Ids are assigned densely from 0
// in insertion order and are stable for the life of a snapshot;
// reassignment only happens during a full rebuild.
type FileId uint32

// FileMeta is the fixed-layout metadata record for a single indexed file.
type FileMeta struct {
	PathOffset uint32
	PathLen    uint32
	NameOffset uint32
	NameLen    uint32

	Size  uint64
	Mtime int64 // seconds since epoch

	Dev uint64
	Ino uint64

	// Mode carries the os.FileMode bits captured at scan time. It is
	// stored and persisted in snapshots only; scoring, Status and the
	// scanner's regular-file check do not read it.
	Mode uint32
}

// FileTable is a dense, append-only vector of FileMeta records keyed by
// FileId. Entries are never shifted; a higher layer tombstones logically
// removed files instead of compacting the table (see index.Store).
type FileTable struct {
	entries []FileMeta
}

// NewFileTable returns an empty file table.
func NewFileTable() *FileTable {
	return &FileTable{}
}

// Insert appends meta and returns its newly assigned FileId. It fails with
// ErrCapacityExceeded once the table would exceed math.MaxUint32 entries.
func (t *FileTable) Insert(meta FileMeta) (FileId, error) {
	if len(t.entries) >= math.MaxUint32 {
		return 0, ErrCapacityExceeded
	}
	id := FileId(len(t.entries))
	t.entries = append(t.entries, meta)
	return id, nil
}

// Get returns the metadata for id, or false if id is out of range.
func (t *FileTable) Get(id FileId) (FileMeta, bool) {
	if int(id) < 0 || int(id) >= len(t.entries) {
		return FileMeta{}, false
	}
	return t.entries[id], true
}

// GetPtr returns a pointer to the metadata for id for in-place mutation,
// or nil if id is out of range. The pointer is only valid until the next
// Insert, which may reallocate the backing slice.
func (t *FileTable) GetPtr(id FileId) *FileMeta {
	if int(id) < 0 || int(id) >= len(t.entries) {
		return nil
	}
	return &t.entries[id]
}

// Len returns the number of entries, live or tombstoned.
func (t *FileTable) Len() int {
	return len(t.entries)
}

// IsEmpty reports whether the table has no entries.
func (t *FileTable) IsEmpty() bool {
	return len(t.entries) == 0
}

// Iter calls fn for every (FileId, FileMeta) pair in insertion order,
// stopping early if fn returns false.
func (t *FileTable) Iter(fn func(FileId, FileMeta) bool) {
	for i := range t.entries {
		if !fn(FileId(i), t.entries[i]) {
			return
		}
	}
}

// Entries returns the backing slice directly, for the snapshot codec.
// Callers must not mutate the length of the returned slice.
func (t *FileTable) Entries() []FileMeta {
	return t.entries
}

// NewFileTableFromEntries wraps a pre-built entry slice as a FileTable,
// used by the snapshot codec when loading.
func NewFileTableFromEntries(entries []FileMeta) *FileTable {
	return &FileTable{entries: entries}
}
