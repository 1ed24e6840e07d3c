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

// Snapshot is the in-memory tuple (FileTable, StringArena, TrigramIndex)
// that the query engine reads and the scanner/watcher glue mutates. It is
// the unit the snapshot codec serializes and the unit index.Store guards
// with a single reader/writer lock.
type Snapshot struct {
	Files    *FileTable
	Arena    *StringArena
	Trigrams *TrigramIndex
}

// NewSnapshot returns an empty, ready-to-populate snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Files:    NewFileTable(),
		Arena:    NewStringArena(),
		Trigrams: NewTrigramIndex(),
	}
}

// Stats summarizes a snapshot for the daemon's Status response.
type Stats struct {
	IndexedFiles   int
	TrigramCount   int
	ArenaSize      int
	AllocatedBytes int
}

// Stats computes a Stats summary of s.
func (s *Snapshot) Stats() Stats {
	return Stats{
		IndexedFiles:   s.Files.Len(),
		TrigramCount:   s.Trigrams.TrigramCount(),
		ArenaSize:      s.Arena.Size(),
		AllocatedBytes: s.Arena.Size() + s.Trigrams.AllocatedBytes() + s.Files.Len()*fileMetaSize,
	}
}

// fileMetaSize is the approximate in-memory footprint of one FileMeta,
// used only for the coarse AllocatedBytes estimate surfaced in Status.
const fileMetaSize = 48

// SearchResult is the boundary-facing shape of a single ranked match.
type SearchResult struct {
	Path  string
	Name  string
	Score float32
	Size  uint64
	Mtime int64
}
