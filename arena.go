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

// StringArena is an append-only byte buffer that returns (offset, length)
// handles for interned strings. Content is immutable once written; the
// arena never removes or rewrites a payload within a snapshot's lifetime.
//
// Payloads are opaque octets: callers store UTF-8 paths, but the arena
// itself never validates or re-interprets the bytes.
type StringArena struct {
	data []byte
}

// NewStringArena returns an empty arena.
func NewStringArena() *StringArena {
	return &StringArena{}
}

// NewStringArenaFromBytes wraps an existing contiguous buffer as an arena,
// without copying. Used by the snapshot codec when loading a blob region
// directly into an arena.
func NewStringArenaFromBytes(data []byte) *StringArena {
	return &StringArena{data: data}
}

// Add appends b to the arena and returns its handle.
func (a *StringArena) Add(b []byte) (offset, length uint32) {
	offset = uint32(len(a.data))
	a.data = append(a.data, b...)
	return offset, uint32(len(b))
}

// AddString is a convenience wrapper around Add for string payloads.
func (a *StringArena) AddString(s string) (offset, length uint32) {
	return a.Add([]byte(s))
}

// Get returns the slice of bytes at [offset, offset+length), or false if
// the handle falls outside the arena. It never panics on a bad handle -
// it fails soft, so a corrupted snapshot can't crash a reader.
func (a *StringArena) Get(offset, length uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(a.data)) {
		return nil, false
	}
	return a.data[offset:end], true
}

// GetString is a convenience wrapper around Get that returns a string.
func (a *StringArena) GetString(offset, length uint32) (string, bool) {
	b, ok := a.Get(offset, length)
	if !ok {
		return "", false
	}
	return string(b), true
}

// Size returns the total number of bytes stored in the arena.
func (a *StringArena) Size() int {
	return len(a.data)
}

// Bytes returns the arena's underlying contiguous buffer. Callers must
// treat the returned slice as read-only; it is shared with the arena.
func (a *StringArena) Bytes() []byte {
	return a.data
}
