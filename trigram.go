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

// Trigram packs three lowercased bytes into a 24-bit value: (a<<16) |
// (b<<8) | c. It is a byte triple, not a rune triple - non-ASCII input is
// passed through the lowercaser unchanged and trigram extraction still
// operates on the resulting bytes.
type Trigram uint32

func newTrigram(a, b, c byte) Trigram {
	return Trigram(uint32(a)<<16 | uint32(b)<<8 | uint32(c))
}

// lowerASCII lowercases the ASCII range of s and returns the result. This
// is the documented "byte-wise simple-casing" of spec DESIGN NOTES: only
// 'A'-'Z' is folded, every other byte (including multi-byte UTF-8
// sequences) passes through unchanged. The index and query paths both
// call this function, so their trigram sets always agree.
func lowerASCII(s string) []byte {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return b
}

// ExtractTrigrams returns the unique set of trigrams of s, after
// lowercasing. Input shorter than three bytes yields an empty, nil slice.
func ExtractTrigrams(s string) []Trigram {
	lower := lowerASCII(s)
	if len(lower) < 3 {
		return nil
	}

	seen := make(map[Trigram]bool, len(lower)-2)
	out := make([]Trigram, 0, len(lower)-2)
	for i := 0; i+3 <= len(lower); i++ {
		tg := newTrigram(lower[i], lower[i+1], lower[i+2])
		if !seen[tg] {
			seen[tg] = true
			out = append(out, tg)
		}
	}
	return out
}

// TrigramIndex is an inverted index from Trigram to an insertion-ordered,
// per-trigram-deduplicated posting list of FileIds.
type TrigramIndex struct {
	postings map[Trigram][]FileId
}

// NewTrigramIndex returns an empty trigram index.
func NewTrigramIndex() *TrigramIndex {
	return &TrigramIndex{postings: make(map[Trigram][]FileId)}
}

// Add extracts the trigrams of text and appends id to each posting list,
// at most once per trigram even if text repeats a trigram internally.
func (idx *TrigramIndex) Add(id FileId, text string) {
	for _, tg := range ExtractTrigrams(text) {
		idx.postings[tg] = append(idx.postings[tg], id)
	}
}

// Remove deletes id from every posting list it appears in. O(total
// postings); use RemoveText instead when the prior text is known.
func (idx *TrigramIndex) Remove(id FileId) {
	for tg, list := range idx.postings {
		filtered := list[:0]
		for _, existing := range list {
			if existing != id {
				filtered = append(filtered, existing)
			}
		}
		if len(filtered) == 0 {
			delete(idx.postings, tg)
		} else {
			idx.postings[tg] = filtered
		}
	}
}

// RemoveText removes id only from the posting lists implied by text,
// pruning any list that becomes empty. Used for incremental updates when
// the file's prior name is known, avoiding the full scan of Remove.
func (idx *TrigramIndex) RemoveText(id FileId, text string) {
	for _, tg := range ExtractTrigrams(text) {
		list, ok := idx.postings[tg]
		if !ok {
			continue
		}
		filtered := list[:0]
		for _, existing := range list {
			if existing != id {
				filtered = append(filtered, existing)
			}
		}
		if len(filtered) == 0 {
			delete(idx.postings, tg)
		} else {
			idx.postings[tg] = filtered
		}
	}
}

// Query returns the FileIds present in every posting list named by
// trigrams, in the order they appear in the shortest (most selective) of
// those lists. An empty trigrams slice, or a trigrams slice naming any
// unindexed trigram, returns an empty result.
func (idx *TrigramIndex) Query(trigrams []Trigram) []FileId {
	if len(trigrams) == 0 {
		return nil
	}

	var smallest []FileId
	smallestLen := -1
	for _, tg := range trigrams {
		list, ok := idx.postings[tg]
		if !ok {
			return nil
		}
		if smallestLen == -1 || len(list) < smallestLen {
			smallest = list
			smallestLen = len(list)
		}
	}

	out := make([]FileId, 0, len(smallest))
	for _, id := range smallest {
		if idx.containsAll(id, trigrams) {
			out = append(out, id)
		}
	}
	return out
}

func (idx *TrigramIndex) containsAll(id FileId, trigrams []Trigram) bool {
	for _, tg := range trigrams {
		list := idx.postings[tg]
		found := false
		for _, candidate := range list {
			if candidate == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TrigramCount returns the number of unique trigrams currently indexed.
func (idx *TrigramIndex) TrigramCount() int {
	return len(idx.postings)
}

// AllocatedBytes estimates the heap bytes held by the index's postings,
// for the Store's memory accounting surface.
func (idx *TrigramIndex) AllocatedBytes() int {
	const (
		mapBucketOverhead = 48 // rough per-entry overhead of a Go map bucket
		fileIdSize        = 4
	)
	total := len(idx.postings) * mapBucketOverhead
	for _, list := range idx.postings {
		total += cap(list) * fileIdSize
	}
	return total
}

// Postings exposes the raw map for the snapshot codec. Callers must treat
// it as read-only.
func (idx *TrigramIndex) Postings() map[Trigram][]FileId {
	return idx.postings
}

// NewTrigramIndexFromPostings wraps a pre-built postings map, used by the
// snapshot codec when loading.
func NewTrigramIndexFromPostings(postings map[Trigram][]FileId) *TrigramIndex {
	if postings == nil {
		postings = make(map[Trigram][]FileId)
	}
	return &TrigramIndex{postings: postings}
}
