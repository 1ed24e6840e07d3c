package snapshot

import (
	"encoding/binary"
	"sort"

	"github.com/vicaya/vicaya"
)

// fileMetaWireSize is the fixed per-record size of the binary FileMeta
// encoding: four uint32 arena handles, a uint64 size, an int64 mtime, two
// uint64 identity fields, and a uint32 mode.
const fileMetaWireSize = 4*4 + 8 + 8 + 8 + 8 + 4

// encodeFileTable writes a uint32 entry count followed by entries encoded
// back to back in fileMetaWireSize-byte records.
func encodeFileTable(entries []vicaya.FileMeta) []byte {
	out := make([]byte, 4+len(entries)*fileMetaWireSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(entries)))

	off := 4
	for _, m := range entries {
		binary.BigEndian.PutUint32(out[off:], m.PathOffset)
		binary.BigEndian.PutUint32(out[off+4:], m.PathLen)
		binary.BigEndian.PutUint32(out[off+8:], m.NameOffset)
		binary.BigEndian.PutUint32(out[off+12:], m.NameLen)
		binary.BigEndian.PutUint64(out[off+16:], m.Size)
		binary.BigEndian.PutUint64(out[off+24:], uint64(m.Mtime))
		binary.BigEndian.PutUint64(out[off+32:], m.Dev)
		binary.BigEndian.PutUint64(out[off+40:], m.Ino)
		binary.BigEndian.PutUint32(out[off+48:], m.Mode)
		off += fileMetaWireSize
	}
	return out
}

func decodeFileTable(blob []byte) ([]vicaya.FileMeta, error) {
	if len(blob) < 4 {
		return nil, vicaya.ErrSerialization
	}
	count := binary.BigEndian.Uint32(blob[0:4])
	blob = blob[4:]
	if uint64(count)*fileMetaWireSize != uint64(len(blob)) {
		return nil, vicaya.ErrSerialization
	}

	entries := make([]vicaya.FileMeta, count)
	off := 0
	for i := range entries {
		entries[i] = vicaya.FileMeta{
			PathOffset: binary.BigEndian.Uint32(blob[off:]),
			PathLen:    binary.BigEndian.Uint32(blob[off+4:]),
			NameOffset: binary.BigEndian.Uint32(blob[off+8:]),
			NameLen:    binary.BigEndian.Uint32(blob[off+12:]),
			Size:       binary.BigEndian.Uint64(blob[off+16:]),
			Mtime:      int64(binary.BigEndian.Uint64(blob[off+24:])),
			Dev:        binary.BigEndian.Uint64(blob[off+32:]),
			Ino:        binary.BigEndian.Uint64(blob[off+40:]),
			Mode:       binary.BigEndian.Uint32(blob[off+48:]),
		}
		off += fileMetaWireSize
	}
	return entries, nil
}

// encodeTrigrams lays the postings map out as two parallel blobs: a keys
// blob of (trigram, postingCount) pairs in ascending trigram order, and a
// postings blob of the concatenated FileId lists in that same order. The
// sort makes the encoding deterministic across runs with identical content.
func encodeTrigrams(postings map[vicaya.Trigram][]vicaya.FileId) (keys, data []byte) {
	sorted := make([]vicaya.Trigram, 0, len(postings))
	for tg := range postings {
		sorted = append(sorted, tg)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	keys = make([]byte, 4+len(sorted)*8)
	binary.BigEndian.PutUint32(keys[0:4], uint32(len(sorted)))

	var dataLen int
	for _, tg := range sorted {
		dataLen += len(postings[tg]) * 4
	}
	data = make([]byte, dataLen)

	koff, doff := 4, 0
	for _, tg := range sorted {
		list := postings[tg]
		binary.BigEndian.PutUint32(keys[koff:], uint32(tg))
		binary.BigEndian.PutUint32(keys[koff+4:], uint32(len(list)))
		koff += 8

		for _, id := range list {
			binary.BigEndian.PutUint32(data[doff:], uint32(id))
			doff += 4
		}
	}
	return keys, data
}

func decodeTrigrams(keys, data []byte) (map[vicaya.Trigram][]vicaya.FileId, error) {
	if len(keys) < 4 {
		return nil, vicaya.ErrSerialization
	}
	count := binary.BigEndian.Uint32(keys[0:4])
	keys = keys[4:]
	if uint64(count)*8 != uint64(len(keys)) {
		return nil, vicaya.ErrSerialization
	}

	postings := make(map[vicaya.Trigram][]vicaya.FileId, count)
	koff, doff := 0, 0
	for i := uint32(0); i < count; i++ {
		tg := vicaya.Trigram(binary.BigEndian.Uint32(keys[koff:]))
		n := binary.BigEndian.Uint32(keys[koff+4:])
		koff += 8

		end := doff + int(n)*4
		if end > len(data) {
			return nil, vicaya.ErrSerialization
		}
		list := make([]vicaya.FileId, n)
		for j := range list {
			list[j] = vicaya.FileId(binary.BigEndian.Uint32(data[doff:]))
			doff += 4
		}
		postings[tg] = list
	}
	return postings, nil
}
