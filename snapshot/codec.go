// Package snapshot implements the on-disk format of a vicaya.Snapshot: a
// fixed magic and version header, a table of contents of (offset, length)
// sections, the section payloads, and a trailing whole-file checksum. The
// layout and the atomic-install discipline are modeled on zoekt's
// toc.go/read.go section table and build/builder.go's temp-file-then-rename
// shard install.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/vicaya/vicaya"
)

// magic identifies a vicaya snapshot file. formatVersion is bumped whenever
// the section layout below changes incompatibly.
const (
	magic         uint32 = 0x76696361 // "vica"
	formatVersion uint32 = 1
)

// section is one (offset, length) entry of the table of contents, naming a
// contiguous byte range in the file that follows the header and TOC.
type section struct {
	offset uint32
	length uint32
}

func (s section) write(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, s)
}

func (s *section) read(r io.Reader) error {
	return binary.Read(r, binary.BigEndian, s)
}

// The four sections of a snapshot, in the fixed order they are written and
// read. Adding a section is a format-version bump.
const sectionCount = 4

const (
	secFileTable = iota
	secArena
	secTrigramKeys
	secTrigramPostings
)

// Save writes snap to path atomically: the payload is built in a temp file
// in the same directory, fsynced, and installed with os.Rename so that a
// concurrent Load (or a crash mid-write) never observes a partial file.
func Save(snap *vicaya.Snapshot, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	if err := encode(tmp, snap); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// encode writes the full section-table payload of snap to w, followed by a
// trailing CRC32 of everything written before it.
func encode(w io.Writer, snap *vicaya.Snapshot) error {
	fileTableBlob := encodeFileTable(snap.Files.Entries())
	arenaBlob := snap.Arena.Bytes()
	keysBlob, postingsBlob := encodeTrigrams(snap.Trigrams.Postings())

	blobs := [sectionCount][]byte{
		secFileTable:       fileTableBlob,
		secArena:           arenaBlob,
		secTrigramKeys:     keysBlob,
		secTrigramPostings: postingsBlob,
	}

	headerSize := uint32(4 + 4) // magic + version
	tocSize := uint32(sectionCount * 8)
	offset := headerSize + tocSize

	var toc [sectionCount]section
	for i, b := range blobs {
		toc[i] = section{offset: offset, length: uint32(len(b))}
		offset += uint32(len(b))
	}

	body := &bytes.Buffer{}
	if err := binary.Write(body, binary.BigEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(body, binary.BigEndian, formatVersion); err != nil {
		return err
	}
	for _, s := range toc {
		if err := s.write(body); err != nil {
			return err
		}
	}
	for _, b := range blobs {
		if _, err := body.Write(b); err != nil {
			return err
		}
	}

	sum := crc32.ChecksumIEEE(body.Bytes())

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(body.Bytes()); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, sum); err != nil {
		return err
	}
	return bw.Flush()
}

// Load reads a snapshot previously written by Save. It returns
// vicaya.ErrSerialization for any structural problem: bad magic, version
// mismatch, truncated sections, or a checksum mismatch.
func Load(path string) (*vicaya.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (*vicaya.Snapshot, error) {
	if len(raw) < 4 {
		return nil, vicaya.ErrSerialization
	}

	sum := binary.BigEndian.Uint32(raw[len(raw)-4:])
	body := raw[:len(raw)-4]
	if crc32.ChecksumIEEE(body) != sum {
		return nil, vicaya.ErrSerialization
	}

	r := bytes.NewReader(body)

	var gotMagic, version uint32
	if err := binary.Read(r, binary.BigEndian, &gotMagic); err != nil || gotMagic != magic {
		return nil, vicaya.ErrSerialization
	}
	if err := binary.Read(r, binary.BigEndian, &version); err != nil || version != formatVersion {
		return nil, vicaya.ErrSerialization
	}

	var toc [sectionCount]section
	for i := range toc {
		if err := toc[i].read(r); err != nil {
			return nil, vicaya.ErrSerialization
		}
	}

	slice := func(s section) ([]byte, error) {
		end := uint64(s.offset) + uint64(s.length)
		if end > uint64(len(body)) {
			return nil, vicaya.ErrSerialization
		}
		return body[s.offset:end], nil
	}

	fileTableBlob, err := slice(toc[secFileTable])
	if err != nil {
		return nil, err
	}
	arenaBlob, err := slice(toc[secArena])
	if err != nil {
		return nil, err
	}
	keysBlob, err := slice(toc[secTrigramKeys])
	if err != nil {
		return nil, err
	}
	postingsBlob, err := slice(toc[secTrigramPostings])
	if err != nil {
		return nil, err
	}

	entries, err := decodeFileTable(fileTableBlob)
	if err != nil {
		return nil, err
	}
	postings, err := decodeTrigrams(keysBlob, postingsBlob)
	if err != nil {
		return nil, err
	}

	arenaCopy := make([]byte, len(arenaBlob))
	copy(arenaCopy, arenaBlob)

	return &vicaya.Snapshot{
		Files:    vicaya.NewFileTableFromEntries(entries),
		Arena:    vicaya.NewStringArenaFromBytes(arenaCopy),
		Trigrams: vicaya.NewTrigramIndexFromPostings(postings),
	}, nil
}
