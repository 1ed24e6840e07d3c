package vicaya

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta(pathOff, nameOff uint32) FileMeta {
	return FileMeta{
		PathOffset: pathOff,
		PathLen:    10,
		NameOffset: nameOff,
		NameLen:    5,
		Size:       1024,
		Mtime:      1234567890,
		Dev:        1,
		Ino:        100,
	}
}

func TestFileTableInsertAssignsDenseIds(t *testing.T) {
	tbl := NewFileTable()

	id1, err := tbl.Insert(testMeta(0, 10))
	require.NoError(t, err)
	id2, err := tbl.Insert(testMeta(20, 30))
	require.NoError(t, err)
	id3, err := tbl.Insert(testMeta(40, 50))
	require.NoError(t, err)

	assert.Equal(t, FileId(0), id1)
	assert.Equal(t, FileId(1), id2)
	assert.Equal(t, FileId(2), id3)
	assert.Equal(t, 3, tbl.Len())
}

func TestFileTableGetRoundTrip(t *testing.T) {
	tbl := NewFileTable()
	id, err := tbl.Insert(testMeta(0, 10))
	require.NoError(t, err)

	got, ok := tbl.Get(id)
	require.True(t, ok)
	assert.EqualValues(t, 0, got.PathOffset)
	assert.EqualValues(t, 10, got.NameOffset)
	assert.EqualValues(t, 1024, got.Size)
}

func TestFileTableGetInvalidId(t *testing.T) {
	tbl := NewFileTable()
	_, ok := tbl.Get(FileId(0))
	assert.False(t, ok)
	_, ok = tbl.Get(FileId(999))
	assert.False(t, ok)
}

func TestFileTableGetPtrMutatesInPlace(t *testing.T) {
	tbl := NewFileTable()
	id, _ := tbl.Insert(testMeta(0, 10))

	ptr := tbl.GetPtr(id)
	require.NotNil(t, ptr)
	ptr.Size = 2048

	got, _ := tbl.Get(id)
	assert.EqualValues(t, 2048, got.Size)
}

func TestFileTableIterIsInsertionOrdered(t *testing.T) {
	tbl := NewFileTable()
	tbl.Insert(testMeta(0, 10))
	tbl.Insert(testMeta(20, 30))
	tbl.Insert(testMeta(40, 50))

	var ids []FileId
	var offsets []uint32
	tbl.Iter(func(id FileId, m FileMeta) bool {
		ids = append(ids, id)
		offsets = append(offsets, m.PathOffset)
		return true
	})

	assert.Equal(t, []FileId{0, 1, 2}, ids)
	assert.Equal(t, []uint32{0, 20, 40}, offsets)
}

func TestFileTableEmpty(t *testing.T) {
	tbl := NewFileTable()
	assert.True(t, tbl.IsEmpty())
	assert.Equal(t, 0, tbl.Len())
}
