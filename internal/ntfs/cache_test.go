package ntfs

import (
	"encoding/binary"
	"testing"
)

func makeFileNameAttr(parent Reference, name string) []byte {
	nameBytes := make([]byte, len(name)*2)
	for i, r := range name {
		binary.LittleEndian.PutUint16(nameBytes[i*2:], uint16(r))
	}
	valueLen := fileNameFixedSize + len(nameBytes)

	attr := make([]byte, attrHeaderSize+24+valueLen) // 24 = resident header fields
	binary.LittleEndian.PutUint32(attr[0:4], uint32(AttrFileName))
	binary.LittleEndian.PutUint32(attr[4:8], uint32(len(attr)))
	binary.LittleEndian.PutUint32(attr[16:20], uint32(valueLen))
	binary.LittleEndian.PutUint16(attr[20:22], uint16(attrHeaderSize+24))

	value := attr[attrHeaderSize+24:]
	binary.LittleEndian.PutUint64(value[0:8], uint64(parent))
	value[64] = byte(len(name))
	value[65] = byte(NamespaceWin32)
	copy(value[fileNameFixedSize:], nameBytes)
	return attr
}

type fakeReader struct {
	records map[int64][]byte
}

func (f *fakeReader) ReadAt(p []byte, off int64) (int, error) {
	rec, ok := f.records[off]
	if !ok {
		copy(p, make([]byte, len(p)))
		return len(p), nil
	}
	copy(p, rec)
	return len(p), nil
}

func TestDirectoryCacheResolveSimpleChain(t *testing.T) {
	cache := NewDirectoryCache(nil, 0, 4096, 512, 1024)
	cache.Put(10, "sub", Reference(RootReference), true)

	path, err := cache.Resolve("file.txt", Reference(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/sub/file.txt" {
		t.Errorf("path = %q, want /sub/file.txt", path)
	}
}

func TestDirectoryCacheResolveDetectsCycle(t *testing.T) {
	cache := NewDirectoryCache(nil, 0, 4096, 512, 1024)
	cache.Put(10, "a", Reference(20), true)
	cache.Put(20, "b", Reference(10), true)

	_, err := cache.Resolve("file.txt", Reference(10))
	if err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestDirectoryCacheResolveSeeksUncachedAncestor(t *testing.T) {
	attr := makeFileNameAttr(Reference(RootReference), "ghost")
	record := makeRecord(99, RecordFlagInUse|RecordFlagDirectory, attr)

	reader := &fakeReader{records: map[int64][]byte{
		99 * 1024: record, // mftStartLCN=0, clusterSize irrelevant (0), mftRecordSize=1024
	}}
	cache := NewDirectoryCache(reader, 0, 0, 512, 1024)

	path, err := cache.Resolve("file.txt", Reference(99))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/ghost/file.txt" {
		t.Errorf("path = %q, want /ghost/file.txt", path)
	}
}

func TestDirectoryCacheResolveDirectRoot(t *testing.T) {
	cache := NewDirectoryCache(nil, 0, 4096, 512, 1024)
	path, err := cache.Resolve("file.txt", Reference(RootReference))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/file.txt" {
		t.Errorf("path = %q, want /file.txt", path)
	}
}
