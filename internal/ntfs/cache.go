package ntfs

import (
	"fmt"
	"sync"
)

// SectorReader is the minimal read surface the directory cache needs to
// perform an on-demand MFT seek for a parent record it has not seen yet.
// internal/disk.Reader satisfies this with ReadAt, which is safe to call
// concurrently: pread-style reads need no serialization across workers.
type SectorReader interface {
	ReadAt(p []byte, off int64) (int, error)
}

type dirCacheEntry struct {
	Name      string
	Parent    Reference
	HasParent bool
	IsDir     bool
}

// DirectoryCache maps MFT record numbers to the name and parent reference
// found in their $FILE_NAME attribute, and resolves full paths by walking
// the parent chain up to the volume root. Entries accumulate as the
// scanner walks records. Paths are resolved inside Dispatcher.recover, so
// for a file handed to a worker goroutine the lookup runs on that worker
// while the scanner keeps adding entries, and the on-demand seek fallback
// can add entries from any goroutine; mu guards every access.
type DirectoryCache struct {
	mu      sync.RWMutex
	entries map[uint64]dirCacheEntry

	reader        SectorReader
	lbaBias       int64
	mftStartLCN   uint64
	clusterSize   int
	sectorSize    int
	mftRecordSize int
}

func NewDirectoryCache(reader SectorReader, mftStartLCN uint64, clusterSize, sectorSize, mftRecordSize int) *DirectoryCache {
	c := &DirectoryCache{
		entries:       make(map[uint64]dirCacheEntry),
		reader:        reader,
		mftStartLCN:   mftStartLCN,
		clusterSize:   clusterSize,
		sectorSize:    sectorSize,
		mftRecordSize: mftRecordSize,
	}
	c.entries[RootReference] = dirCacheEntry{Name: "", HasParent: false, IsDir: true}
	return c
}

// SetBias records the difference between a $MFT record's own declared LBA
// and the boot sector's MFTStartLCN, recomputed whenever record 0 is
// encountered (spec.md §3, "LBA bias").
func (c *DirectoryCache) SetBias(bias int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lbaBias = bias
}

// Put records the name and parent of a directory record as the scanner
// walks past it. Only the first $FILE_NAME namespace worth preferring is
// kept; callers resolve that preference via preferredOver before calling.
func (c *DirectoryCache) Put(record uint32, name string, parent Reference, isDir bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uint64(record)] = dirCacheEntry{Name: name, Parent: parent, HasParent: true, IsDir: isDir}
}

var errCycle = fmt.Errorf("ntfs: directory cycle detected")

// Resolve builds the full path for a record given its immediate name and
// parent reference, walking up the parent chain to the root (record 5).
// It guards against cycles in the chain (spec.md Design Notes) and falls
// back to an on-demand MFT seek when an ancestor was never scanned.
func (c *DirectoryCache) Resolve(name string, parent Reference) (string, error) {
	segments := []string{name}
	visited := map[uint64]bool{}
	cur := parent

	for {
		recordNum := cur.RecordNumber()
		if recordNum == RootReference {
			break
		}
		if visited[recordNum] {
			return "", errCycle
		}
		visited[recordNum] = true

		entry, ok := c.lookup(recordNum)
		if !ok {
			var err error
			entry, err = c.seek(recordNum, cur.SequenceNumber())
			if err != nil {
				return "", err
			}
		}

		if entry.Name != "" {
			segments = append(segments, entry.Name)
		}
		if !entry.HasParent {
			break
		}
		cur = entry.Parent
	}

	path := ""
	for i := len(segments) - 1; i >= 0; i-- {
		path += "/" + segments[i]
	}
	return path, nil
}

func (c *DirectoryCache) lookup(record uint64) (dirCacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[record]
	return e, ok
}

// seek reads the MFT record for the given record number directly from
// disk when the scanner has not reached it yet (e.g. it lies ahead of
// the current scan position, or belongs to an overwritten, unreachable
// area). If the record found there is not a directory, it retries one
// 16-bit sequence period further on (record + 2^16) and uses that record
// instead when it parses and is a directory; otherwise the first record
// read is kept. The record's stored sequence number is not compared with
// the one the child's reference carries.
func (c *DirectoryCache) seek(record uint64, wantSeq uint16) (dirCacheEntry, error) {
	if c.reader == nil {
		return dirCacheEntry{}, fmt.Errorf("ntfs: no reader configured for on-demand seek of record %d", record)
	}

	lba := int64(c.mftStartLCN)*int64(c.clusterSize) + int64(record)*int64(c.mftRecordSize) + c.lbaBias
	buf := make([]byte, c.mftRecordSize)
	if _, err := c.reader.ReadAt(buf, lba); err != nil {
		return dirCacheEntry{}, fmt.Errorf("ntfs: seek record %d: %w", record, err)
	}

	rec, err := ParseRecord(buf, c.mftRecordSize)
	if err != nil {
		return dirCacheEntry{}, fmt.Errorf("ntfs: seek record %d: %w", record, err)
	}

	if !rec.IsDirectory() {
		alt := make([]byte, c.mftRecordSize)
		if _, err := c.reader.ReadAt(alt, lba+int64(seqShift)*int64(c.mftRecordSize)); err == nil {
			if altRec, err := ParseRecord(alt, c.mftRecordSize); err == nil && altRec.IsDirectory() {
				rec = altRec
			}
		}
	}

	// A sequence mismatch is accepted: refusing it would silently truncate
	// the path for a deleted ancestor, which is the exact case this
	// recovery tool exists for.
	_ = wantSeq

	entry := dirCacheEntry{IsDir: rec.IsDirectory()}
	var curNamespace Namespace
	var haveName bool
	for _, attr := range WalkAttrs(rec) {
		if attr.Type() != AttrFileName || attr.NonResident() {
			continue
		}
		resident := residentHeader{buf: attr.buf}
		fn, ok := ParseFileNameAttr(resident.Value())
		if !ok {
			continue
		}
		if preferredOver(curNamespace, fn.Namespace(), haveName) {
			entry.Name = fn.Name()
			entry.Parent = fn.ParentReference()
			entry.HasParent = true
			curNamespace = fn.Namespace()
			haveName = true
		}
	}

	c.mu.Lock()
	c.entries[record] = entry
	c.mu.Unlock()
	return entry, nil
}
