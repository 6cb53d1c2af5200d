package ntfs

import (
	"encoding/binary"
	"fmt"
)

const indexHeaderSize = 16

// indexHeader is the common {offset, size, allocated, flags} header shared
// by $INDEX_ROOT and each INDX buffer's embedded index (spec.md §3).
type indexHeader struct {
	buf []byte // starts at the header itself
}

func (h indexHeader) EntriesOffset() uint32  { return binary.LittleEndian.Uint32(h.buf[0:4]) }
func (h indexHeader) EntriesSize() uint32    { return binary.LittleEndian.Uint32(h.buf[4:8]) }
func (h indexHeader) AllocatedSize() uint32  { return binary.LittleEndian.Uint32(h.buf[8:12]) }
func (h indexHeader) Flags() uint32          { return binary.LittleEndian.Uint32(h.buf[12:16]) }

const (
	indexEntryFlagSub  = 1 << 0 // has a trailing child-VCN
	indexEntryFlagLast = 1 << 1 // terminates the node, carries no key
)

// IndexEntry is one decoded B-tree entry from an index root or INDX block.
type IndexEntry struct {
	ChildReference Reference
	Name           string
	Namespace      Namespace
	RealSize       uint64
	AllocatedSize  uint64
	HasChildVCN    bool
	ChildVCN       uint64
	Last           bool
}

// ParseIndexEntries walks node entries starting at header's EntriesOffset,
// relative to headerBase (the buffer position the header's own offsets are
// relative to — the IndexRoot value start, or the INDX index-header start).
// It stops at the LAST-flagged entry or when the buffer is exhausted,
// per spec.md §3 ("The LAST flag terminates a node").
func ParseIndexEntries(headerBase []byte, header indexHeader) ([]IndexEntry, error) {
	start := int(header.EntriesOffset())
	end := int(header.EntriesSize())
	if start < 0 || end > len(headerBase) || start > end {
		return nil, fmt.Errorf("index: entries range [%d:%d] outside buffer of %d bytes", start, end, len(headerBase))
	}

	var entries []IndexEntry
	pos := start
	steps := 0
	maxSteps := len(headerBase)/8 + 16
	for pos+16 <= end {
		steps++
		if steps > maxSteps {
			return entries, fmt.Errorf("index: entry walk exceeded bound")
		}

		entryBuf := headerBase[pos:]
		fileRef := Reference(binary.LittleEndian.Uint64(entryBuf[0:8]))
		entryLength := binary.LittleEndian.Uint16(entryBuf[8:10])
		keyLength := binary.LittleEndian.Uint16(entryBuf[10:12])
		flags := binary.LittleEndian.Uint16(entryBuf[12:14])

		if entryLength < 16 || int(entryLength) > len(entryBuf) {
			return entries, fmt.Errorf("index: bad entry length %d at offset %d", entryLength, pos)
		}

		entry := IndexEntry{
			ChildReference: fileRef,
			Last:           flags&indexEntryFlagLast != 0,
		}

		if !entry.Last && keyLength >= fileNameFixedSize {
			if fn, ok := ParseFileNameAttr(entryBuf[16 : 16+int(keyLength)]); ok {
				entry.Name = fn.Name()
				entry.Namespace = fn.Namespace()
				entry.RealSize = fn.RealSize()
				entry.AllocatedSize = fn.AllocatedSize()
			}
		}

		if flags&indexEntryFlagSub != 0 {
			vcnOff := int(entryLength) - 8
			if vcnOff >= 0 && vcnOff+8 <= len(entryBuf) {
				entry.HasChildVCN = true
				entry.ChildVCN = binary.LittleEndian.Uint64(entryBuf[vcnOff : vcnOff+8])
			}
		}

		entries = append(entries, entry)
		if entry.Last {
			break
		}
		pos += int(entryLength)
	}
	return entries, nil
}

// IndexRootAttr is a read-only view over a resident $INDEX_ROOT value.
type IndexRootAttr struct {
	buf []byte
}

const indexRootFixedSize = 16

func ParseIndexRootAttr(value []byte) (IndexRootAttr, bool) {
	if len(value) < indexRootFixedSize+indexHeaderSize {
		return IndexRootAttr{}, false
	}
	return IndexRootAttr{buf: value}, true
}

func (r IndexRootAttr) IndexedAttrType() AttrType {
	return AttrType(binary.LittleEndian.Uint32(r.buf[0:4]))
}
func (r IndexRootAttr) CollationRule() uint32 { return binary.LittleEndian.Uint32(r.buf[4:8]) }
func (r IndexRootAttr) IndexRecordSize() uint32 { return binary.LittleEndian.Uint32(r.buf[8:12]) }

// Entries decodes the B-tree entries contained in the resident root.
func (r IndexRootAttr) Entries() ([]IndexEntry, error) {
	header := indexHeader{buf: r.buf[indexRootFixedSize:]}
	return ParseIndexEntries(r.buf[indexRootFixedSize:], header)
}

const indxFixedHeaderSize = 24

// IndexBlock is a read-only view over one 4 KiB (or volume-defined size)
// INDX buffer belonging to a directory's $INDEX_ALLOCATION stream.
type IndexBlock struct {
	buf []byte
}

// ParseIndexBlock validates the "INDX" signature and wraps the buffer.
// The caller must apply ApplyFixup first, same as for MFT records.
func ParseIndexBlock(buf []byte) (IndexBlock, error) {
	if len(buf) < indxFixedHeaderSize+indexHeaderSize {
		return IndexBlock{}, fmt.Errorf("indx: buffer too small (%d bytes)", len(buf))
	}
	if string(buf[0:4]) != "INDX" {
		return IndexBlock{}, fmt.Errorf("indx: bad signature %q", buf[0:4])
	}
	return IndexBlock{buf: buf}, nil
}

func (b IndexBlock) VCN() uint64 {
	return binary.LittleEndian.Uint64(b.buf[16:24])
}

func (b IndexBlock) Entries() ([]IndexEntry, error) {
	headerBase := b.buf[indxFixedHeaderSize:]
	header := indexHeader{buf: headerBase}
	return ParseIndexEntries(headerBase, header)
}
