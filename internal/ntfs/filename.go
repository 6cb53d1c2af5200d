package ntfs

import "encoding/binary"

// Namespace is the NTFS file-name namespace code.
type Namespace uint8

const (
	NamespacePOSIX   Namespace = 0
	NamespaceWin32   Namespace = 1
	NamespaceDOS     Namespace = 2
	NamespaceWin32DOS Namespace = 3
)

const fileNameFixedSize = 66

// FileNameAttr is a read-only view over a resident $FILE_NAME attribute
// value (i.e. the bytes at residentHeader.Value()).
type FileNameAttr struct {
	buf []byte
}

// ParseFileNameAttr wraps the value bytes of a $FILE_NAME attribute.
func ParseFileNameAttr(value []byte) (FileNameAttr, bool) {
	if len(value) < fileNameFixedSize {
		return FileNameAttr{}, false
	}
	return FileNameAttr{buf: value}, true
}

func (f FileNameAttr) ParentReference() Reference {
	return Reference(binary.LittleEndian.Uint64(f.buf[0:8]))
}
func (f FileNameAttr) CreationTime() FileTime { return FileTime(binary.LittleEndian.Uint64(f.buf[8:16])) }
func (f FileNameAttr) ModificationTime() FileTime {
	return FileTime(binary.LittleEndian.Uint64(f.buf[16:24]))
}
func (f FileNameAttr) MFTChangeTime() FileTime {
	return FileTime(binary.LittleEndian.Uint64(f.buf[24:32]))
}
func (f FileNameAttr) AccessTime() FileTime { return FileTime(binary.LittleEndian.Uint64(f.buf[32:40])) }
func (f FileNameAttr) AllocatedSize() uint64 { return binary.LittleEndian.Uint64(f.buf[40:48]) }
func (f FileNameAttr) RealSize() uint64      { return binary.LittleEndian.Uint64(f.buf[48:56]) }
func (f FileNameAttr) Flags() uint32         { return binary.LittleEndian.Uint32(f.buf[56:60]) }
func (f FileNameAttr) ReparseTag() uint32    { return binary.LittleEndian.Uint32(f.buf[60:64]) }
func (f FileNameAttr) NameLength() uint8     { return f.buf[64] }
func (f FileNameAttr) Namespace() Namespace  { return Namespace(f.buf[65]) }

func (f FileNameAttr) Name() string {
	nameBytes := 2 * int(f.NameLength())
	if fileNameFixedSize+nameBytes > len(f.buf) {
		return ""
	}
	return decodeUTF16(f.buf[fileNameFixedSize : fileNameFixedSize+nameBytes])
}

// preferredOver reports whether a file name with the given (candidate)
// namespace should replace the currently selected (current) namespace,
// per spec.md §3's "prefers namespace < 2 (Win32 or POSIX) over the DOS
// short name" rule, generalized to §4.2's record-parser table: a new
// $FILE_NAME only overrides when the existing namespace is >= 2 and the
// new one is < 2.
func preferredOver(current, candidate Namespace, hasCurrent bool) bool {
	if !hasCurrent {
		return true
	}
	return current >= NamespaceDOS && candidate < NamespaceDOS
}
