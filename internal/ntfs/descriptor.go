package ntfs

import "fmt"

// FileDescriptor holds everything the dispatcher needs to recover one
// MFT record's data: identity, placement, and the attributes the record
// parser found worth keeping.
type FileDescriptor struct {
	LBA      uint64
	Record   uint32
	Sequence uint16

	Parent    Reference
	Name      string
	Namespace Namespace
	HasName   bool

	Created  FileTime
	Modified FileTime
	Accessed FileTime

	RealSize      uint64
	AllocatedSize uint64

	InUse       bool
	IsDirectory bool

	Runs    []ClusterRun
	Resident []byte // non-nil when $DATA is resident

	// StreamName is the $DATA attribute's stream name, empty for the
	// primary (unnamed) stream and non-empty for an alternate data stream
	// kept because Config.Streams was set.
	StreamName string

	Signature uint64 // first 8 bytes of content, for the magic/mask filter

	// Children holds immediate child names when the descriptor represents
	// a directory, taken from its $INDEX_ROOT; entries that live only in
	// $INDEX_ALLOCATION blocks are not included.
	Children []string

	Path string // filled in by the directory cache once the parent chain resolves

	Done bool
	Err  error
}

// Extension returns the dotted suffix of Name, or "" if there is none.
func (d *FileDescriptor) Extension() string {
	if d.Name == "" {
		return ""
	}
	for i := len(d.Name) - 1; i >= 0; i-- {
		if d.Name[i] == '.' {
			if i == len(d.Name)-1 {
				return ""
			}
			return d.Name[i+1:]
		}
		if d.Name[i] == '/' || d.Name[i] == '\\' {
			return ""
		}
	}
	return ""
}

func (d *FileDescriptor) String() string {
	return fmt.Sprintf("record %d (lba=%d) %q", d.Record, d.LBA, d.Name)
}
