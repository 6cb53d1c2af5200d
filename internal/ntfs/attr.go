package ntfs

import "encoding/binary"

// AttrType is the enumerated common attribute header type id.
type AttrType uint32

const (
	AttrStandardInformation AttrType = 0x10
	AttrAttributeList       AttrType = 0x20
	AttrFileName            AttrType = 0x30
	AttrObjectID            AttrType = 0x40
	AttrSecurityDescriptor  AttrType = 0x50
	AttrVolumeName          AttrType = 0x60
	AttrVolumeInformation   AttrType = 0x70
	AttrData                AttrType = 0x80
	AttrIndexRoot           AttrType = 0x90
	AttrIndexAllocation     AttrType = 0xA0
	AttrBitmap              AttrType = 0xB0
	AttrReparsePoint        AttrType = 0xC0
	AttrEAInformation       AttrType = 0xD0
	AttrEA                  AttrType = 0xE0
	AttrPropertySet         AttrType = 0xF0
	AttrLoggedUtilityStream AttrType = 0x100
	AttrEnd                 AttrType = 0xFFFFFFFF
)

func (t AttrType) String() string {
	switch t {
	case AttrStandardInformation:
		return "$STANDARD_INFORMATION"
	case AttrAttributeList:
		return "$ATTRIBUTE_LIST"
	case AttrFileName:
		return "$FILE_NAME"
	case AttrObjectID:
		return "$OBJECT_ID"
	case AttrSecurityDescriptor:
		return "$SECURITY_DESCRIPTOR"
	case AttrVolumeName:
		return "$VOLUME_NAME"
	case AttrVolumeInformation:
		return "$VOLUME_INFORMATION"
	case AttrData:
		return "$DATA"
	case AttrIndexRoot:
		return "$INDEX_ROOT"
	case AttrIndexAllocation:
		return "$INDEX_ALLOCATION"
	case AttrBitmap:
		return "$BITMAP"
	case AttrReparsePoint:
		return "$REPARSE_POINT"
	case AttrEAInformation:
		return "$EA_INFORMATION"
	case AttrEA:
		return "$EA"
	case AttrPropertySet:
		return "$PROPERTY_SET"
	case AttrLoggedUtilityStream:
		return "$LOGGED_UTILITY_STREAM"
	default:
		return "unknown"
	}
}

const attrHeaderSize = 16

// attrHeader is a read-only view over one attribute's common header,
// positioned at the start of the attribute within its owning record buffer.
type attrHeader struct {
	buf []byte // from this attribute's offset 0 to end of record
}

func (a attrHeader) Type() AttrType   { return AttrType(binary.LittleEndian.Uint32(a.buf[0:4])) }
func (a attrHeader) Length() uint32   { return binary.LittleEndian.Uint32(a.buf[4:8]) }
func (a attrHeader) NonResident() bool { return a.buf[8] != 0 }
func (a attrHeader) NameLength() uint8 { return a.buf[9] }
func (a attrHeader) NameOffset() uint16 { return binary.LittleEndian.Uint16(a.buf[10:12]) }
func (a attrHeader) Flags() uint16     { return binary.LittleEndian.Uint16(a.buf[12:14]) }
func (a attrHeader) InstanceID() uint16 { return binary.LittleEndian.Uint16(a.buf[14:16]) }

// HasStreamName reports whether this is a named (alternate data) stream.
func (a attrHeader) HasStreamName() bool { return a.NameLength() > 0 }

func (a attrHeader) StreamName() string {
	if !a.HasStreamName() {
		return ""
	}
	off := int(a.NameOffset())
	end := off + int(a.NameLength())*2
	if end > len(a.buf) {
		return ""
	}
	return decodeUTF16(a.buf[off:end])
}

// residentHeader is the resident-form fields starting at byte 16.
type residentHeader struct {
	buf []byte // attribute buffer, offset 0 = attribute start
}

func (r residentHeader) ValueLength() uint32 { return binary.LittleEndian.Uint32(r.buf[16:20]) }
func (r residentHeader) ValueOffset() uint16 { return binary.LittleEndian.Uint16(r.buf[20:22]) }
func (r residentHeader) Indexed() bool       { return r.buf[22] != 0 }

func (r residentHeader) Value() []byte {
	off := int(r.ValueOffset())
	length := int(r.ValueLength())
	if off < 0 || length < 0 || off+length > len(r.buf) {
		return nil
	}
	return r.buf[off : off+length]
}

// nonResidentHeader is the non-resident-form fields starting at byte 16.
type nonResidentHeader struct {
	buf []byte
}

func (n nonResidentHeader) FirstVCN() uint64 { return binary.LittleEndian.Uint64(n.buf[16:24]) }
func (n nonResidentHeader) LastVCN() uint64  { return binary.LittleEndian.Uint64(n.buf[24:32]) }
func (n nonResidentHeader) RunlistOffset() uint16 {
	return binary.LittleEndian.Uint16(n.buf[32:34])
}
func (n nonResidentHeader) CompressionUnit() uint16 {
	return binary.LittleEndian.Uint16(n.buf[34:36])
}
func (n nonResidentHeader) AllocSize() uint64 { return binary.LittleEndian.Uint64(n.buf[40:48]) & 0xFFFFFFFFFFFF }
func (n nonResidentHeader) RealSize() uint64  { return binary.LittleEndian.Uint64(n.buf[48:56]) & 0xFFFFFFFFFFFF }
func (n nonResidentHeader) InitSize() uint64  { return binary.LittleEndian.Uint64(n.buf[56:64]) & 0xFFFFFFFFFFFF }

func (n nonResidentHeader) Runlist() []byte {
	off := int(n.RunlistOffset())
	if off < 0 || off > len(n.buf) {
		return nil
	}
	return n.buf[off:]
}
