package ntfs

import (
	"encoding/binary"
	"testing"
)

func makeRecord(recordNumber uint32, flags uint16, extraAttrBytes []byte) []byte {
	const size = 1024
	buf := make([]byte, size)
	copy(buf[0:4], "FILE")
	binary.LittleEndian.PutUint16(buf[4:6], 48) // update seq offset
	binary.LittleEndian.PutUint16(buf[6:8], 3)  // update seq size (1 signature + 2 sectors)
	binary.LittleEndian.PutUint16(buf[16:18], 1)
	binary.LittleEndian.PutUint16(buf[20:22], recordHeaderSize)
	binary.LittleEndian.PutUint16(buf[22:24], flags)
	binary.LittleEndian.PutUint32(buf[44:48], recordNumber)

	pos := recordHeaderSize
	copy(buf[pos:], extraAttrBytes)
	pos += len(extraAttrBytes)
	binary.LittleEndian.PutUint32(buf[pos:pos+4], attrEndSentinel)
	pos += 4
	binary.LittleEndian.PutUint32(buf[24:28], uint32(pos)) // used size
	binary.LittleEndian.PutUint32(buf[28:32], size)         // alloc size
	return buf
}

func TestParseRecordValid(t *testing.T) {
	buf := makeRecord(42, RecordFlagInUse|RecordFlagDirectory, nil)
	rec, err := ParseRecord(buf, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RecordNumber() != 42 {
		t.Errorf("RecordNumber = %d, want 42", rec.RecordNumber())
	}
	if !rec.InUse() {
		t.Error("expected InUse")
	}
	if !rec.IsDirectory() {
		t.Error("expected IsDirectory")
	}
}

func TestParseRecordRejectsBadSignature(t *testing.T) {
	buf := makeRecord(1, 0, nil)
	buf[0] = 'X'
	if _, err := ParseRecord(buf, 1024); err == nil {
		t.Fatal("expected error for bad signature")
	}
}

func TestParseRecordRejectsOversizedAlloc(t *testing.T) {
	buf := makeRecord(1, 0, nil)
	binary.LittleEndian.PutUint32(buf[28:32], 99999)
	if _, err := ParseRecord(buf, 1024); err == nil {
		t.Fatal("expected error for alloc size exceeding configured record size")
	}
}

func TestParseRecordRejectsMissingSentinel(t *testing.T) {
	buf := makeRecord(1, 0, nil)
	used := binary.LittleEndian.Uint32(buf[24:28])
	buf[used-1] = 0x00
	if _, err := ParseRecord(buf, 1024); err == nil {
		t.Fatal("expected error for missing end sentinel")
	}
}

func TestApplyFixupRestoresSectorTail(t *testing.T) {
	buf := make([]byte, 1536) // 3 sectors of 512
	binary.LittleEndian.PutUint16(buf[4:6], 48)
	binary.LittleEndian.PutUint16(buf[6:8], 3)
	array := buf[50:54]
	array[0], array[1] = 0xAB, 0xCD
	array[2], array[3] = 0xEF, 0x12
	ApplyFixup(buf, 512)
	if buf[510] != 0xAB || buf[511] != 0xCD {
		t.Errorf("sector 1 tail = %x %x, want ab cd", buf[510], buf[511])
	}
	if buf[1022] != 0xEF || buf[1023] != 0x12 {
		t.Errorf("sector 2 tail = %x %x, want ef 12", buf[1022], buf[1023])
	}
}

func TestWalkAttrsStopsAtSentinel(t *testing.T) {
	attrA := make([]byte, attrHeaderSize)
	binary.LittleEndian.PutUint32(attrA[0:4], uint32(AttrStandardInformation))
	binary.LittleEndian.PutUint32(attrA[4:8], attrHeaderSize)

	buf := makeRecord(7, RecordFlagInUse, attrA)
	rec, err := ParseRecord(buf, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs := WalkAttrs(rec)
	if len(attrs) != 1 {
		t.Fatalf("got %d attrs, want 1", len(attrs))
	}
	if attrs[0].Type() != AttrStandardInformation {
		t.Errorf("Type = %v, want $STANDARD_INFORMATION", attrs[0].Type())
	}
}
