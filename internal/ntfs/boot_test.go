package ntfs

import (
	"encoding/binary"
	"testing"
)

func makeBootSector(bytesPerSector uint16, sectorsPerCluster uint8, mftRecordSizeByte, indexRecSizeByte int8) []byte {
	buf := make([]byte, bootSectorSize)
	buf[0], buf[1], buf[2] = 0xEB, 0x52, 0x90
	copy(buf[3:11], "NTFS    ")
	binary.LittleEndian.PutUint16(buf[11:13], bytesPerSector)
	buf[13] = sectorsPerCluster
	binary.LittleEndian.PutUint64(buf[48:56], 786432) // MFT start LCN
	buf[0x40] = byte(mftRecordSizeByte)
	buf[0x44] = byte(indexRecSizeByte)
	binary.LittleEndian.PutUint16(buf[510:512], 0xAA55)
	return buf
}

func TestParseBootSectorValid(t *testing.T) {
	buf := makeBootSector(512, 8, -10, -12)
	boot, err := ParseBootSector(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := boot.BytesPerSector(), uint16(512); got != want {
		t.Errorf("BytesPerSector = %d, want %d", got, want)
	}
	if got, want := boot.ClusterSize(), 4096; got != want {
		t.Errorf("ClusterSize = %d, want %d", got, want)
	}
	if got, want := boot.MFTRecordSize(), 1024; got != want {
		t.Errorf("MFTRecordSize = %d, want %d", got, want)
	}
	if got, want := boot.IndexRecordSize(), 4096; got != want {
		t.Errorf("IndexRecordSize = %d, want %d", got, want)
	}
	if got, want := boot.MFTStartLCN(), uint64(786432); got != want {
		t.Errorf("MFTStartLCN = %d, want %d", got, want)
	}
}

func TestParseBootSectorPositiveRecordSize(t *testing.T) {
	buf := makeBootSector(512, 8, 2, 1)
	boot, err := ParseBootSector(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := boot.MFTRecordSize(), 2*boot.ClusterSize(); got != want {
		t.Errorf("MFTRecordSize = %d, want %d", got, want)
	}
}

func TestParseBootSectorRejectsBadSignature(t *testing.T) {
	buf := makeBootSector(512, 8, -10, -12)
	buf[3] = 'X'
	if _, err := ParseBootSector(buf); err == nil {
		t.Fatal("expected error for corrupted OEM id")
	}
}

func TestParseBootSectorRejectsShortBuffer(t *testing.T) {
	if _, err := ParseBootSector(make([]byte, 100)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}
