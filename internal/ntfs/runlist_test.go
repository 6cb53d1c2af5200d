package ntfs

import "testing"

func TestDecodeRunlistSingleRun(t *testing.T) {
	// header 0x21: offset field 2 bytes wide (high nibble 2), length field 1 byte wide.
	// length = 0x0A clusters, offset = 0x0064 (delta LCN); the trailing 0x00 is
	// the offset's high byte, so the buffer ends without a terminator byte.
	buf := []byte{0x21, 0x0A, 0x64, 0x00}
	runs, err := DecodeRunlist(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].FirstLCN != 0x64 {
		t.Errorf("FirstLCN = %d, want %d", runs[0].FirstLCN, 0x64)
	}
	if runs[0].LastLCN != 0x64+0x0A {
		t.Errorf("LastLCN = %d, want %d", runs[0].LastLCN, 0x64+0x0A)
	}
	if runs[0].Sparse {
		t.Errorf("expected non-sparse run")
	}
}

func TestDecodeRunlistSparseRun(t *testing.T) {
	// header 0x01: length field 1 byte wide, offset field 0 bytes -> sparse.
	buf := []byte{0x01, 0x05, 0x00}
	runs, err := DecodeRunlist(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || !runs[0].Sparse {
		t.Fatalf("expected one sparse run, got %+v", runs)
	}
}

func TestDecodeRunlistMultipleRunsAccumulateLCN(t *testing.T) {
	buf := []byte{
		0x11, 0x04, 0x10, // run 1: 4 clusters starting at LCN 0x10
		0x11, 0x04, 0x05, // run 2: delta +5 -> starts at LCN 0x15
		0x00, // terminator
	}
	runs, err := DecodeRunlist(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[1].FirstLCN != 0x15 {
		t.Errorf("second run FirstLCN = %d, want %d", runs[1].FirstLCN, 0x15)
	}
}

func TestDecodeRunlistNegativeDelta(t *testing.T) {
	buf := []byte{
		0x11, 0x04, 0x20, // run 1: starts at LCN 0x20
		0x11, 0x04, 0xF6, // run 2: delta -10 (0xF6 sign-extends to -10 as int8)
		0x00,
	}
	runs, err := DecodeRunlist(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs[1].FirstLCN != 0x20-10 {
		t.Errorf("FirstLCN after negative delta = %d, want %d", runs[1].FirstLCN, 0x20-10)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []ClusterRun{
		{FirstLCN: 100, LastLCN: 109},
		{FirstLCN: 200, LastLCN: 249},
	}
	encoded := EncodeRunlist(original)
	decoded, err := DecodeRunlist(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("got %d runs, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i].FirstLCN != original[i].FirstLCN || decoded[i].LastLCN != original[i].LastLCN {
			t.Errorf("run %d = %+v, want %+v", i, decoded[i], original[i])
		}
	}
}
