package ntfs

import (
	"encoding/binary"
	"unicode/utf16"
)

// decodeUTF16 decodes a little-endian UTF-16 byte slice, grounded on the
// teacher's internal/ntfs.decodeUTF16.
func decodeUTF16(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(u16))
}
