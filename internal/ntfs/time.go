package ntfs

import "time"

// epochDelta is the number of 100ns intervals between the NTFS epoch
// (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const epochDelta = 116444736000000000

// FileTime is a raw NTFS timestamp: 100ns ticks since 1601-01-01 UTC.
type FileTime uint64

// Time converts an NTFS FILETIME to a UTC time.Time.
func (t FileTime) Time() time.Time {
	unixTicks := int64(t) - epochDelta
	sec := unixTicks / 10000000
	nsec := (unixTicks % 10000000) * 100
	return time.Unix(sec, nsec).UTC()
}

func (t FileTime) IsZero() bool { return t == 0 }
