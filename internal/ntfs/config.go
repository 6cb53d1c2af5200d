package ntfs

// Config mirrors the CLI flag table and drives one recovery run end to
// end: it is consulted by the scanner (scan bounds), the record parser
// (which attributes to keep), the filter engine (-i/-x/-m), and the
// dispatcher (concurrency, overwrite policy, path mangling).
type Config struct {
	Device string
	Output string

	StartLBA uint64 // first LBA to scan; no CLI flag sets it (-l names the device)
	EndLBA   uint64 // 0 = scan to end of device; no CLI flag sets it (-L names the output directory)
	ScanLimit uint64 // -s, 0 = unlimited

	RecordSizeOverride int // -t, 0 = read from boot sector

	Undelete  bool // -r, recover records not currently allocated (default: skip them)
	Recover   bool // -R, perform recovery; otherwise dry-run (scan/report only)
	Recurse   bool // resolve full directory paths instead of flat dumping
	Streams   bool // -a, also recover named (alternate) data streams
	ListOnly  bool // -d, directory-listing mode: print children, recover nothing
	Restore   bool // -u, restore original mtime/atime on recovered files

	ForkThreshold int64 // -f, bytes above which recovery runs on a worker goroutine
	MaxWorkers    int   // -n, bounded worker pool size

	Magic string // -m, ASCII or 0x-prefixed hex content-signature literal

	Include []string // -i, repeatable
	Exclude []string // -x, repeatable

	YearDirs  bool // -Y
	MonthDirs bool // -M
	DayDirs   bool // -D

	ExtraDumps bool // -X, also write ntfs.exts / ntfs.dirs

	MimeTypesPath string // -p, override for /etc/mime.types

	SkipExisting bool // -S, never overwrite an existing destination file

	Verbosity int // -v N, 0/1/2

	Confirm func(reason string) bool // -c, pause for operator confirmation on anomaly
}

// DefaultConfig returns the zero-value-safe defaults used when a flag is
// not supplied.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:    4,
		ForkThreshold: 16 * 1024 * 1024,
		MimeTypesPath: DefaultMimeTypesPath,
		YearDirs:      true,
		Recurse:       true, // path resolution is unconditional; there is no flag for it
	}
}
