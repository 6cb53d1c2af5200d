package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wgladysz/ntfsrecover/internal/disk"
	"github.com/wgladysz/ntfsrecover/internal/ntfs"
)

type extList []string

func (e *extList) String() string { return strings.Join(*e, ",") }
func (e *extList) Set(v string) error {
	*e = append(*e, v)
	return nil
}

func main() {
	cfg := ntfs.DefaultConfig()

	var (
		device       = flag.String("l", "", "device or image path to scan")
		outputDir    = flag.String("L", "./recovered", "output directory for recovered files")
		recordSize   = flag.Int("t", 0, "MFT record size override in bytes (0 = read from boot sector)")
		recoverFlag  = flag.Bool("R", false, "perform recovery; otherwise dry-run (scan and report only)")
		restore      = flag.Bool("u", false, "restore original modification/access times on recovered files")
		forkAt       = flag.Int64("f", cfg.ForkThreshold, "byte size above which recovery runs on a worker goroutine")
		workers      = flag.Int("n", cfg.MaxWorkers, "maximum concurrent recovery workers")
		scanLimit    = flag.Uint64("s", 0, "stop after this many scanned records (0 = unlimited)")
		magic        = flag.String("m", "", "require a content-signature match: ASCII literal or 0x-prefixed hex")
		undelete     = flag.Bool("r", false, "also recover records not currently allocated (deleted)")
		yearDirs     = flag.Bool("Y", true, "bucket output by the file's modification year")
		monthDirs    = flag.Bool("M", false, "bucket output by the file's modification month")
		dayDirs      = flag.Bool("D", false, "bucket output by the file's modification day")
		extraDumps   = flag.Bool("X", false, "also write ntfs.exts / ntfs.dirs dump files")
		streams      = flag.Bool("a", false, "also recover named (alternate) data streams")
		listOnly     = flag.Bool("d", false, "list directory entries instead of recovering content")
		mimeTypes    = flag.String("p", ntfs.DefaultMimeTypesPath, "path to a mime.types file for extension filtering")
		skipExisting = flag.Bool("S", false, "never overwrite a file that already exists at the destination")
		verbose      = flag.Int("v", 0, "verbosity level (0-2)")
		confirm      = flag.Bool("c", false, "pause for operator confirmation on anomalies before overwriting")
	)
	var includes, excludes extList
	flag.Var(&includes, "i", "include this extension or MIME super-type (repeatable)")
	flag.Var(&excludes, "x", "exclude this extension or MIME super-type (repeatable)")
	flag.Parse()

	if *device == "" {
		fmt.Println("Usage: ntfsrecover -l <device> [-L <output dir>] [flags]")
		fmt.Println("\nExamples:")
		fmt.Println("  ntfsrecover -l /dev/sdb1 -L ./recovered -R")
		fmt.Println("  ntfsrecover -l disk.img -i jpg -i image -s 200000   # dry-run, no -R")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg.Device = *device
	cfg.Output = *outputDir
	cfg.RecordSizeOverride = *recordSize
	cfg.Recover = *recoverFlag
	cfg.Restore = *restore
	cfg.ForkThreshold = *forkAt
	cfg.MaxWorkers = *workers
	cfg.ScanLimit = *scanLimit
	cfg.Magic = *magic
	cfg.Undelete = *undelete
	cfg.YearDirs = *yearDirs
	cfg.MonthDirs = *monthDirs
	cfg.DayDirs = *dayDirs
	cfg.ExtraDumps = *extraDumps
	cfg.Streams = *streams
	cfg.ListOnly = *listOnly
	cfg.MimeTypesPath = *mimeTypes
	cfg.SkipExisting = *skipExisting
	cfg.Verbosity = *verbose
	cfg.Include = includes
	cfg.Exclude = excludes

	if *confirm {
		cfg.Confirm = func(reason string) bool {
			fmt.Fprintf(os.Stderr, "%s - overwrite? [y/N] ", reason)
			var answer string
			fmt.Scanln(&answer)
			return strings.EqualFold(answer, "y")
		}
	}

	reader, err := disk.Open(cfg.Device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening device: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	if fsType, err := disk.DetectFilesystem(reader); err != nil || fsType != "ntfs" {
		fmt.Fprintf(os.Stderr, "Warning: %s does not look like an NTFS volume (detected %q); scanning anyway.\n", cfg.Device, fsType)
	}

	if !cfg.ListOnly {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}

	result, err := ntfs.Run(cfg, reader, reader.Size(), ntfs.StderrSink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recovery error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nScanned %d records: %d recovered, %d skipped, %d failed.\n",
		result.Scanned, result.Recovered, result.Skipped, result.Failed)
}
