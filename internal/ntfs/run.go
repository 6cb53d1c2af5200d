package ntfs

import (
	"fmt"
	"os"
)

// Result summarizes one end-to-end recovery run.
type Result struct {
	Scanned   int
	Recovered int
	Skipped   int
	Failed    int
}

// Run scans reader for NTFS MFT records and INDX directory blocks and
// dispatches every in-scope record to recovery, per cfg. It is the single
// entry point cmd/ntfsrecover and cmd/ntfsrecover-tui both call.
func Run(cfg Config, reader SectorReader, size int64, sink EventSink) (Result, error) {
	scanner := NewScanner(reader, size, cfg)

	bootResult, err := scanner.FindBootSector()
	if err != nil {
		return Result{}, fmt.Errorf("ntfs: %w", err)
	}

	mime, err := LoadMimeTypes(cfg.MimeTypesPath)
	if err != nil {
		mime, _ = LoadMimeTypes("")
	}
	filter := NewExtensionFilter(mime)
	for _, inc := range cfg.Include {
		filter.AddInclude(inc)
	}
	for _, exc := range cfg.Exclude {
		filter.AddExclude(exc)
	}

	cache := NewDirectoryCache(reader, bootResult.Boot.MFTStartLCN(), bootResult.ClusterSize, 512, bootResult.MFTRecordSize)
	dispatcher := NewDispatcher(cfg, reader, cache, filter, sink, bootResult.ClusterSize)

	var extraDumps *ExtraDumpWriter
	if cfg.ExtraDumps {
		extraDumps, err = NewExtraDumpWriter(cfg.Output)
		if err != nil {
			return Result{}, fmt.Errorf("ntfs: %w", err)
		}
		defer extraDumps.Close()
		dispatcher.SetExtraDumps(extraDumps)
	}

	mftRecordSize := bootResult.MFTRecordSize
	if cfg.RecordSizeOverride > 0 {
		mftRecordSize = cfg.RecordSizeOverride
	}

	var result Result
	var lbaBias int64

	scanErr := scanner.Scan(bootResult.LBA, func(sr ScanResult) error {
		switch sr.Kind {
		case KindRecord:
			ApplyFixup(sr.Buf, 512)
			rec, err := ParseRecord(sr.Buf, mftRecordSize)
			if err != nil {
				result.Failed++
				return nil
			}
			result.Scanned++

			if rec.RecordNumber() == 0 {
				expectedLBA := int64(bootResult.Boot.MFTStartLCN()) * int64(bootResult.ClusterSize)
				lbaBias = int64(sr.LBA)*512 - expectedLBA
				cache.SetBias(lbaBias)
				dispatcher.SetBias(lbaBias)
			}

			d := ParseDescriptor(rec, sr.LBA, cfg.Streams)
			if d.IsDirectory && d.HasName {
				cache.Put(d.Record, d.Name, d.Parent, true)
				extraDumps.ObserveDirectory(d.Name)
			}

			dispatcher.Submit(d)
			if d.Err != nil {
				result.Failed++
			} else if d.Done {
				result.Recovered++
			} else {
				result.Skipped++
			}

		case KindIndexBlock:
			// An INDX buffer's own bytes don't name the directory it
			// belongs to (that link lives in the owning record's
			// $INDEX_ALLOCATION data runs, which a sequential sector
			// scan doesn't reconstruct); parsing it here only validates
			// the signature and fixup so a corrupt block doesn't wedge
			// the scan. Directory children come from $INDEX_ROOT instead
			// (see ParseDescriptor), which is sufficient for the common
			// case of a directory small enough to stay resident.
			ApplyFixup(sr.Buf, 512)
			_, _ = ParseIndexBlock(sr.Buf)
		}
		return nil
	})

	dispatcher.Wait()

	if scanErr != nil {
		return result, scanErr
	}
	return result, nil
}

// stderrSink adapts os.Stderr into a simple text-line EventSink, used when
// no richer observer (the TUI) is attached.
type stderrSink struct{}

func (stderrSink) Send(e FileEvent) {
	switch {
	case e.Recovered:
		fmt.Fprintf(os.Stderr, "recovered %s\n", e.Descriptor)
	case e.Skipped:
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", e.Descriptor, e.Reason)
	case e.Err != nil:
		fmt.Fprintf(os.Stderr, "error %s: %v\n", e.Descriptor, e.Err)
	}
}

// StderrSink is the default EventSink for CLI (non-TUI) runs.
var StderrSink EventSink = stderrSink{}
