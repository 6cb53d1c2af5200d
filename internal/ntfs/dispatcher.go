package ntfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Dispatcher recovers the content a FileDescriptor points to: resident
// bytes written directly, non-resident data streamed cluster run by
// cluster run. Small files are recovered inline on the caller's
// goroutine; files larger than Config.ForkThreshold are handed to a
// bounded pool of worker goroutines, mirroring the original program's
// fork-per-large-file model without the process overhead.
type Dispatcher struct {
	cfg    Config
	reader SectorReader
	cache  *DirectoryCache
	filter *ExtensionFilter
	sink   EventSink

	clusterSize int
	extraDumps  *ExtraDumpWriter
	bias        int64

	sem     chan struct{}
	wg      sync.WaitGroup
	active  int64
	total   int64
}

// SetExtraDumps attaches the ntfs.exts/ntfs.dirs writer used when
// Config.ExtraDumps is set. Safe to leave unset (nil) otherwise.
func (disp *Dispatcher) SetExtraDumps(w *ExtraDumpWriter) {
	disp.extraDumps = w
}

// SetBias records the LBA bias recomputed whenever the scanner encounters
// $MFT record 0 (spec's "LBA bias"), so cluster-run reads land at the
// right device offset when the NTFS volume doesn't start at LBA 0.
func (disp *Dispatcher) SetBias(bias int64) {
	atomic.StoreInt64(&disp.bias, bias)
}

func NewDispatcher(cfg Config, reader SectorReader, cache *DirectoryCache, filter *ExtensionFilter, sink EventSink, clusterSize int) *Dispatcher {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		cfg:         cfg,
		reader:      reader,
		cache:       cache,
		filter:      filter,
		sink:        sink,
		clusterSize: clusterSize,
		sem:         make(chan struct{}, workers),
	}
}

// Submit recovers d, either inline or on a pooled goroutine depending on
// its declared size relative to Config.ForkThreshold.
func (disp *Dispatcher) Submit(d *FileDescriptor) {
	if d.RealSize > uint64(disp.cfg.ForkThreshold) && disp.cfg.ForkThreshold > 0 {
		disp.wg.Add(1)
		atomic.AddInt64(&disp.total, 1)
		disp.sem <- struct{}{}
		go func() {
			defer disp.wg.Done()
			defer func() { <-disp.sem }()
			atomic.AddInt64(&disp.active, 1)
			defer atomic.AddInt64(&disp.active, -1)
			disp.recover(d)
		}()
		return
	}
	atomic.AddInt64(&disp.total, 1)
	disp.recover(d)
}

// Wait blocks until every dispatched worker has finished.
func (disp *Dispatcher) Wait() {
	disp.wg.Wait()
}

// ActiveWorkers and TotalDispatched report pool activity for a progress
// display; neither binary in this repository calls them.
func (disp *Dispatcher) ActiveWorkers() int64 { return atomic.LoadInt64(&disp.active) }
func (disp *Dispatcher) TotalDispatched() int64 { return atomic.LoadInt64(&disp.total) }

func (disp *Dispatcher) emit(e FileEvent) {
	if disp.sink != nil {
		disp.sink.Send(e)
	}
}

func (disp *Dispatcher) recover(d *FileDescriptor) {
	if !disp.cfg.Undelete && !d.InUse {
		disp.emit(FileEvent{Descriptor: d, Skipped: true, Reason: "not in use"})
		return
	}
	if !d.HasName {
		disp.emit(FileEvent{Descriptor: d, Skipped: true, Reason: "no file name attribute"})
		return
	}
	if d.IsDirectory && !disp.cfg.ListOnly {
		disp.emit(FileEvent{Descriptor: d, Skipped: true, Reason: "directory"})
		return
	}

	ext := d.Extension()
	if disp.filter != nil && !disp.filter.Allows(ext) {
		disp.emit(FileEvent{Descriptor: d, Skipped: true, Reason: "filtered by extension"})
		return
	}
	disp.extraDumps.ObserveExtension(ext)

	if disp.cfg.Magic != "" {
		magic, mask, err := ParseMagic(disp.cfg.Magic)
		if err == nil {
			content := disp.peekContent(d)
			if !MatchesSignature(content, magic, mask) {
				disp.emit(FileEvent{Descriptor: d, Skipped: true, Reason: "content signature mismatch"})
				return
			}
		}
	}

	path, err := disp.resolvePath(d)
	if err != nil {
		d.Err = err
		disp.emit(FileEvent{Descriptor: d, Err: err})
		return
	}
	d.Path = path

	if disp.cfg.ListOnly {
		disp.emit(FileEvent{Descriptor: d, Recovered: true, Reason: "listed"})
		return
	}

	if !disp.cfg.Recover {
		d.Done = true
		disp.emit(FileEvent{Descriptor: d, Recovered: true, Reason: "dry-run"})
		return
	}

	outPath := disp.mangledPath(d)
	if err := disp.writeContent(d, outPath); err != nil {
		d.Err = err
		disp.emit(FileEvent{Descriptor: d, Err: err})
		return
	}

	if disp.cfg.Restore {
		disp.restoreTimes(outPath, d)
	}

	d.Done = true
	disp.emit(FileEvent{Descriptor: d, Recovered: true})
}

func (disp *Dispatcher) resolvePath(d *FileDescriptor) (string, error) {
	if disp.cache == nil || !disp.cfg.Recurse {
		return "/" + d.Name, nil
	}
	return disp.cache.Resolve(d.Name, d.Parent)
}

// peekContent reads just enough of the file's content to evaluate a
// content-signature filter: the resident value, or the first cluster of
// the first non-sparse run.
func (disp *Dispatcher) peekContent(d *FileDescriptor) []byte {
	if d.Resident != nil {
		return d.Resident
	}
	for _, run := range d.Runs {
		if run.Sparse {
			continue
		}
		buf := make([]byte, 8)
		off := int64(run.FirstLCN)*int64(disp.clusterSize) + atomic.LoadInt64(&disp.bias)
		if _, err := disp.reader.ReadAt(buf, off); err == nil {
			return buf
		}
		break
	}
	return nil
}

const defaultOutputDir = "recovered"

// mangledPath builds the destination path, optionally bucketed by the
// record's modification year/month/day (the current date when the record
// has no modification time from 1980 on), per Config.YearDirs/MonthDirs/DayDirs.
func (disp *Dispatcher) mangledPath(d *FileDescriptor) string {
	base := disp.cfg.Output
	if base == "" {
		base = defaultOutputDir
	}
	t := d.Modified.Time()
	if t.IsZero() || t.Year() < 1980 {
		t = time.Now()
	}
	parts := []string{base}
	if disp.cfg.YearDirs {
		parts = append(parts, fmt.Sprintf("%04d", t.Year()))
	}
	if disp.cfg.MonthDirs {
		parts = append(parts, fmt.Sprintf("%02d", t.Month()))
	}
	if disp.cfg.DayDirs {
		parts = append(parts, fmt.Sprintf("%02d", t.Day()))
	}
	name := d.Name
	if name == "" {
		name = fmt.Sprintf("record_%d", d.Record)
	}
	if d.StreamName != "" {
		name = name + "_" + d.StreamName
	}
	parts = append(parts, name)
	return filepath.Join(parts...)
}

// writeContent applies the overwrite policy and then streams the file's
// bytes to outPath: the resident value directly, or each cluster run in
// turn for non-resident data.
func (disp *Dispatcher) writeContent(d *FileDescriptor, outPath string) error {
	if skip, err := disp.shouldSkipExisting(d, outPath); err != nil {
		return err
	} else if skip {
		disp.emit(FileEvent{Descriptor: d, Skipped: true, Reason: "destination exists"})
		return nil
	}

	if disp.cfg.Confirm != nil && d.Err != nil {
		if !disp.cfg.Confirm(fmt.Sprintf("anomaly recovering %s: %v", d.Name, d.Err)) {
			return fmt.Errorf("ntfs: recovery of %s cancelled by operator", d.Name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ntfs: mkdir %s: %w", filepath.Dir(outPath), err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("ntfs: create %s: %w", outPath, err)
	}
	defer out.Close()

	if d.Resident != nil {
		_, err := out.Write(d.Resident)
		return err
	}

	remaining := int64(d.RealSize)
	buf := make([]byte, 0)
	for _, run := range d.Runs {
		clusters := run.LastLCN - run.FirstLCN
		runBytes := int64(clusters) * int64(disp.clusterSize)
		if remaining < runBytes {
			runBytes = remaining
		}
		if runBytes <= 0 {
			break
		}

		if run.Sparse {
			if _, err := out.Seek(runBytes, 1); err != nil {
				zeros := make([]byte, runBytes)
				out.Write(zeros)
			}
			remaining -= runBytes
			continue
		}

		if int64(cap(buf)) < runBytes {
			buf = make([]byte, runBytes)
		}
		chunk := buf[:runBytes]
		off := int64(run.FirstLCN)*int64(disp.clusterSize) + atomic.LoadInt64(&disp.bias)
		if _, err := disp.reader.ReadAt(chunk, off); err != nil {
			return fmt.Errorf("ntfs: read run lcn=%d: %w", run.FirstLCN, err)
		}
		if _, err := out.Write(chunk); err != nil {
			return err
		}
		remaining -= runBytes
	}
	return nil
}

// shouldSkipExisting implements the overwrite policy: a pre-existing
// destination is left alone if SkipExisting is set, or if its size,
// modification time and (when Config.Magic is set) content signature
// already match.
func (disp *Dispatcher) shouldSkipExisting(d *FileDescriptor, outPath string) (bool, error) {
	info, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if disp.cfg.SkipExisting {
		return true, nil
	}
	if uint64(info.Size()) != d.RealSize {
		return false, nil
	}
	if !d.Modified.IsZero() && !info.ModTime().Equal(d.Modified.Time()) {
		return false, nil
	}
	if disp.cfg.Magic != "" {
		if magic, mask, err := ParseMagic(disp.cfg.Magic); err == nil {
			f, err := os.Open(outPath)
			if err != nil {
				return false, nil
			}
			head := make([]byte, 8)
			n, _ := f.Read(head)
			f.Close()
			if !MatchesSignature(head[:n], magic, mask) {
				return false, nil
			}
		}
	}
	return true, nil
}

func (disp *Dispatcher) restoreTimes(path string, d *FileDescriptor) {
	mtime := d.Modified.Time()
	atime := d.Accessed.Time()
	if mtime.IsZero() {
		mtime = time.Now()
	}
	if atime.IsZero() {
		atime = mtime
	}
	os.Chtimes(path, atime, mtime)
}
