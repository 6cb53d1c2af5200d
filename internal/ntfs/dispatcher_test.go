package ntfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestDispatcher(t *testing.T, cfg Config) (*Dispatcher, ChannelSink) {
	t.Helper()
	sink := make(ChannelSink, 4)
	cfg.Output = t.TempDir()
	disp := NewDispatcher(cfg, nil, nil, NewExtensionFilter(nil), sink, 4096)
	return disp, sink
}

func TestDispatcherSubmitSkipsRecordsNotInUseByDefault(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{})
	d := &FileDescriptor{HasName: true, Name: "a.txt", InUse: false}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if !e.Skipped || e.Reason != "not in use" {
		t.Errorf("event = %+v, want skipped/not in use", e)
	}
}

func TestDispatcherSubmitKeepsNotInUseRecordsWhenUndeleteSet(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{Undelete: true, Recover: true, YearDirs: false})
	d := &FileDescriptor{HasName: true, Name: "a.txt", InUse: false, Resident: []byte("x")}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if e.Skipped && e.Reason == "not in use" {
		t.Errorf("event = %+v, want the not-in-use record kept once Undelete is set", e)
	}
}

func TestDispatcherSubmitSkipsDirectories(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{})
	d := &FileDescriptor{HasName: true, Name: "dir", IsDirectory: true, InUse: true}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if !e.Skipped || e.Reason != "directory" {
		t.Errorf("event = %+v, want skipped/directory", e)
	}
}

func TestDispatcherSubmitSkipsNamelessRecords(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{})
	d := &FileDescriptor{HasName: false, InUse: true}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if !e.Skipped || e.Reason != "no file name attribute" {
		t.Errorf("event = %+v, want skipped/no file name attribute", e)
	}
}

func TestDispatcherRecoversResidentContent(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{YearDirs: false, Recover: true})
	d := &FileDescriptor{
		HasName:  true,
		Name:     "note.txt",
		InUse:    true,
		Resident: []byte("hello recovery"),
		RealSize: 14,
	}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if !e.Recovered {
		t.Fatalf("event = %+v, want recovered", e)
	}
	got, err := os.ReadFile(filepath.Join(disp.cfg.Output, "note.txt"))
	if err != nil {
		t.Fatalf("unexpected error reading recovered file: %v", err)
	}
	if string(got) != "hello recovery" {
		t.Errorf("content = %q, want %q", got, "hello recovery")
	}
}

func TestDispatcherDryRunWritesNothing(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{YearDirs: false})
	d := &FileDescriptor{
		HasName:  true,
		Name:     "note.txt",
		InUse:    true,
		Resident: []byte("hello recovery"),
		RealSize: 14,
	}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if !e.Recovered {
		t.Fatalf("event = %+v, want a reported (but not written) dry-run result", e)
	}
	if _, err := os.Stat(filepath.Join(disp.cfg.Output, "note.txt")); !os.IsNotExist(err) {
		t.Errorf("expected dry-run to leave no file on disk, stat err = %v", err)
	}
}

func TestDispatcherSkipsFilteredExtension(t *testing.T) {
	disp, sink := newTestDispatcher(t, Config{})
	disp.filter = NewExtensionFilter(nil)
	disp.filter.AddInclude("jpg")
	d := &FileDescriptor{HasName: true, Name: "note.txt", InUse: true, Resident: []byte("x")}

	disp.Submit(d)
	disp.Wait()

	e := <-sink
	if !e.Skipped || e.Reason != "filtered by extension" {
		t.Errorf("event = %+v, want skipped/filtered by extension", e)
	}
}

func fileTimeFromUnix(t time.Time) FileTime {
	return FileTime(uint64(t.Unix())*10000000 + epochDelta)
}

func TestMangledPathBucketsByYearMonthDay(t *testing.T) {
	disp, _ := newTestDispatcher(t, Config{YearDirs: true, MonthDirs: true, DayDirs: true})
	d := &FileDescriptor{Name: "pic.jpg", Modified: fileTimeFromUnix(time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC))}

	got := disp.mangledPath(d)
	want := filepath.Join(disp.cfg.Output, "2021", "06", "15", "pic.jpg")
	if got != want {
		t.Errorf("mangledPath = %q, want %q", got, want)
	}
}

func TestShouldSkipExistingHonorsSkipExistingFlag(t *testing.T) {
	disp, _ := newTestDispatcher(t, Config{SkipExisting: true})
	outPath := filepath.Join(disp.cfg.Output, "existing.txt")
	if err := os.WriteFile(outPath, []byte("old"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	d := &FileDescriptor{RealSize: 3}

	skip, err := disp.shouldSkipExisting(d, outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !skip {
		t.Error("expected SkipExisting to force a skip for an existing destination")
	}
}

func TestShouldSkipExistingAllowsMissingDestination(t *testing.T) {
	disp, _ := newTestDispatcher(t, Config{})
	outPath := filepath.Join(disp.cfg.Output, "missing.txt")
	d := &FileDescriptor{RealSize: 3}

	skip, err := disp.shouldSkipExisting(d, outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip {
		t.Error("expected a missing destination to never be skipped")
	}
}
