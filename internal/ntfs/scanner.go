package ntfs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Scanner walks a device sequentially, one volume sector at a time,
// dispatching each buffer by its leading magic bytes: a boot sector,
// an INDX directory-index block, an MFT record, or opaque data the
// scanner has no structure for and simply skips past.
type Scanner struct {
	reader SectorReader
	size   int64

	sectorSize    int
	clusterSize   int
	mftRecordSize int
	indexRecSize  int

	start uint64
	end   uint64
	limit uint64
}

// DeviceSize is satisfied by internal/disk.Reader; kept separate from
// SectorReader so callers that only have a raw ReadAt can still scan a
// bounded region via Config.EndLBA.
type DeviceSize interface {
	Size() int64
}

func NewScanner(reader SectorReader, size int64, cfg Config) *Scanner {
	s := &Scanner{
		reader:     reader,
		size:       size,
		sectorSize: 512,
		start:      cfg.StartLBA,
		end:        cfg.EndLBA,
		limit:      cfg.ScanLimit,
	}
	return s
}

// BootResult carries the geometry recovered from the volume's boot
// sector, needed to interpret every later MFT record and data run.
type BootResult struct {
	Boot          BootSector
	LBA           uint64
	ClusterSize   int
	MFTRecordSize int
	IndexRecSize  int
}

// FindBootSector scans from the configured start LBA looking for a valid
// NTFS boot sector and returns the geometry it describes. It is the
// scanner's first step: everything else is interpreted relative to the
// sector size and cluster size this discovers.
func (s *Scanner) FindBootSector() (BootResult, error) {
	buf := make([]byte, bootSectorSize)
	lba := s.start
	end := s.boundedEnd()
	for lba < end {
		n, err := s.reader.ReadAt(buf, int64(lba)*int64(s.sectorSize))
		if err != nil && err != io.EOF {
			return BootResult{}, fmt.Errorf("scanner: read at lba %d: %w", lba, err)
		}
		if n < bootSectorSize {
			break
		}
		if boot, err := ParseBootSector(buf); err == nil {
			s.clusterSize = boot.ClusterSize()
			s.mftRecordSize = boot.MFTRecordSize()
			s.indexRecSize = boot.IndexRecordSize()
			return BootResult{
				Boot:          boot,
				LBA:           lba,
				ClusterSize:   s.clusterSize,
				MFTRecordSize: s.mftRecordSize,
				IndexRecSize:  s.indexRecSize,
			}, nil
		}
		lba++
	}
	return BootResult{}, fmt.Errorf("scanner: no NTFS boot sector found in range [%d:%d)", s.start, end)
}

func (s *Scanner) boundedEnd() uint64 {
	maxLBA := uint64(s.size) / uint64(s.sectorSize)
	if s.end != 0 && s.end < maxLBA {
		return s.end
	}
	return maxLBA
}

// BufferKind identifies what ScanNext found at a given LBA.
type BufferKind int

const (
	KindOpaque BufferKind = iota
	KindBootSector
	KindIndexBlock
	KindRecord
)

// ScanResult is one sector-aligned buffer the scanner recognized, sized
// to its full structure (an MFT record grows to its allocated size, an
// INDX block to the volume's index record size).
type ScanResult struct {
	Kind BufferKind
	LBA  uint64
	Buf  []byte
}

// Scan walks sequential sectors starting at startLBA, classifying each
// by magic bytes and invoking fn with the full-sized buffer for anything
// it recognizes. It stops at the configured end LBA, the device's end,
// or after emitting cfg.ScanLimit results, whichever comes first.
func (s *Scanner) Scan(startLBA uint64, fn func(ScanResult) error) error {
	end := s.boundedEnd()
	lba := startLBA
	var emitted uint64

	sectorBuf := make([]byte, s.sectorSize)
	for lba < end {
		if s.limit != 0 && emitted >= s.limit {
			return nil
		}

		n, err := s.reader.ReadAt(sectorBuf, int64(lba)*int64(s.sectorSize))
		if err != nil && err != io.EOF {
			return fmt.Errorf("scanner: read at lba %d: %w", lba, err)
		}
		if n < 4 {
			lba++
			continue
		}

		switch {
		case ParseBootSectorSignatureOnly(sectorBuf):
			result, err := s.readFull(lba, bootSectorSize)
			if err != nil {
				lba++
				continue
			}
			if err := fn(ScanResult{Kind: KindBootSector, LBA: lba, Buf: result}); err != nil {
				return err
			}
			emitted++
			lba++

		case string(sectorBuf[0:4]) == "INDX":
			size := s.indexRecSize
			if size == 0 {
				size = s.clusterSize
			}
			result, err := s.readFull(lba, size)
			if err != nil {
				lba++
				continue
			}
			if err := fn(ScanResult{Kind: KindIndexBlock, LBA: lba, Buf: result}); err != nil {
				return err
			}
			emitted++
			lba += uint64(size) / uint64(s.sectorSize)

		case string(sectorBuf[0:4]) == recordSignature:
			allocSize := binary.LittleEndian.Uint32(sectorBuf[28:32])
			size := s.mftRecordSize
			if size == 0 || (allocSize > 0 && int(allocSize) <= size) {
				if allocSize > 0 {
					size = int(allocSize)
				}
			}
			if size <= 0 || size > 4*1024*1024 {
				lba++
				continue
			}
			result, err := s.readFull(lba, size)
			if err != nil {
				lba++
				continue
			}
			if err := fn(ScanResult{Kind: KindRecord, LBA: lba, Buf: result}); err != nil {
				return err
			}
			emitted++
			lba += uint64(size) / uint64(s.sectorSize)

		default:
			lba++
		}
	}
	return nil
}

func (s *Scanner) readFull(lba uint64, size int) ([]byte, error) {
	buf := make([]byte, size)
	_, err := s.reader.ReadAt(buf, int64(lba)*int64(s.sectorSize))
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

// ParseBootSectorSignatureOnly checks just the jump/OEM/end-tag bytes
// without requiring the full 512-byte buffer the caller has already
// read into a reusable sector-sized slice.
func ParseBootSectorSignatureOnly(buf []byte) bool {
	if len(buf) < bootSectorSize {
		return false
	}
	b := BootSector{buf: buf}
	return b.Valid()
}
