package ntfs

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// MimeTypes maps file extensions to their registered MIME type, parsed
// from a mime.types-formatted file (one "type/subtype  ext1 ext2 ..."
// record per non-comment line), grounded on the original implementation's
// Context constructor loading /etc/mime.types.
type MimeTypes struct {
	extToType map[string]string
}

const DefaultMimeTypesPath = "/etc/mime.types"

// LoadMimeTypes parses path, tolerating a missing file: a recovery run
// without mime.types installed simply loses MIME-super-type filtering,
// not the whole program.
func LoadMimeTypes(path string) (*MimeTypes, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &MimeTypes{extToType: map[string]string{}}, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseMimeTypes(f)
}

func ParseMimeTypes(r io.Reader) (*MimeTypes, error) {
	m := &MimeTypes{extToType: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		mimeType := fields[0]
		for _, ext := range fields[1:] {
			m.extToType[strings.ToLower(ext)] = mimeType
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// SuperType returns the MIME super-type ("image", "video", "text", ...)
// registered for ext, or "" if ext is unknown.
func (m *MimeTypes) SuperType(ext string) string {
	full, ok := m.extToType[strings.ToLower(ext)]
	if !ok {
		return ""
	}
	if slash := strings.IndexByte(full, '/'); slash >= 0 {
		return full[:slash]
	}
	return full
}

// Type returns the full registered MIME type for ext, or "" if unknown.
func (m *MimeTypes) Type(ext string) string {
	return m.extToType[strings.ToLower(ext)]
}
