package ntfs

import "strings"

// ExtensionFilter decides whether a recovered file's extension should be
// kept, based on an include list, an exclude list, and the MIME registry's
// super-types (e.g. "image" matches "image/jpeg", "image/png", ...).
// An empty include list means "include everything not excluded".
type ExtensionFilter struct {
	include map[string]bool
	exclude map[string]bool
	mime    *MimeTypes
}

func NewExtensionFilter(mime *MimeTypes) *ExtensionFilter {
	return &ExtensionFilter{
		include: make(map[string]bool),
		exclude: make(map[string]bool),
		mime:    mime,
	}
}

// AddInclude registers one -i token: either a literal extension ("jpg")
// or a MIME super-type ("image").
func (f *ExtensionFilter) AddInclude(token string) {
	f.include[normalizeExt(token)] = true
}

// AddExclude registers one -x token, same grammar as AddInclude.
func (f *ExtensionFilter) AddExclude(token string) {
	f.exclude[normalizeExt(token)] = true
}

func normalizeExt(token string) string {
	return strings.ToLower(strings.TrimPrefix(token, "."))
}

// Allows reports whether a file with the given extension passes the
// configured include/exclude rules.
func (f *ExtensionFilter) Allows(ext string) bool {
	ext = normalizeExt(ext)
	if f.matches(f.exclude, ext) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return f.matches(f.include, ext)
}

func (f *ExtensionFilter) matches(set map[string]bool, ext string) bool {
	if set[ext] {
		return true
	}
	if f.mime == nil {
		return false
	}
	superType := f.mime.SuperType(ext)
	return superType != "" && set[superType]
}
