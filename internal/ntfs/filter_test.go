package ntfs

import (
	"strings"
	"testing"
)

func TestExtensionFilterNoRulesAllowsEverything(t *testing.T) {
	f := NewExtensionFilter(nil)
	if !f.Allows("jpg") {
		t.Error("expected jpg allowed with no rules configured")
	}
}

func TestExtensionFilterExcludeWins(t *testing.T) {
	f := NewExtensionFilter(nil)
	f.AddInclude("jpg")
	f.AddExclude("jpg")
	if f.Allows("jpg") {
		t.Error("expected exclude to take precedence over include")
	}
}

func TestExtensionFilterIncludeRestricts(t *testing.T) {
	f := NewExtensionFilter(nil)
	f.AddInclude("jpg")
	if f.Allows("png") {
		t.Error("expected png to be rejected when only jpg is included")
	}
	if !f.Allows("jpg") {
		t.Error("expected jpg to be allowed")
	}
	if !f.Allows(".JPG") {
		t.Error("expected normalization to ignore case and leading dot")
	}
}

func TestExtensionFilterSuperTypeInclude(t *testing.T) {
	mime, err := ParseMimeTypes(strings.NewReader("image/jpeg jpg\nimage/png png\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := NewExtensionFilter(mime)
	f.AddInclude("image")
	if !f.Allows("jpg") || !f.Allows("png") {
		t.Error("expected image super-type include to match jpg and png")
	}
	if f.Allows("zip") {
		t.Error("expected zip to be rejected")
	}
}
