package ntfs

import "testing"

func TestFileDescriptorExtension(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"photo.jpg", "jpg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailing.", ""},
		{"", ""},
		{".hidden", "hidden"},
	}
	for _, c := range cases {
		d := &FileDescriptor{Name: c.name}
		if got := d.Extension(); got != c.want {
			t.Errorf("Extension(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFileDescriptorString(t *testing.T) {
	d := &FileDescriptor{Record: 12, LBA: 500, Name: "foo.txt"}
	got := d.String()
	if got == "" {
		t.Fatal("expected non-empty string")
	}
}
