package noteservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/marknote/internal/apperr"
	"github.com/starford/marknote/internal/storage"
)

func TestAllowedFile(t *testing.T) {
	cases := map[string]bool{
		"notes.md":       true,
		"NOTES.TXT":      true,
		"a.b.markdown":   true,
		"script.py":      false,
		"noextension":    false,
		"archive.md.zip": false,
	}
	for name, want := range cases {
		if got := AllowedFile(name); got != want {
			t.Errorf("AllowedFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/my notes.md": "my_notes.md",
		`C:\Users\me\todo.txt`:  "todo.txt",
		"..hidden.md":           "hidden.md",
		"résumé.txt":            "rsum.txt",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadUpload(t *testing.T) {
	f := newFixture(t)

	up, err := f.svc.ReadUpload("my notes.md", strings.NewReader("# Title\nthree more words"))
	if err != nil {
		t.Fatalf("ReadUpload: %v", err)
	}
	if up.Filename != "my_notes.md" || up.WordCount != 5 || up.Content != "# Title\nthree more words" {
		t.Errorf("upload = %+v", up)
	}

	if _, err := f.svc.ReadUpload("", strings.NewReader("x")); !errors.Is(err, apperr.ErrEmptyInput) {
		t.Errorf("empty name err = %v", err)
	}
	if _, err := f.svc.ReadUpload("evil.exe", strings.NewReader("x")); !errors.Is(err, apperr.ErrUnsupportedType) {
		t.Errorf("bad extension err = %v", err)
	}
	if _, err := f.svc.ReadUpload("bin.txt", strings.NewReader("\xff\xfe")); !errors.Is(err, apperr.ErrUnsupportedType) {
		t.Errorf("invalid utf-8 err = %v", err)
	}
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	files, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	_ = files.Write("standup.md", []byte("# Standup\nshipped the parser"))
	_ = files.Write("ideas/later.md", []byte("try the new editor"))
	_ = files.Write("empty.md", []byte("   "))
	_ = files.Write("skip.txt", []byte("not markdown"))

	n, err := f.svc.Import(context.Background(), files, "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported = %d, want 2", n)
	}

	titles := map[string]bool{}
	for _, it := range f.svc.ListNotes(context.Background()) {
		titles[it.Title] = true
	}
	if !titles["Standup"] || !titles["later"] {
		t.Errorf("titles = %v", titles)
	}
}
