package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "John Doe.txt")
	if err := os.WriteFile(path, []byte("Python Django AWS Docker"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	text, err := Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Python Django AWS Docker" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.odt")
	if err := os.WriteFile(path, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Extract(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResumeName(t *testing.T) {
	cases := map[string]string{
		"/tmp/uploads/John Doe.pdf": "John_Doe",
		"resume.docx":               "resume",
		"data/my resume v2.txt":     "my_resume_v2",
	}

	for path, want := range cases {
		if got := ResumeName(path); got != want {
			t.Fatalf("ResumeName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestStripTags(t *testing.T) {
	content := `<w:p><w:r><w:t>Go developer</w:t></w:r></w:p>`
	got := strings.Join(strings.Fields(stripTags(content)), " ")
	if got != "Go developer" {
		t.Fatalf("stripTags = %q, want %q", got, "Go developer")
	}
}
