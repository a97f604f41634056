package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/docassist/internal/models"
)

var testPolicy = Policy{
	MaxSizeBytes: 10 * 1024 * 1024,
	Extensions:   []string{".pdf", ".txt", ".jpg", "jpeg"},
}

func TestPolicy_Check(t *testing.T) {
	tests := []struct {
		name      string
		file      File
		wantField string
	}{
		{"pdf ok", File{Name: "contract.pdf", Size: 2097152}, ""},
		{"upper-case extension ok", File{Name: "SCAN.JPEG", Size: 10}, ""},
		{"exactly at limit", File{Name: "a.txt", Size: 10 * 1024 * 1024}, ""},
		{"docx rejected", File{Name: "contract.docx", Size: 10}, "extension"},
		{"no extension", File{Name: "README", Size: 10}, "extension"},
		{"dot file", File{Name: ".pdf", Size: 10}, ""},
		{"too large", File{Name: "big.pdf", Size: 10*1024*1024 + 1}, "size"},
		{"too large and bad type", File{Name: "big.exe", Size: 1 << 40}, "extension"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testPolicy.Check(tt.file)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Check() = %v, want nil", err)
				}
				return
			}
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Check() = %v, want *models.ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestPolicy_CheckMessages(t *testing.T) {
	err := testPolicy.Check(File{Name: "x.doc"})
	if got, want := models.UserMessage(err), "Please upload PDF, TXT, JPG, or JPEG files only."; got != want {
		t.Errorf("extension message = %q, want %q", got, want)
	}
	err = testPolicy.Check(File{Name: "x.pdf", Size: 11 * 1024 * 1024})
	if got, want := models.UserMessage(err), "File size must be less than 10 MB."; got != want {
		t.Errorf("size message = %q, want %q", got, want)
	}
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
		t.Fatal(err)
	}
	f, err := FromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "notes.txt" || f.Size != 5 {
		t.Errorf("FromPath = %+v", f)
	}
	rc, err := f.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}

	if _, err := FromPath(dir); err == nil {
		t.Error("FromPath(dir) should fail")
	}
	if _, err := FromPath(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("FromPath(missing) should fail")
	}
}

func TestFromBytes(t *testing.T) {
	f := FromBytes("a.pdf", []byte("%PDF"))
	if f.Size != 4 {
		t.Errorf("Size = %d", f.Size)
	}
	rc, err := f.Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF" {
		t.Errorf("content = %q", data)
	}
	if _, err := (File{Name: "empty"}).Open(); err == nil {
		t.Error("zero File should fail to open")
	}
}
