package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/wppsim/internal/model"
)

func TestTypeFor(t *testing.T) {
	tests := []struct {
		mime string
		want model.MessageType
	}{
		{"image/png", model.Image},
		{"video/mp4", model.Video},
		{"audio/mpeg", model.Audio},
		{"text/vcard; charset=utf-8", model.Contact},
		{"application/pdf", model.Document},
		{"text/plain; charset=utf-8", model.Document},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := TypeFor(tt.mime); got != tt.want {
				t.Errorf("TypeFor(%q) = %s, want %s", tt.mime, got, tt.want)
			}
		})
	}
}

func TestClassifyPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.bin")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatal(err)
	}
	a, err := Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.MIME != "image/png" || a.Type != model.Image || a.Size != int64(len(png)) {
		t.Errorf("attachment = %+v", a)
	}
}

func TestClassifyText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("shopping list\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	a, err := Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != model.Document {
		t.Errorf("type = %s, want document", a.Type)
	}
}

func TestClassifyErrors(t *testing.T) {
	if _, err := Classify(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Classify(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}
