package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testdata/chip.7z holds chip.bin, 1024 bytes of (i*7)&0xFF.
func chipBin() []byte {
	b := make([]byte, 1024)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	want := chipBin()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(want)
	zw.Close()

	var zipped bytes.Buffer
	w := zip.NewWriter(&zipped)
	if _, err := w.Create("dir/"); err != nil {
		t.Fatal(err)
	}
	f, err := w.Create("dir/chip.bin")
	if err != nil {
		t.Fatal(err)
	}
	f.Write(want)
	w.Close()

	tests := []struct {
		name string
		path string
	}{
		{"plain", writeFile(t, "chip.bin", want)},
		{"no extension", writeFile(t, "chip", want)},
		{"gzip", writeFile(t, "chip.bin.gz", gz.Bytes())},
		{"zip", writeFile(t, "chip.ZIP", zipped.Bytes())},
		{"7z", filepath.Join("testdata", "chip.7z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadFile(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("expected %d bytes of chip.bin, got %d bytes", len(want), len(got))
			}
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	var empty bytes.Buffer
	zip.NewWriter(&empty).Close()

	if _, err := LoadFile(writeFile(t, "empty.zip", empty.Bytes())); !errors.Is(err, ErrEmptyArchive) {
		t.Errorf("expected ErrEmptyArchive, got %v", err)
	}
	if _, err := LoadFile(writeFile(t, "bad.gz", []byte("not gzip"))); err == nil {
		t.Error("expected an error for a corrupt gzip file")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.bin")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
