package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrEmptyArchive is returned for an archive without any files.
var ErrEmptyArchive = errors.New("utils: archive contains no files")

// LoadFile loads the given file, decompressing it if its extension
// is .gz, .zip or .7z. Archives yield their first regular file.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var decoder io.ReadCloser
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".gz":
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		decoder = gz
	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		f := firstFile(r.File, func(f *zip.File) fs.FileInfo { return f.FileInfo() })
		if f == nil {
			return nil, ErrEmptyArchive
		}
		if decoder, err = f.Open(); err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
		f := firstFile(r.File, func(f *sevenzip.File) fs.FileInfo { return f.FileInfo() })
		if f == nil {
			return nil, ErrEmptyArchive
		}
		if decoder, err = f.Open(); err != nil {
			return nil, fmt.Errorf("utils: %s: %w", filename, err)
		}
	default:
		return data, nil
	}
	defer decoder.Close()

	data, err = io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("utils: %s: %w", filename, err)
	}
	return data, nil
}

func firstFile[F any](files []F, info func(F) fs.FileInfo) F {
	var zero F
	for _, f := range files {
		if info(f).Mode().IsRegular() {
			return f
		}
	}
	return zero
}
