// Package ingest turns an uploaded file into a raw table, dispatching on the
// file extension.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/delimited"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/formats/xlsx"
	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// ErrUnsupportedFormat is returned for file types the analyzer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// Options configures how files are read.
type Options struct {
	// Sheet selects a worksheet in a workbook; empty means the first one.
	Sheet    string
	Encoding delimited.Encoding
}

// Extensions are the file extensions Load accepts.
var Extensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// Supported reports whether the file extension can be ingested.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads a file from disk.
func LoadFile(path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	return Load(filepath.Base(path), f, opts)
}

// Load reads an upload named name from r. The name decides the format and
// becomes the table name.
func Load(name string, r io.Reader, opts Options) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions, ", "))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", name, err)
	}

	switch ext {
	case ".xlsx", ".xlsm":
		return loadWorkbook(name, data, opts.Sheet)
	default:
		return delimited.ReadBytes(name, data, delimited.Options{Encoding: opts.Encoding})
	}
}

func loadWorkbook(name string, data []byte, sheetName string) (*table.Table, error) {
	wb, err := xlsx.ReadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", name)
	}

	sheet := &wb.Sheets[0]
	if sheetName != "" {
		if sheet, err = wb.GetSheet(sheetName); err != nil {
			return nil, err
		}
	}
	return sheet.Table(name), nil
}
