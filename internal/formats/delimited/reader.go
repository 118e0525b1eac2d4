// Package delimited reads comma- or semicolon-separated text exports.
//
// Exports produced by Brazilian ERP and MES tools are often semicolon
// separated and Latin-1 encoded, so both the delimiter and the encoding are
// detected from the content unless the caller pins them.
package delimited

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Wilian-lab/industrial-kpi-analyzer/internal/table"
)

// Encoding selects how input bytes are decoded.
type Encoding string

const (
	EncodingAuto   Encoding = "auto"
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// ParseEncoding normalises an encoding name from configuration.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	}
	return "", fmt.Errorf("unknown encoding %q (expected auto, utf-8 or latin-1)", s)
}

// Options configures Read. The zero value detects everything.
type Options struct {
	Encoding Encoding
	// Comma forces the field delimiter; 0 means detect.
	Comma rune
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads a delimited text file into a table named after the file.
func ReadFile(path string, opts Options) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return ReadBytes(path, data, opts)
}

// ReadBytes parses delimited text held in memory.
func ReadBytes(name string, data []byte, opts Options) (*table.Table, error) {
	text, err := decode(data, opts.Encoding)
	if err != nil {
		return nil, err
	}

	comma := opts.Comma
	if comma == 0 {
		comma = SniffDelimiter(text)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", name, err)
	}
	return table.FromRecords(name, records), nil
}

func decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if enc == EncodingUTF8 || (enc != EncodingLatin1 && utf8.Valid(data)) {
		return string(data), nil
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("could not decode Latin-1 text: %w", err)
	}
	return string(out), nil
}

// SniffDelimiter picks ';' or ',' by counting both outside quotes on the
// first non-blank line. Ties go to ','.
func SniffDelimiter(text string) rune {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		commas, semis := 0, 0
		quoted := false
		for _, r := range line {
			switch r {
			case '"':
				quoted = !quoted
			case ',':
				if !quoted {
					commas++
				}
			case ';':
				if !quoted {
					semis++
				}
			}
		}
		if semis > commas {
			return ';'
		}
		return ','
	}
	return ','
}
