package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CommentMarker marks a line to skip wherever it appears in the line.
const CommentMarker = "#"

// LoadOptions control how a source file is read.
type LoadOptions struct {
	// Separator between fields. Empty means DefaultSeparator.
	Separator string
	// Encoding of the file as an HTML/WHATWG label (e.g. "windows-1252").
	// Empty or UTF-8 reads the bytes as they are.
	Encoding string
}

// LoadRecords reads the file at path and decodes every data line with
// decode. The first decode failure aborts the load.
func LoadRecords[T any](path string, decode Decoder[T], opts LoadOptions) ([]T, error) {
	return loadSource(FileSource(path), decode, opts)
}

// ReadRecords decodes records from r. The first line is a header and lines
// containing CommentMarker are skipped. Output order follows input order.
// path is only used for error reporting.
func ReadRecords[T any](r io.Reader, path string, decode Decoder[T], opts LoadOptions) ([]T, error) {
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	p := NewFieldParser(path, opts.Separator)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []T
		header  = true
	)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if header {
			header = false
			continue
		}
		if strings.Contains(line, CommentMarker) {
			continue
		}
		rec, err := decode(line, p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
