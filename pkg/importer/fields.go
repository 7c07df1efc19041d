package importer

import (
	"math"
	"strconv"
	"strings"

	"github.com/hazyhaar/lavinia/pkg/election"
)

// Unbounded disables the upper length check of ParseString.
const Unbounded = -1

// DefaultSeparator is the field separator of every election file.
const DefaultSeparator = ";"

// FieldParser turns raw fields of one file into typed values. Every error it
// returns is a MalformedRecord carrying the file path and the current line.
type FieldParser struct {
	path      string
	separator string
	line      string
}

// NewFieldParser returns a parser for the file at path. An empty separator
// selects DefaultSeparator.
func NewFieldParser(path, separator string) *FieldParser {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &FieldParser{path: path, separator: separator}
}

// Path returns the file the parser reports errors against.
func (p *FieldParser) Path() string { return p.path }

// ParseLength splits line on the separator and checks the field count.
// It also makes line the current line for subsequent errors.
func (p *FieldParser) ParseLength(line string, n int) ([]string, error) {
	p.line = line
	if line == "" {
		return nil, p.fail("empty line, expected %d fields", n)
	}
	fields := strings.Split(line, p.separator)
	if len(fields) != n {
		return nil, p.fail("expected %d fields, got %d", n, len(fields))
	}
	return fields, nil
}

// ParseInt parses a base-10 integer. Decimal points and digit grouping are
// rejected.
func (p *FieldParser) ParseInt(value, field string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, p.fail("%s: %q is not an integer", field, value)
	}
	return n, nil
}

// ParseDouble parses a decimal number accepting either ',' or '.' as the
// decimal separator. Hex floats and named values such as NaN are rejected.
func (p *FieldParser) ParseDouble(value, field string) (float64, error) {
	if strings.ContainsFunc(value, notDecimal) {
		return 0, p.fail("%s: %q is not a number", field, value)
	}
	f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, p.fail("%s: %q is not a number", field, value)
	}
	return f, nil
}

func notDecimal(r rune) bool {
	return !strings.ContainsRune("0123456789,.+-eE", r)
}

// ParseString checks that value has between min and max characters. A max of
// Unbounded disables the upper check.
func (p *FieldParser) ParseString(value, field string, min, max int) (string, error) {
	n := len([]rune(value))
	if n < min {
		return "", p.fail("%s: %q is shorter than the minimum length %d", field, value, min)
	}
	if max != Unbounded && n > max {
		return "", p.fail("%s: %q is longer than the maximum length %d", field, value, max)
	}
	return value, nil
}

// ParseAlgorithm matches value case-insensitively against the canonical
// algorithm names.
func (p *FieldParser) ParseAlgorithm(value, field string) (election.Algorithm, error) {
	if a, ok := election.ParseAlgorithm(value); ok {
		return a, nil
	}
	return 0, p.fail("%s: %q is not a known algorithm", field, value)
}

func (p *FieldParser) fail(format string, args ...any) error {
	return malformed(p.path, p.line, format, args...)
}
