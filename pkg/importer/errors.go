package importer

import (
	"errors"
	"fmt"
)

// Kind classifies a seeding failure.
type Kind uint8

const (
	MalformedRecord Kind = iota + 1
	ConflictingPartyMapping
	MissingCrossReference
	MissingDirectory
)

func (k Kind) String() string {
	switch k {
	case MalformedRecord:
		return "MalformedRecord"
	case ConflictingPartyMapping:
		return "ConflictingPartyMapping"
	case MissingCrossReference:
		return "MissingCrossReference"
	case MissingDirectory:
		return "MissingDirectory"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrMalformedRecord         = &Error{Kind: MalformedRecord}
	ErrConflictingPartyMapping = &Error{Kind: ConflictingPartyMapping}
	ErrMissingCrossReference   = &Error{Kind: MissingCrossReference}
	ErrMissingDirectory        = &Error{Kind: MissingDirectory}
)

// Error is a typed seeding failure. Path and Line are set when the failure
// can be traced to a source line.
type Error struct {
	Kind Kind
	Path string
	Line string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Line != "" {
		msg += fmt.Sprintf(" (line %q)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func malformed(path, line, format string, args ...any) error {
	return &Error{Kind: MalformedRecord, Path: path, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func missingDir(path string, err error) error {
	return &Error{Kind: MissingDirectory, Path: path, Err: err}
}
