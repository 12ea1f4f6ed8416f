// Package diag defines the error kinds and warnings reported while compiling
// a def file.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of a fatal compile error. Each kind maps to a
// distinct process exit status.
type Kind int

const (
	KindSyntax Kind = iota + 1
	KindNumber
	KindRange
	KindDirective
	KindUnterminatedRange
	KindDuplicateName
	KindInvalidCount
	KindDuplicateAssignment
	KindSexConflict
	KindNoPrintableOutput
	KindEmptyFile
	KindResource
)

// Sentinel errors, one per Kind. A *Error matches its kind's sentinel with
// errors.Is.
var (
	// ErrSyntax reports wrong field counts or unexpected tokens.
	ErrSyntax = errors.New("syntax error")
	// ErrNumber reports a token that should be an integer but is not.
	ErrNumber = errors.New("malformed number")
	// ErrRange reports a generation or branch number out of bounds, a
	// non-increasing generation order, or a non-increasing branch range.
	ErrRange = errors.New("value out of range")
	// ErrDirective reports a malformed parent, no-print or sex directive.
	ErrDirective = errors.New("malformed directive")
	// ErrUnterminatedRange reports a branch range with no end.
	ErrUnterminatedRange = errors.New("unterminated branch range")
	// ErrDuplicateName reports a pedigree name that was already defined.
	ErrDuplicateName = errors.New("duplicate pedigree name")
	// ErrInvalidCount reports a non-positive replicate or generation count.
	ErrInvalidCount = errors.New("invalid count")
	// ErrDuplicateAssignment reports parents or a sex assigned twice.
	ErrDuplicateAssignment = errors.New("assigned multiple times")
	// ErrSexConflict reports contradictory sex constraints.
	ErrSexConflict = errors.New("sex conflict")
	// ErrNoPrintableOutput reports a pedigree whose last generation prints
	// no samples.
	ErrNoPrintableOutput = errors.New("no printable output")
	// ErrEmptyFile reports a def file without pedigree definitions.
	ErrEmptyFile = errors.New("no pedigree definitions")
	// ErrResource reports I/O or allocation failures.
	ErrResource = errors.New("resource error")
)

var kindInfo = map[Kind]struct {
	name     string
	sentinel error
	exit     int
	category Category
}{
	KindSyntax:              {"syntax", ErrSyntax, 2, CategorySyntax},
	KindNumber:              {"number", ErrNumber, 3, CategorySyntax},
	KindRange:               {"range", ErrRange, 4, CategoryRange},
	KindDirective:           {"directive", ErrDirective, 5, CategorySyntax},
	KindUnterminatedRange:   {"unterminated-range", ErrUnterminatedRange, 6, CategorySyntax},
	KindDuplicateName:       {"duplicate-name", ErrDuplicateName, 7, CategoryDuplicateAssignment},
	KindInvalidCount:        {"invalid-count", ErrInvalidCount, 8, CategoryRange},
	KindDuplicateAssignment: {"duplicate-assignment", ErrDuplicateAssignment, 9, CategoryDuplicateAssignment},
	KindSexConflict:         {"sex-conflict", ErrSexConflict, 10, CategorySexConflict},
	KindNoPrintableOutput:   {"no-printable-output", ErrNoPrintableOutput, 11, CategoryStructural},
	KindEmptyFile:           {"empty-file", ErrEmptyFile, 12, CategoryStructural},
	KindResource:            {"resource", ErrResource, 13, CategoryResource},
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode returns the process exit status for k.
func (k Kind) ExitCode() int {
	if info, ok := kindInfo[k]; ok {
		return info.exit
	}
	return 1
}

// Sentinel returns the sentinel error of k, or nil for an unknown kind.
func (k Kind) Sentinel() error {
	return kindInfo[k].sentinel
}

// Category groups kinds into the broad error taxonomy.
type Category string

const (
	CategorySyntax              Category = "SyntaxError"
	CategoryRange               Category = "RangeError"
	CategoryDuplicateAssignment Category = "DuplicateAssignmentError"
	CategorySexConflict         Category = "SexConflictError"
	CategoryResource            Category = "ResourceError"
	CategoryStructural          Category = "StructuralError"
)

// Category returns the taxonomy group of k.
func (k Kind) Category() Category {
	return kindInfo[k].category
}

// Error is a fatal compile error.
type Error struct {
	Kind  Kind
	Line  int    // 1-based; 0 when not tied to a line
	Token string // offending token, if any
	Msg   string
	Err   error // underlying cause, if any
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, line int, token, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Token: token, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around err, using err's text as the
// message.
func Wrap(kind Kind, line int, token string, err error) *Error {
	return &Error{Kind: kind, Line: line, Token: token, Msg: err.Error(), Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d in def: ", e.Line)
	}
	b.WriteString(e.Msg)
	if e.Token != "" {
		fmt.Fprintf(&b, " (token %q)", e.Token)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.Sentinel()
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Line int
	Msg  string
}

// Warnf builds a Warning.
func Warnf(line int, format string, args ...any) Warning {
	return Warning{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d in def: %s", w.Line, w.Msg)
	}
	return w.Msg
}
