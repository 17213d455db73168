package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrEndOfInput        = errors.New("end of input")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrUnsafeNarrowing   = errors.New("unsafe narrowing")
)

// Bound names the limit a failed read ran into.
type Bound int

const (
	BoundNone   Bound = iota
	BoundBuffer       // end of the underlying buffer
	BoundSlice        // end of a bounded sub-view
)

func (b Bound) String() string {
	switch b {
	case BoundBuffer:
		return "buffer"
	case BoundSlice:
		return "slice"
	default:
		return "none"
	}
}

// Error is the structured error returned by the cursors and section readers.
type Error struct {
	Kind   error
	Offset int
	Bound  Bound
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	fmt.Fprintf(&b, " at offset %d", e.Offset)
	if e.Bound != BoundNone {
		fmt.Fprintf(&b, " (end of %s)", e.Bound)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// SignatureError carries the expected and observed bytes of a failed
// signature check. It matches ErrSignatureMismatch.
type SignatureError struct {
	Offset int
	Want   []byte
	Got    []byte
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature mismatch at offset %d: want %s, got %s",
		e.Offset, hex.EncodeToString(e.Want), hex.EncodeToString(e.Got))
}

func (e *SignatureError) Is(target error) bool {
	return target == ErrSignatureMismatch
}

// InvalidFormat builds an ErrInvalidFormat error at the given offset.
func InvalidFormat(offset int, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:   ErrInvalidFormat,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
		Cause:  cause,
	}
}

// Promote reports err as ErrInvalidFormat when it is an unsafe narrowing
// failure. Any other error is returned unchanged.
func Promote(err error) error {
	if err == nil || !errors.Is(err, ErrUnsafeNarrowing) {
		return err
	}
	offset := 0
	var ce *Error
	if errors.As(err, &ce) {
		offset = ce.Offset
	}
	return &Error{
		Kind:   ErrInvalidFormat,
		Offset: offset,
		Detail: "value exceeds modeled range",
		Cause:  err,
	}
}
