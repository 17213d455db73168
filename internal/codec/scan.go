package codec

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// ScanResult is the outcome of a forward search. When Found is false the
// search ran into the reader's bound and Offset is that bound.
type ScanResult struct {
	Found   bool
	Offset  int
	Pattern int // index of the matched pattern
}

// Scan searches forward from the current position for the earliest
// occurrence of any of the patterns. It never moves the cursor.
func (r *ByteReader) Scan(patterns ...[]byte) ScanResult {
	window := r.data[r.off:r.end]
	res := ScanResult{Offset: r.end, Pattern: -1}
	for i, p := range patterns {
		if len(p) == 0 {
			continue
		}
		at := bytes.Index(window, p)
		if at < 0 {
			continue
		}
		if !res.Found || r.off+at < res.Offset {
			res = ScanResult{Found: true, Offset: r.off + at, Pattern: i}
		}
	}
	return res
}

// SkipUntil positions the cursor at the start of the next occurrence of
// pattern. A match at the current position is accepted.
func (r *ByteReader) SkipUntil(pattern []byte) error {
	res := r.Scan(pattern)
	if !res.Found {
		return &Error{
			Kind:   ErrEndOfInput,
			Offset: r.off,
			Bound:  r.bound(),
			Detail: fmt.Sprintf("pattern %s not found", hex.EncodeToString(pattern)),
		}
	}
	r.off = res.Offset
	return nil
}

// SkipTo moves the cursor forward to an absolute offset within the bound.
func (r *ByteReader) SkipTo(offset int) error {
	if offset < r.off || offset > r.end {
		return &Error{
			Kind:   ErrEndOfInput,
			Offset: r.off,
			Bound:  r.bound(),
			Detail: fmt.Sprintf("skip to %d outside [%d, %d]", offset, r.off, r.end),
		}
	}
	r.off = offset
	return nil
}
