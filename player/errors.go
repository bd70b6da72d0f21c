package player

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEndOfQueue      = errors.New("already at the last song")
	ErrStartOfQueue    = errors.New("already at the first song")
	ErrClosed          = errors.New("player closed")
)

// RangeError reports a cursor that doesn't point at a loaded song.
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("index %d out of range: no songs loaded", e.Index)
	}
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *RangeError) Unwrap() error {
	return ErrIndexOutOfRange
}
