package binfile

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedData reports a read past the end of the buffer.
	ErrTruncatedData = errors.New("truncated data")
	// ErrBadMagic reports a block whose signature does not match.
	ErrBadMagic = errors.New("bad magic")
)

// TruncatedError carries the failing read's position.
type TruncatedError struct {
	Offset int64
	Size   int64
	Len    int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated data: read of %d bytes at 0x%X exceeds buffer length 0x%X",
		e.Size, e.Offset, e.Len)
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncatedData
}

// MagicError carries the expected and actual block signature.
type MagicError struct {
	Offset int64
	Want   string
	Got    []byte
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("bad magic at 0x%X: expected %q, got %q", e.Offset, e.Want, e.Got)
}

func (e *MagicError) Is(target error) bool {
	return target == ErrBadMagic
}
