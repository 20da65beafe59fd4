// Package binfile provides bounds-checked little-endian reads over a
// decompressed container buffer.
//
// All offsets are absolute from the start of the buffer. Every read fails
// with ErrTruncatedData instead of zero-filling when it would run past the
// end, since later offsets are computed from earlier values.
package binfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader is a read-only view of a container buffer with a cursor for
// sequential use. Random-access methods never move the cursor, so one
// Reader may be shared by goroutines that only use them.
type Reader struct {
	data []byte
	pos  int64
}

// NewReader wraps an in-memory buffer. The buffer must not be modified
// while the Reader (or anything decoded from it) is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the buffer length.
func (r *Reader) Len() int64 {
	return int64(len(r.data))
}

// Require fails with ErrTruncatedData when the buffer is shorter than
// a container's declared size.
func (r *Reader) Require(size int64) error {
	return r.check(0, size)
}

// Data returns the underlying buffer.
func (r *Reader) Data() []byte {
	return r.data
}

func (r *Reader) check(off, n int64) error {
	if off < 0 || n < 0 || off > int64(len(r.data)) || n > int64(len(r.data))-off {
		return &TruncatedError{Offset: off, Size: n, Len: int64(len(r.data))}
	}
	return nil
}

// Bytes returns n bytes at off. The slice aliases the buffer.
func (r *Reader) Bytes(off, n int64) ([]byte, error) {
	if err := r.check(off, n); err != nil {
		return nil, err
	}
	return r.data[off : off+n : off+n], nil
}

func (r *Reader) U8(off int64) (uint8, error) {
	if err := r.check(off, 1); err != nil {
		return 0, err
	}
	return r.data[off], nil
}

func (r *Reader) U16(off int64) (uint16, error) {
	if err := r.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

func (r *Reader) U32(off int64) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

func (r *Reader) U64(off int64) (uint64, error) {
	if err := r.check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.data[off:]), nil
}

func (r *Reader) I8(off int64) (int8, error) {
	v, err := r.U8(off)
	return int8(v), err
}

func (r *Reader) I16(off int64) (int16, error) {
	v, err := r.U16(off)
	return int16(v), err
}

func (r *Reader) I32(off int64) (int32, error) {
	v, err := r.U32(off)
	return int32(v), err
}

func (r *Reader) I64(off int64) (int64, error) {
	v, err := r.U64(off)
	return int64(v), err
}

func (r *Reader) F32(off int64) (float32, error) {
	v, err := r.U32(off)
	return math.Float32frombits(v), err
}

// F32s reads n consecutive floats.
func (r *Reader) F32s(off int64, n int) ([]float32, error) {
	if err := r.check(off, int64(n)*4); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.data[off+int64(i)*4:]))
	}
	return out, nil
}

// Ptr reads a u64 offset field. Zero means absent and is returned as is;
// a nonzero value outside the buffer is a truncation.
func (r *Reader) Ptr(off int64) (int64, error) {
	v, err := r.U64(off)
	if err != nil {
		return 0, err
	}
	if v > uint64(len(r.data)) {
		return 0, &TruncatedError{Offset: int64(min(v, math.MaxInt64)), Size: 0, Len: int64(len(r.data))}
	}
	return int64(v), nil
}

// String reads the length-prefixed string at off: a u16 byte count
// followed by that many UTF-8 bytes. Offset 0 is the empty string.
func (r *Reader) String(off int64) (string, error) {
	if off == 0 {
		return "", nil
	}
	n, err := r.U16(off)
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(off+2, int64(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StringAt reads a u64 string pointer at off and resolves it.
func (r *Reader) StringAt(off int64) (string, error) {
	p, err := r.Ptr(off)
	if err != nil {
		return "", err
	}
	return r.String(p)
}

// Magic checks the 4-byte signature at off.
func (r *Reader) Magic(off int64, want string) error {
	got, err := r.Bytes(off, int64(len(want)))
	if err != nil {
		return err
	}
	if string(got) != want {
		return &MagicError{Offset: off, Want: want, Got: append([]byte(nil), got...)}
	}
	return nil
}

// Seek moves the cursor. It implements io.Seeker semantics.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = int64(len(r.data)) + offset
	default:
		return 0, fmt.Errorf("binfile: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("binfile: negative position %d", abs)
	}
	r.pos = abs
	return abs, nil
}

// Tell returns the cursor position.
func (r *Reader) Tell() int64 {
	return r.pos
}
