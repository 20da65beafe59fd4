package binfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind is the wire type of one layout field.
type Kind uint8

const (
	KindPad Kind = iota
	KindMagic
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindBytes
	KindStr   // u64 pointer to a length-prefixed string
	KindStr32 // u32 pointer to a length-prefixed string
)

func (k Kind) size() int64 {
	switch k {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindF32, KindStr32:
		return 4
	case KindU64, KindI64, KindStr:
		return 8
	}
	return 1
}

// Field describes one entry of a fixed binary layout. Count is the
// element count for numeric kinds and the byte length for pad, bytes
// and magic fields.
type Field struct {
	Name      string
	Kind      Kind
	Count     int
	Want      string
	Transform func(any) any
}

// Size returns the field's encoded width.
func (f Field) Size() int64 {
	n := int64(f.Count)
	if n <= 0 {
		n = 1
	}
	return n * f.Kind.size()
}

// Map returns a copy of f whose decoded value is passed through fn.
func (f Field) Map(fn func(any) any) Field {
	f.Transform = fn
	return f
}

func Magic(want string) Field { return Field{Name: "magic", Kind: KindMagic, Count: len(want), Want: want} }
func Pad(n int) Field { return Field{Kind: KindPad, Count: n} }
func Raw(name string, n int) Field { return Field{Name: name, Kind: KindBytes, Count: n} }
func U8(name string) Field { return Field{Name: name, Kind: KindU8} }
func U8s(name string, n int) Field { return Field{Name: name, Kind: KindU8, Count: n} }
func U16(name string) Field { return Field{Name: name, Kind: KindU16} }
func U32(name string) Field { return Field{Name: name, Kind: KindU32} }
func U32s(name string, n int) Field { return Field{Name: name, Kind: KindU32, Count: n} }
func U64(name string) Field { return Field{Name: name, Kind: KindU64} }
func U64s(name string, n int) Field { return Field{Name: name, Kind: KindU64, Count: n} }
func I16(name string) Field { return Field{Name: name, Kind: KindI16} }
func I32(name string) Field { return Field{Name: name, Kind: KindI32} }
func I64(name string) Field { return Field{Name: name, Kind: KindI64} }
func F32(name string) Field { return Field{Name: name, Kind: KindF32} }
func F32s(name string, n int) Field { return Field{Name: name, Kind: KindF32, Count: n} }
func Str(name string) Field { return Field{Name: name, Kind: KindStr} }
func Str32(name string) Field { return Field{Name: name, Kind: KindStr32} }

// Ptr is a u64 absolute offset; zero means absent.
func Ptr(name string) Field { return Field{Name: name, Kind: KindU64} }

// Layout is an ordered list of fields packed without implicit alignment.
type Layout []Field

// Size returns the packed size of the layout.
func (l Layout) Size() int64 {
	var n int64
	for _, f := range l {
		n += f.Size()
	}
	return n
}

// Offset returns the position of the named field within the layout,
// or -1 when there is no such field.
func (l Layout) Offset(name string) int64 {
	var n int64
	for _, f := range l {
		if f.Name == name {
			return n
		}
		n += f.Size()
	}
	return -1
}

// ReadStruct decodes l at off. Transforms run immediately after each
// field's raw decode.
func (r *Reader) ReadStruct(off int64, l Layout) (Record, error) {
	if err := r.check(off, l.Size()); err != nil {
		return nil, err
	}
	rec := make(Record, len(l))
	pos := off
	for _, f := range l {
		v, err := r.readField(pos, f)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.Name != "" && f.Kind != KindPad {
			if f.Transform != nil {
				v = f.Transform(v)
			}
			rec[f.Name] = v
		}
		pos += f.Size()
	}
	return rec, nil
}

// ReadNext decodes l at the cursor and advances past it.
func (r *Reader) ReadNext(l Layout) (Record, error) {
	rec, err := r.ReadStruct(r.pos, l)
	if err != nil {
		return nil, err
	}
	r.pos += l.Size()
	return rec, nil
}

func (r *Reader) readField(off int64, f Field) (any, error) {
	switch f.Kind {
	case KindPad:
		return nil, nil
	case KindMagic:
		return f.Want, r.Magic(off, f.Want)
	case KindBytes:
		return r.Bytes(off, int64(f.Count))
	case KindStr:
		return r.StringAt(off)
	case KindStr32:
		p, err := r.U32(off)
		if err != nil {
			return nil, err
		}
		return r.String(int64(p))
	}
	if f.Count > 1 {
		return r.readArray(off, f)
	}
	return r.readScalar(off, f.Kind)
}

func (r *Reader) readScalar(off int64, k Kind) (any, error) {
	b := r.data[off:]
	switch k {
	case KindU8:
		return b[0], nil
	case KindU16:
		return binary.LittleEndian.Uint16(b), nil
	case KindU32:
		return binary.LittleEndian.Uint32(b), nil
	case KindU64:
		return binary.LittleEndian.Uint64(b), nil
	case KindI8:
		return int8(b[0]), nil
	case KindI16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case KindI32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case KindI64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	case KindF32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	}
	return nil, fmt.Errorf("binfile: unknown kind %d", k)
}

func (r *Reader) readArray(off int64, f Field) (any, error) {
	step := f.Kind.size()
	switch f.Kind {
	case KindF32:
		return r.F32s(off, f.Count)
	case KindI8, KindI16, KindI32, KindI64:
		out := make([]int64, f.Count)
		for i := range out {
			v, err := r.readScalar(off+int64(i)*step, f.Kind)
			if err != nil {
				return nil, err
			}
			out[i] = toInt(v)
		}
		return out, nil
	default:
		out := make([]uint64, f.Count)
		for i := range out {
			v, err := r.readScalar(off+int64(i)*step, f.Kind)
			if err != nil {
				return nil, err
			}
			out[i] = toUint(v)
		}
		return out, nil
	}
}

// Record holds the decoded fields of one layout, keyed by field name.
type Record map[string]any

// Uint returns an unsigned integer field; missing fields read as 0.
func (rec Record) Uint(name string) uint64 {
	return toUint(rec[name])
}

// Int returns a signed integer field; missing fields read as 0.
func (rec Record) Int(name string) int64 {
	return toInt(rec[name])
}

// Offset returns a pointer field as an int64 offset.
func (rec Record) Offset(name string) int64 {
	return int64(toUint(rec[name]))
}

func (rec Record) Float(name string) float32 {
	v, _ := rec[name].(float32)
	return v
}

func (rec Record) Floats(name string) []float32 {
	v, _ := rec[name].([]float32)
	return v
}

func (rec Record) Uints(name string) []uint64 {
	v, _ := rec[name].([]uint64)
	return v
}

func (rec Record) Str(name string) string {
	v, _ := rec[name].(string)
	return v
}

func toUint(v any) uint64 {
	switch x := v.(type) {
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case int8:
		return uint64(x)
	case int16:
		return uint64(x)
	case int32:
		return uint64(x)
	case int64:
		return uint64(x)
	}
	return 0
}

func toInt(v any) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return 0
}
