package fres

import (
	"fmt"
	"math"

	"bfres-decoder/internal/binfile"
)

// ValueKind tags the payload held by a Value.
type ValueKind uint8

const (
	ValueUnknown ValueKind = iota
	ValueBool
	ValueInt32
	ValueUint32
	ValueFloat
	ValueString
	ValueTexSrt
)

var valueKindNames = [...]string{"unknown", "bool", "int32", "uint32", "float", "string", "texsrt"}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is a decoded render-info, material-param or shader-option value.
// Exactly one of the slices is populated, chosen by Kind. Unknown values
// keep the raw type tag and whatever bytes could be attributed to them.
type Value struct {
	Kind    ValueKind
	Tag     uint8
	Bools   []bool
	Ints    []int32
	Uints   []uint32
	Floats  []float32
	Strings []string
	// Mode is the texture SRT mode word.
	Mode uint32
	Raw  []byte
}

func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return fmt.Sprint(v.Bools)
	case ValueInt32:
		return fmt.Sprint(v.Ints)
	case ValueUint32:
		return fmt.Sprint(v.Uints)
	case ValueFloat:
		return fmt.Sprint(v.Floats)
	case ValueString:
		return fmt.Sprintf("%q", v.Strings)
	case ValueTexSrt:
		return fmt.Sprintf("mode=%d %v", v.Mode, v.Floats)
	}
	return fmt.Sprintf("<unknown 0x%02X % X>", v.Tag, v.Raw)
}

// ParamType is the type tag of a material parameter.
type ParamType uint8

type paramInfo struct {
	name  string
	kind  ValueKind
	count int // 4-byte elements after the mode word for TexSrt
	size  int
}

var paramTypes = map[ParamType]paramInfo{
	0:  {"bool", ValueBool, 1, 4},
	1:  {"bool2", ValueBool, 2, 8},
	2:  {"bool3", ValueBool, 3, 12},
	3:  {"bool4", ValueBool, 4, 16},
	4:  {"int", ValueInt32, 1, 4},
	5:  {"int2", ValueInt32, 2, 8},
	6:  {"int3", ValueInt32, 3, 12},
	7:  {"int4", ValueInt32, 4, 16},
	8:  {"uint", ValueUint32, 1, 4},
	9:  {"uint2", ValueUint32, 2, 8},
	10: {"uint3", ValueUint32, 3, 12},
	11: {"uint4", ValueUint32, 4, 16},
	12: {"float", ValueFloat, 1, 4},
	13: {"float2", ValueFloat, 2, 8},
	14: {"float3", ValueFloat, 3, 12},
	15: {"float4", ValueFloat, 4, 16},
	17: {"float2x2", ValueFloat, 4, 16},
	18: {"float2x3", ValueFloat, 6, 24},
	19: {"float2x4", ValueFloat, 8, 32},
	21: {"float3x2", ValueFloat, 6, 24},
	22: {"float3x3", ValueFloat, 9, 36},
	23: {"float3x4", ValueFloat, 12, 48},
	25: {"float4x2", ValueFloat, 8, 32},
	26: {"float4x3", ValueFloat, 12, 48},
	27: {"float4x4", ValueFloat, 16, 64},
	28: {"srt2d", ValueFloat, 5, 20},
	29: {"srt3d", ValueFloat, 9, 36},
	30: {"texsrt", ValueTexSrt, 5, 24},
	31: {"texsrtex", ValueTexSrt, 5, 32},
}

func (t ParamType) String() string {
	if info, ok := paramTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("0x%02X", uint8(t))
}

// Size returns the encoded byte size, or 0 for unknown tags.
func (t ParamType) Size() int {
	return paramTypes[t].size
}

// readParamValue decodes a material parameter at off. Unknown tags are
// not an error: the value comes back as ValueUnknown carrying rawSize
// bytes. Those bytes must still be inside the buffer.
func readParamValue(r *binfile.Reader, off int64, t ParamType, rawSize int) (Value, error) {
	info, ok := paramTypes[t]
	if !ok {
		v := Value{Kind: ValueUnknown, Tag: uint8(t)}
		if rawSize > 0 {
			raw, err := r.Bytes(off, int64(rawSize))
			if err != nil {
				return v, err
			}
			v.Raw = raw
		}
		return v, nil
	}
	v := Value{Kind: info.kind, Tag: uint8(t)}
	if info.kind == ValueTexSrt {
		mode, err := r.U32(off)
		if err != nil {
			return v, err
		}
		v.Mode = mode
		v.Floats, err = r.F32s(off+4, info.count)
		if err != nil {
			return v, err
		}
		if info.size > 24 {
			v.Raw, err = r.Bytes(off+24, int64(info.size-24))
		}
		return v, err
	}
	for i := range info.count {
		w, err := r.U32(off + int64(i)*4)
		if err != nil {
			return v, err
		}
		v.append(w)
	}
	return v, nil
}

func (v *Value) append(w uint32) {
	switch v.Kind {
	case ValueBool:
		v.Bools = append(v.Bools, w != 0)
	case ValueInt32:
		v.Ints = append(v.Ints, int32(w))
	case ValueUint32:
		v.Uints = append(v.Uints, w)
	case ValueFloat:
		v.Floats = append(v.Floats, math.Float32frombits(w))
	}
}

// Render info type tags.
const (
	RenderInfoInt32  = 0
	RenderInfoFloat  = 1
	RenderInfoString = 2
)

var renderInfoKinds = map[uint8]ValueKind{
	RenderInfoInt32:  ValueInt32,
	RenderInfoFloat:  ValueFloat,
	RenderInfoString: ValueString,
}

// readRenderInfoValues decodes count values of the given render-info type
// starting at off.
func readRenderInfoValues(r *binfile.Reader, off int64, typ uint8, count int) (Value, error) {
	kind, ok := renderInfoKinds[typ]
	if !ok {
		return Value{Kind: ValueUnknown, Tag: typ}, nil
	}
	v := Value{Kind: kind, Tag: typ}
	for j := range count {
		if kind == ValueString {
			s, err := r.StringAt(off + int64(j)*8)
			if err != nil {
				return v, err
			}
			v.Strings = append(v.Strings, s)
			continue
		}
		w, err := r.U32(off + int64(j)*4)
		if err != nil {
			return v, err
		}
		v.append(w)
	}
	return v, nil
}
