// Package testbin assembles little-endian container buffers for tests.
//
// A Builder is an append-only byte slice with helpers to reserve
// structures, patch fields in place, and lay out length-prefixed strings
// and _DIC dictionaries the way the decoders expect them.
package testbin

import (
	"encoding/binary"
	"math"
)

// Builder accumulates a container image.
type Builder struct {
	buf []byte
}

// New returns a builder whose first n bytes are zero (typically the
// fixed file header, patched later).
func New(n int) *Builder {
	return &Builder{buf: make([]byte, n)}
}

// Bytes returns the assembled buffer.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the current size.
func (b *Builder) Len() int { return len(b.buf) }

// Alloc appends n zero bytes aligned to align and returns their offset.
func (b *Builder) Alloc(n, align int) int {
	if align > 1 {
		for len(b.buf)%align != 0 {
			b.buf = append(b.buf, 0)
		}
	}
	off := len(b.buf)
	b.buf = append(b.buf, make([]byte, n)...)
	return off
}

// Append copies data to the end (8-byte aligned) and returns its offset.
func (b *Builder) Append(data []byte) int {
	off := b.Alloc(len(data), 8)
	copy(b.buf[off:], data)
	return off
}

func (b *Builder) PutU8(off int, v uint8)   { b.buf[off] = v }
func (b *Builder) PutU16(off int, v uint16) { binary.LittleEndian.PutUint16(b.buf[off:], v) }
func (b *Builder) PutU32(off int, v uint32) { binary.LittleEndian.PutUint32(b.buf[off:], v) }
func (b *Builder) PutU64(off int, v uint64) { binary.LittleEndian.PutUint64(b.buf[off:], v) }
func (b *Builder) PutI16(off int, v int16)  { b.PutU16(off, uint16(v)) }
func (b *Builder) PutI32(off int, v int32)  { b.PutU32(off, uint32(v)) }
func (b *Builder) PutI64(off int, v int64)  { b.PutU64(off, uint64(v)) }
func (b *Builder) PutF32(off int, v float32) {
	b.PutU32(off, math.Float32bits(v))
}

// PutPtr writes a u64 offset.
func (b *Builder) PutPtr(off, target int) { b.PutU64(off, uint64(target)) }

// PutF32s writes consecutive floats.
func (b *Builder) PutF32s(off int, vs ...float32) {
	for i, v := range vs {
		b.PutF32(off+i*4, v)
	}
}

// PutBytes copies raw bytes at off.
func (b *Builder) PutBytes(off int, data []byte) { copy(b.buf[off:], data) }

// String appends a length-prefixed, NUL-terminated string and returns
// the offset of its length field.
func (b *Builder) String(s string) int {
	off := b.Alloc(2+len(s)+1, 2)
	b.PutU16(off, uint16(len(s)))
	copy(b.buf[off+2:], s)
	return off
}

// PutString appends s and stores its u64 pointer at off.
func (b *Builder) PutString(off int, s string) {
	b.PutPtr(off, b.String(s))
}

// StringArray appends a u64 pointer array to the given strings.
func (b *Builder) StringArray(names []string) int {
	if len(names) == 0 {
		return 0
	}
	arr := b.Alloc(8*len(names), 8)
	for i, n := range names {
		b.PutString(arr+8*i, n)
	}
	return arr
}

// Dict appends a _DIC whose node i (1-based) is names[i-1], with the
// Patricia-trie links a conforming lookup expects.
func (b *Builder) Dict(names []string) int {
	nodes := buildTrie(names)
	off := b.Alloc(8+16*len(nodes), 8)
	copy(b.buf[off:], "_DIC")
	b.PutI32(off+4, int32(len(names)))
	for i, n := range nodes {
		base := off + 8 + 16*i
		b.PutI32(base, n.ref)
		b.PutU16(base+4, uint16(n.left))
		b.PutU16(base+6, uint16(n.right))
		if i > 0 {
			b.PutString(base+8, n.name)
		}
	}
	return off
}

type trieNode struct {
	ref         int32
	left, right int
	name        string
}

func bitAt(name string, ref int32) int {
	if ref < 0 {
		return 0
	}
	i := int(ref >> 3)
	if i >= len(name) {
		return 0
	}
	return int(name[len(name)-1-i]>>(uint(ref)&7)) & 1
}

func firstDiff(a, b string) int32 {
	n := max(len(a), len(b)) * 8
	for i := int32(0); i < int32(n); i++ {
		if bitAt(a, i) != bitAt(b, i) {
			return i
		}
	}
	return int32(n)
}

func buildTrie(names []string) []trieNode {
	nodes := []trieNode{{ref: -1}}
	next := func(name string, i int) int {
		if bitAt(name, nodes[i].ref) == 1 {
			return nodes[i].right
		}
		return nodes[i].left
	}
	for _, name := range names {
		prev, cur := 0, nodes[0].left
		for nodes[prev].ref < nodes[cur].ref {
			prev, cur = cur, next(name, cur)
		}
		ref := firstDiff(name, nodes[cur].name)

		prev, cur = 0, nodes[0].left
		for nodes[prev].ref < nodes[cur].ref && nodes[cur].ref < ref {
			prev, cur = cur, next(name, cur)
		}

		idx := len(nodes)
		n := trieNode{ref: ref, name: name, left: cur, right: idx}
		if bitAt(name, ref) == 0 {
			n.left, n.right = idx, cur
		}
		nodes = append(nodes, n)

		switch {
		case prev == 0:
			nodes[0].left = idx
		case bitAt(name, nodes[prev].ref) == 1:
			nodes[prev].right = idx
		default:
			nodes[prev].left = idx
		}
	}
	return nodes
}
