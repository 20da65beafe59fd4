package fres

import (
	"bfres-decoder/internal/testbin"
)

type fixtureOpts struct {
	ver Version
	// attrSampler overrides the sampler named by the texture attribute.
	attrSampler string
}

// fixture is a one-model FRES image with offsets of the records tests
// like to corrupt.
type fixture struct {
	data     []byte
	shape    int
	material int
}

func buildFRES(o fixtureOpts) fixture {
	b := testbin.New(0xD0)
	b.PutBytes(0, []byte("FRES    "))
	b.PutU16(0x08, 0)
	if o.ver == V10 {
		b.PutU16(0x0A, 10)
	} else {
		b.PutU16(0x0A, 5)
	}
	b.PutU16(0x0C, 0xFEFF)
	b.PutString(0x20, "test")

	// Buffer section: three float3 positions, then u16 indices at +40.
	data := b.Alloc(64, 8)
	b.PutF32s(data, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	for i := range 3 {
		b.PutU16(data+40+2*i, uint16(i))
	}
	bs := b.Alloc(0x20, 8)
	b.PutU32(bs+4, 64)
	b.PutPtr(bs+8, data)
	b.PutPtr(0x90, bs)

	skel := putSkeleton(b, o.ver)
	fvtx := putVertexBuffer(b)
	var mat int
	if o.ver == V10 {
		mat = putMaterialV10(b, o)
	} else {
		mat = putMaterialV0(b, o)
	}
	fshp := putShape(b)

	fmdl := b.Alloc(0x78, 8)
	b.PutBytes(fmdl, []byte("FMDL"))
	b.PutString(fmdl+0x10, "model")
	b.PutPtr(fmdl+0x20, skel)
	b.PutPtr(fmdl+0x28, fvtx)
	b.PutPtr(fmdl+0x30, fshp)
	b.PutPtr(fmdl+0x40, mat)
	b.PutU16(fmdl+0x68, 1)
	b.PutU16(fmdl+0x6A, 1)
	b.PutU16(fmdl+0x6C, 1)
	b.PutU32(fmdl+0x70, 3)
	b.PutPtr(0x28, fmdl)
	b.PutPtr(0x30, b.Dict([]string{"model"}))
	b.PutU16(0xBC, 1)

	payload := b.Append([]byte("BNTX\x00\x00\x00\x00"))
	emb := b.Alloc(0x10, 8)
	b.PutPtr(emb, payload)
	b.PutU32(emb+8, 8)
	b.PutPtr(0x98, emb)
	b.PutPtr(0xA0, b.Dict([]string{"tex.bntx"}))
	b.PutU16(0xC8, 1)

	b.PutU32(0x1C, uint32(b.Len()))
	return fixture{data: b.Bytes(), shape: fshp, material: mat}
}

func putSkeleton(b *testbin.Builder, ver Version) int {
	size, shift, visible := 0x50, 0, uint32(1)
	if ver == V10 {
		size, shift, visible = 0x58, 8, 1<<12
	}
	bones := b.Alloc(2*size, 8)
	put := func(i int, name string, parent int16, pos ...float32) {
		off := bones + i*size
		b.PutU32(off, uint32(b.String(name)))
		b.PutU16(off+shift+0x18, uint16(i))
		b.PutI16(off+shift+0x1A, parent)
		b.PutI16(off+shift+0x1C, -1)
		b.PutI16(off+shift+0x1E, -1)
		b.PutI16(off+shift+0x20, -1)
		b.PutU32(off+shift+0x24, visible)
		b.PutF32s(off+shift+0x28, 1, 1, 1)
		b.PutF32s(off+shift+0x34, 0, 0, 0, 1)
		b.PutF32s(off+shift+0x44, pos...)
	}
	put(0, "root", -1, 0, 0, 0)
	put(1, "arm", 0, 1, 2, 3)

	m2b := b.Alloc(2, 8)
	b.PutI16(m2b, 1)

	fskl := b.Alloc(0x48, 8)
	b.PutBytes(fskl, []byte("FSKL"))
	b.PutPtr(fskl+0x10, b.Dict([]string{"root", "arm"}))
	b.PutPtr(fskl+0x18, bones)
	b.PutPtr(fskl+0x20, m2b)
	b.PutU16(fskl+0x3C, 2)
	b.PutU16(fskl+0x40, 1)
	return fskl
}

func putVertexBuffer(b *testbin.Builder) int {
	attr := b.Alloc(0x10, 8)
	b.PutString(attr, "_p0")
	b.PutU32(attr+8, 0x1805)
	info := b.Alloc(0x10, 8)
	b.PutU32(info, 36)
	stride := b.Alloc(0x10, 8)
	b.PutU32(stride, 12)

	fvtx := b.Alloc(0x60, 8)
	b.PutBytes(fvtx, []byte("FVTX"))
	b.PutPtr(fvtx+0x10, attr)
	b.PutPtr(fvtx+0x38, info)
	b.PutPtr(fvtx+0x40, stride)
	b.PutU8(fvtx+0x54, 1)
	b.PutU8(fvtx+0x55, 1)
	b.PutU32(fvtx+0x58, 3)
	return fvtx
}

func putShape(b *testbin.Builder) int {
	sm := b.Alloc(8, 8)
	b.PutU32(sm+4, 3)
	lods := b.Alloc(2*0x38, 8)
	for i, count := range []uint32{3, 2} {
		lod := lods + i*0x38
		b.PutPtr(lod, sm)
		b.PutU32(lod+0x20, 40)
		b.PutU32(lod+0x24, uint32(PrimitiveTriangles))
		b.PutU32(lod+0x28, uint32(IndexU16))
		b.PutU32(lod+0x2C, count)
		b.PutU16(lod+0x32, 1)
	}

	fshp := b.Alloc(0x70, 8)
	b.PutBytes(fshp, []byte("FSHP"))
	b.PutString(fshp+0x10, "tri")
	b.PutPtr(fshp+0x20, lods)
	b.PutU16(fshp+0x60, 1) // bound to "arm"
	b.PutU8(fshp+0x67, 2)
	return fshp
}

func (o fixtureOpts) sampler() string {
	if o.attrSampler != "" {
		return o.attrSampler
	}
	return "_a0"
}

// putParamData lays out float3 {1, 0.5, 0.25} at 0, a texsrt at 12 and an
// opaque word at 36.
func putParamData(b *testbin.Builder) int {
	d := b.Alloc(40, 8)
	b.PutF32s(d, 1, 0.5, 0.25)
	b.PutF32s(d+16, 1, 1, 0, 0, 0)
	b.PutU32(d+36, 0xDEADBEEF)
	return d
}

func putSamplers(b *testbin.Builder, mat, texRef, info, names, smpSlots, texSlots int) {
	b.PutPtr(mat+texRef, b.StringArray([]string{"tex_alb"}))
	si := b.Alloc(0x20, 8)
	b.PutU8(si, 1)
	b.PutF32(si+0x0C, 13)
	b.PutPtr(mat+info, si)
	b.PutPtr(mat+names, b.Dict([]string{"_a0"}))
	slots := b.Alloc(8, 8)
	b.PutI64(slots, 3)
	b.PutPtr(mat+smpSlots, slots)
	b.PutPtr(mat+texSlots, slots)
}

func putMaterialV0(b *testbin.Builder, o fixtureOpts) int {
	mat := b.Alloc(0xB8, 8)
	b.PutBytes(mat, []byte("FMAT"))
	b.PutString(mat+0x10, "mat")

	sa := b.Alloc(0x48, 8)
	b.PutString(sa, "arc")
	b.PutString(sa+8, "mdl")
	b.PutPtr(sa+0x10, b.StringArray([]string{"_p0"}))
	b.PutPtr(sa+0x20, b.StringArray([]string{o.sampler()}))
	b.PutPtr(sa+0x28, b.Dict([]string{"albedo"}))
	b.PutPtr(sa+0x30, b.StringArray([]string{"1"}))
	b.PutPtr(sa+0x38, b.Dict([]string{"enable_fog"}))
	b.PutU8(sa+0x44, 1)
	b.PutU8(sa+0x45, 1)
	b.PutU16(sa+0x46, 1)
	b.PutPtr(mat+0x28, sa)

	ri := b.Alloc(3*0x18, 8)
	b.PutString(ri, "render_mode")
	b.PutPtr(ri+0x08, b.StringArray([]string{"opaque"}))
	b.PutU16(ri+0x10, 1)
	b.PutU16(ri+0x12, RenderInfoString)
	f := b.Alloc(4, 8)
	b.PutF32(f, 0.5)
	b.PutString(ri+0x18, "alpha_ref")
	b.PutPtr(ri+0x20, f)
	b.PutU16(ri+0x28, 1)
	b.PutU16(ri+0x2A, RenderInfoFloat)
	b.PutString(ri+0x30, "weird")
	b.PutU16(ri+0x42, 7)
	b.PutPtr(mat+0x18, ri)
	b.PutU16(mat+0xA6, 3)

	pa := b.Alloc(3*0x20, 8)
	param := func(i int, name string, typ, size uint8, offset uint16) {
		off := pa + i*0x20
		b.PutString(off+0x08, name)
		b.PutU8(off+0x10, typ)
		b.PutU8(off+0x11, size)
		b.PutU16(off+0x12, offset)
		b.PutI32(off+0x14, -1)
		b.PutU16(off+0x18, uint16(i))
		b.PutU16(off+0x1A, uint16(i))
	}
	param(0, "albedo_color", 14, 12, 0)
	param(1, "tex_srt", 30, 24, 12)
	param(2, "odd", 16, 4, 36)
	b.PutPtr(mat+0x58, pa)
	b.PutPtr(mat+0x68, putParamData(b))
	b.PutU16(mat+0xAA, 3)

	putSamplers(b, mat, 0x38, 0x48, 0x50, 0x90, 0x98)
	b.PutU8(mat+0xA8, 1)
	b.PutU8(mat+0xA9, 1)
	return mat
}

func putMaterialV10(b *testbin.Builder, o fixtureOpts) int {
	mat := b.Alloc(0xB0, 8)
	b.PutBytes(mat, []byte("FMAT"))
	b.PutString(mat+0x08, "mat")

	sa := b.Alloc(0x50, 8)
	refl := b.Alloc(0x50, 8)
	b.PutPtr(sa, refl)
	b.PutPtr(sa+0x08, b.StringArray([]string{"_p0"}))
	b.PutPtr(sa+0x18, b.StringArray([]string{o.sampler()}))
	bools := b.Alloc(4, 8)
	b.PutU32(bools, 1)
	b.PutPtr(sa+0x28, bools)
	b.PutPtr(sa+0x30, b.StringArray([]string{"1"}))
	b.PutU8(sa+0x44, 1)
	b.PutU8(sa+0x45, 1)
	b.PutU16(sa+0x46, 1)
	b.PutU16(sa+0x48, 2)
	b.PutPtr(mat+0x10, sa)

	b.PutString(refl, "arc")
	b.PutString(refl+8, "mdl")
	ri := b.Alloc(3*0x10, 8)
	b.PutString(ri, "render_mode")
	b.PutU8(ri+0x08, RenderInfoString)
	b.PutString(ri+0x10, "alpha_ref")
	b.PutU8(ri+0x18, RenderInfoFloat)
	b.PutString(ri+0x20, "weird")
	b.PutU8(ri+0x28, 7)
	b.PutPtr(refl+0x10, ri)
	b.PutU16(refl+0x48, 3)

	vals := b.Alloc(16, 8)
	b.PutPtr(vals, b.String("opaque"))
	b.PutF32(vals+8, 0.5)
	counts := b.Alloc(6, 8)
	b.PutU16(counts, 1)
	b.PutU16(counts+2, 1)
	offsets := b.Alloc(6, 8)
	b.PutU16(offsets+2, 8)
	b.PutPtr(mat+0x40, vals)
	b.PutPtr(mat+0x48, counts)
	b.PutPtr(mat+0x50, offsets)

	pa := b.Alloc(3*0x18, 8)
	param := func(i int, name string, typ uint8, offset uint16) {
		off := pa + i*0x18
		b.PutString(off+0x08, name)
		b.PutU16(off+0x10, offset)
		b.PutU8(off+0x12, typ)
	}
	param(0, "albedo_color", 14, 0)
	param(1, "tex_srt", 30, 12)
	param(2, "odd", 16, 36)
	b.PutPtr(refl+0x20, pa)
	b.PutU16(refl+0x4A, 3)
	b.PutPtr(mat+0x58, putParamData(b))

	b.PutPtr(refl+0x38, b.Dict([]string{"albedo"}))
	b.PutPtr(refl+0x40, b.Dict([]string{"use_fog", "enable_fog"}))

	putSamplers(b, mat, 0x20, 0x30, 0x38, 0x90, 0x98)
	b.PutU8(mat+0xA2, 1)
	b.PutU8(mat+0xA3, 1)
	return mat
}
