package testbin

// Texture describes one BRTI entry of a BNTX container. Format is the
// packed (type<<8 | data type) word.
type Texture struct {
	Name     string
	Format   uint16
	Width    int
	Height   int
	TileMode uint16
	Layout   uint32
	Channels [4]uint8
	Data     []byte
}

// BNTX assembles a BNTX container with one mip level per texture.
func BNTX(name string, texs []Texture) []byte {
	b := New(0x44)
	b.PutBytes(0, []byte("BNTX\x00\x00\x00\x00"))
	b.PutU16(0x0A, 4)
	b.PutU16(0x0C, 0xFEFF)
	b.PutU32(0x10, uint32(b.String(name)+2))

	b.PutBytes(0x20, []byte("NX  "))
	b.PutU32(0x24, uint32(len(texs)))
	table := b.Alloc(8*len(texs), 8)
	b.PutPtr(0x28, table)
	names := make([]string, len(texs))
	for i, t := range texs {
		names[i] = t.Name
	}
	b.PutPtr(0x38, b.Dict(names))

	for i, t := range texs {
		data := b.Append(t.Data)
		if i == 0 {
			b.PutPtr(0x30, data)
		}
		ptrs := b.Alloc(8, 8)
		b.PutPtr(ptrs, data)

		brti := b.Alloc(0x78, 8)
		b.PutBytes(brti, []byte("BRTI"))
		b.PutU16(brti+0x12, t.TileMode)
		b.PutU16(brti+0x16, 1)
		b.PutU16(brti+0x1C, t.Format)
		b.PutI32(brti+0x24, int32(t.Width))
		b.PutI32(brti+0x28, int32(t.Height))
		b.PutI32(brti+0x2C, 1)
		b.PutU32(brti+0x30, 1)
		b.PutU32(brti+0x34, t.Layout)
		b.PutU32(brti+0x50, uint32(len(t.Data)))
		for c, ch := range t.Channels {
			b.PutU8(brti+0x58+c, ch)
		}
		b.PutU32(brti+0x5C, 1)
		b.PutString(brti+0x60, t.Name)
		b.PutPtr(brti+0x70, ptrs)
		b.PutPtr(table+8*i, brti)
	}
	b.PutU32(0x1C, uint32(b.Len()))
	return b.Bytes()
}

// Embed is one file embedded in a FRES container.
type Embed struct {
	Name string
	Data []byte
}

// FRES assembles a version 0.5 FRES container with no models, only
// embedded files.
func FRES(name string, embeds []Embed) []byte {
	b := New(0xD0)
	b.PutBytes(0, []byte("FRES    "))
	b.PutU16(0x0A, 5)
	b.PutU16(0x0C, 0xFEFF)
	b.PutString(0x20, name)

	if len(embeds) > 0 {
		arr := b.Alloc(0x10*len(embeds), 8)
		names := make([]string, len(embeds))
		for i, e := range embeds {
			names[i] = e.Name
			data := b.Append(e.Data)
			b.PutPtr(arr+0x10*i, data)
			b.PutU32(arr+0x10*i+8, uint32(len(e.Data)))
		}
		b.PutPtr(0x98, arr)
		b.PutPtr(0xA0, b.Dict(names))
		b.PutU16(0xC8, uint16(len(embeds)))
	}
	b.PutU32(0x1C, uint32(b.Len()))
	return b.Bytes()
}
