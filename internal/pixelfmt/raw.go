package pixelfmt

import "encoding/binary"

// rawLoop checks the payload size and calls fn for each texel with its
// source bytes and output slot.
func rawLoop(name string, data []byte, width, height, bpp int, fn func(src, dst []byte)) ([]byte, error) {
	n := width * height
	if err := checkSize(name, data, n*bpp); err != nil {
		return nil, err
	}
	out := make([]byte, n*4)
	for i := range n {
		fn(data[i*bpp:i*bpp+bpp], out[i*4:i*4+4])
	}
	return out, nil
}

func decodeR8(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("R8", data, w, h, 1, func(s, d []byte) {
		d[0], d[3] = s[0], 0xFF
	})
}

func decodeR5G6B5(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("R5G6B5", data, w, h, 2, func(s, d []byte) {
		v := binary.LittleEndian.Uint16(s)
		r := uint8(v&0x1F) << 3
		g := uint8(v>>5&0x3F) << 2
		b := uint8(v>>11&0x1F) << 3
		d[0], d[1], d[2], d[3] = r|r>>5, g|g>>6, b|b>>5, 0xFF
	})
}

func decodeR8G8(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("R8G8", data, w, h, 2, func(s, d []byte) {
		d[0], d[1], d[2], d[3] = s[0], s[1], 0xFF, 0xFF
	})
}

func decodeR16(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("R16", data, w, h, 2, func(s, d []byte) {
		d[0], d[3] = s[1], 0xFF
	})
}

func decodeR8G8B8A8(data []byte, w, h int, _ DataType) ([]byte, error) {
	n := w * h * 4
	if err := checkSize("R8G8B8A8", data, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, data)
	return out, nil
}

func decodeB8G8R8A8(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("B8G8R8A8", data, w, h, 4, func(s, d []byte) {
		d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
	})
}

// R11G11B10 is unpacked as normalized integers, not as packed floats.
func decodeR11G11B10(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("R11G11B10", data, w, h, 4, func(s, d []byte) {
		v := binary.LittleEndian.Uint32(s)
		d[0] = uint8((v & 0x7FF) * 255 / 0x7FF)
		d[1] = uint8((v >> 11 & 0x7FF) * 255 / 0x7FF)
		d[2] = uint8((v >> 22 & 0x3FF) * 255 / 0x3FF)
		d[3] = 0xFF
	})
}

func decodeR32(data []byte, w, h int, _ DataType) ([]byte, error) {
	return rawLoop("R32", data, w, h, 4, func(s, d []byte) {
		d[0], d[3] = s[3], 0xFF
	})
}
