package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DataDog/zstd"

	"bfres-decoder/internal/bntx"
	"bfres-decoder/internal/config"
	"bfres-decoder/internal/fres"
	"bfres-decoder/internal/logging"
	"bfres-decoder/internal/pixelfmt"
	"bfres-decoder/internal/swizzle"
	"bfres-decoder/internal/testbin"
	"bfres-decoder/internal/texture"
)

func rgbaTexture(name string) testbin.Texture {
	data := make([]byte, 64)
	copy(data, []byte{1, 2, 3, 255, 5, 6, 7, 255})
	copy(data[32:], []byte{9, 10, 11, 255, 13, 14, 15, 255})
	return testbin.Texture{
		Name:     name,
		Format:   uint16(pixelfmt.R8G8B8A8)<<8 | uint16(pixelfmt.UNorm),
		Width:    2,
		Height:   2,
		TileMode: swizzle.TilePitch,
		Channels: [4]uint8{2, 3, 4, 5},
		Data:     data,
	}
}

// yaz0Literals wraps data in a Yaz0 stream made only of literal runs.
func yaz0Literals(data []byte) []byte {
	out := []byte{'Y', 'a', 'z', '0', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	n := len(data)
	out[4], out[5], out[6], out[7] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
	for i := 0; i < n; i += 8 {
		out = append(out, 0xFF)
		out = append(out, data[i:min(i+8, n)]...)
	}
	return out
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func testConfig(out string) config.Config {
	cfg := config.Default()
	cfg.OutputDir = out
	cfg.Workers = 2
	return cfg
}

func TestImportCompressedBNTX(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	astc := testbin.Texture{Name: "astc", Format: 0x2D01, Width: 4, Height: 4, Data: make([]byte, 16)}
	raw := testbin.BNTX("textures", []testbin.Texture{rgbaTexture("rgba"), astc})
	input := filepath.Join(dir, "tex.sbntx")
	writeFile(t, input, yaz0Literals(raw))

	cfg := testConfig(out)
	cfg.DumpTextures = true
	cfg.DumpDebug = true
	cfg.SaveDecompressed = true
	res, err := New(cfg).Import(input)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.BNTX) != 1 || len(res.Textures) != 2 {
		t.Fatalf("%d containers, %d textures", len(res.BNTX), len(res.Textures))
	}
	if !res.Textures[0].Success || res.Textures[1].Success {
		t.Errorf("results = %+v", res.Textures)
	}
	saved, err := os.ReadFile(filepath.Join(dir, "tex.bntx"))
	if err != nil || len(saved) != len(raw) {
		t.Errorf("decompressed copy: %d bytes, %v", len(saved), err)
	}
	exists(t, filepath.Join(out, "tex", "textures", "rgba.png"))
	exists(t, filepath.Join(out, "tex", "textures", "preview", "rgba.png"))
	exists(t, filepath.Join(out, "tex", "manifest.json"))
	exists(t, filepath.Join(out, "fres-textures-bntx-dump.txt"))

	img, err := texture.Load(filepath.Join(out, "tex", "textures", "rgba.png"))
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Pix[:4]; got[0] != 1 || got[1] != 2 || got[2] != 3 || got[3] != 255 {
		t.Errorf("exported texel = %v", got)
	}
}

func TestImportFRESEmbeds(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	packed, err := zstd.Compress(nil, testbin.BNTX("embedded", []testbin.Texture{rgbaTexture("rgba"), rgbaTexture("eye")}))
	if err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "model.bfres")
	writeFile(t, input, testbin.FRES("model", []testbin.Embed{
		{Name: "textures.bntx", Data: packed},
		{Name: "readme.txt", Data: []byte("hello")},
		{Name: "blob.bin", Data: []byte("JUNKJUNK")},
	}))
	writeFile(t, filepath.Join(dir, "model.Tex.bfres"), testbin.BNTX("linked", []testbin.Texture{rgbaTexture("rgba")}))

	cfg := testConfig(out)
	cfg.DumpDebug = true
	res, err := New(cfg).Import(input)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.FRES) != 1 || len(res.BNTX) != 2 || len(res.Texts) != 1 {
		t.Fatalf("%d FRES, %d BNTX, %d texts", len(res.FRES), len(res.BNTX), len(res.Texts))
	}
	if res.BNTX[0].Name != "linked" || res.BNTX[1].Name != "embedded" {
		t.Errorf("import order: %s, %s", res.BNTX[0].Name, res.BNTX[1].Name)
	}
	if len(res.Textures) != 3 {
		t.Errorf("%d texture results", len(res.Textures))
	}
	text, err := os.ReadFile(filepath.Join(out, "readme.txt"))
	if err != nil || string(text) != "hello" {
		t.Errorf("readme.txt = %q, %v", text, err)
	}
	exists(t, filepath.Join(out, "fres-model-dump.txt"))
	if _, err := os.Stat(filepath.Join(out, "model")); err == nil {
		t.Error("textures exported without DumpTextures")
	}
}

func TestImportKeepsNamesInsideOutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a", "b", "out")
	input := filepath.Join(dir, "model.bfres")
	writeFile(t, input, testbin.FRES("../../model", []testbin.Embed{
		{Name: "../../../escaped.txt", Data: []byte("hello")},
		{Name: "textures.bntx", Data: testbin.BNTX("../../evil", []testbin.Texture{rgbaTexture("../../rgba")})},
	}))

	cfg := testConfig(out)
	cfg.DumpDebug = true
	cfg.DumpTextures = true
	res, err := New(cfg).Import(input)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Written) == 0 {
		t.Fatal("nothing written")
	}
	for _, path := range res.Written {
		rel, err := filepath.Rel(out, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			t.Errorf("wrote %s outside %s", path, out)
		}
	}
	for _, escaped := range []string{
		filepath.Join(dir, "escaped.txt"),
		filepath.Join(dir, "a", "escaped.txt"),
		filepath.Join(dir, "a", "evil"),
	} {
		if _, err := os.Stat(escaped); err == nil {
			t.Errorf("%s exists", escaped)
		}
	}
	exists(t, filepath.Join(out, ".._.._.._escaped.txt"))
	exists(t, filepath.Join(out, "model", ".._.._evil", ".._.._rgba.png"))
}

func TestImportWithoutTexFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "model.bfres")
	writeFile(t, input, testbin.FRES("model", nil))
	writeFile(t, filepath.Join(dir, "model.Tex.bfres"), testbin.BNTX("linked", []testbin.Texture{rgbaTexture("rgba")}))

	cfg := testConfig(dir)
	cfg.ImportTexFile = false
	res, err := New(cfg).Import(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.BNTX) != 0 || len(res.FRES) != 1 {
		t.Errorf("%d BNTX, %d FRES", len(res.BNTX), len(res.FRES))
	}
}

func TestImportUnsupported(t *testing.T) {
	input := filepath.Join(t.TempDir(), "junk.bfres")
	writeFile(t, input, []byte("JUNK and more"))

	_, err := New(testConfig(t.TempDir())).Import(input)
	var unsupported *UnsupportedFileTypeError
	if !errors.As(err, &unsupported) || string(unsupported.Magic) != "JUNK" {
		t.Errorf("err = %v", err)
	}
}

func TestImportTruncatedFRESFails(t *testing.T) {
	input := filepath.Join(t.TempDir(), "short.bfres")
	writeFile(t, input, testbin.FRES("model", nil)[:0x40])

	if _, err := New(testConfig(t.TempDir())).Import(input); err == nil {
		t.Error("truncated FRES imported")
	}
}

func TestPaths(t *testing.T) {
	tests := []struct {
		fn         func(string) string
		in, want string
	}{
		{TexFilePath, "Link.sbfres", "Link.Tex.sbfres"},
		{TexFilePath, "dir/Link.Tex.sbfres", "dir/Link.Tex.sbfres"},
		{DecompressedPath, "Link.sbfres", "Link.bfres"},
		{DecompressedPath, "Link.bfres.zs", "Link.bfres"},
		{DecompressedPath, "Link.yaz0", "Link.out"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("%q → %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextureRole(t *testing.T) {
	tests := []struct {
		name string
		want Role
	}{
		{"Link_Body_Alb", RoleAlbedo},
		{"Link_Body_Alb.1", RoleAlbedo},
		{"Link_Body_Nrm", RoleNormal},
		{"Link_Body_Spm", RoleSpecular},
		{"Rock_AO", RoleAO},
		{"Lamp_Emm", RoleEmission},
		{"Animal_Bee_Blur_01", RoleUnknown},
	}
	for _, tt := range tests {
		if got := TextureRole(tt.name); got != tt.want {
			t.Errorf("TextureRole(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBindMaterial(t *testing.T) {
	good := &bntx.Texture{
		Name: "Body_Alb", Width: 1, Height: 1, MipCount: 1,
		Format: pixelfmt.R8G8B8A8, DataType: pixelfmt.UNorm, TileMode: swizzle.TilePitch,
		MipOffsets: []int64{0}, Data: make([]byte, 32),
	}
	bad := &bntx.Texture{Name: "Body_Nrm", Format: 0x2D, MipOffsets: []int64{0}}
	im := New(config.Default())
	im.log = logging.Logger()
	im.index = texture.NewIndex()
	im.index.Add(&bntx.File{Textures: []*bntx.Texture{good, bad}})
	im.cache = texture.NewCache(im.index)

	mat := &fres.Material{
		Name: "body",
		Samplers: []*fres.Sampler{
			{Name: "_a0", Texture: "Body_Alb"},
			{Name: "_n0", Texture: "Body_Nrm"},
			{Name: "_e0", Texture: "Missing_Emm"},
		},
		TextureAttributes: []fres.TextureAttribute{{Name: "albedo", Sampler: "_a0"}},
	}
	got := im.bindMaterial("Link", mat)
	want := []Binding{
		{Model: "Link", Material: "body", Sampler: "_a0", Attribute: "albedo", Texture: "Body_Alb", Role: RoleAlbedo, Found: true, Decoded: true},
		{Model: "Link", Material: "body", Sampler: "_n0", Texture: "Body_Nrm", Role: RoleNormal, Found: true},
		{Model: "Link", Material: "body", Sampler: "_e0", Texture: "Missing_Emm", Role: RoleEmission},
	}
	if len(got) != len(want) {
		t.Fatalf("%d bindings", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("binding %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if s := got[1].String(); s != `Link/body _n0 → "Body_Nrm" (normal, undecodable)` {
		t.Errorf("String() = %s", s)
	}
}
