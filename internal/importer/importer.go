// Package importer unpacks BFRES/BNTX files from disk: it strips stream
// compression, decodes the containers (recursing into embedded files),
// decodes and exports textures on the batch pool, and writes the
// optional debug dumps and manifest.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"bfres-decoder/internal/batch"
	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/bntx"
	"bfres-decoder/internal/config"
	"bfres-decoder/internal/decompress"
	"bfres-decoder/internal/fres"
	"bfres-decoder/internal/logging"
	"bfres-decoder/internal/texture"
)

// UnsupportedFileTypeError is returned for data whose magic is none of
// Yaz0, Yaz1, Zstandard, FRES or BNTX.
type UnsupportedFileTypeError struct {
	Magic []byte
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("importer: unsupported file type %q", e.Magic)
}

// Importer runs imports with one configuration. It is not safe for
// concurrent use.
type Importer struct {
	cfg     config.Config
	session uuid.UUID
	log     *log.Logger

	index *texture.Index
	cache *texture.Cache
	res   *Result
}

// Result is everything one Import produced.
type Result struct {
	Path     string
	Session  uuid.UUID
	FRES     []*fres.File
	BNTX     []*bntx.File
	Texts    []*fres.Embed
	Textures []batch.Result
	Bindings []Binding
	// Written lists every file the import wrote.
	Written []string
}

// New creates an importer. cfg should already be resolved.
func New(cfg config.Config) *Importer {
	return &Importer{cfg: cfg}
}

// Import unpacks path and, when enabled, its sibling texture container
// "<name>.Tex<ext>" first so its textures win name lookups.
func (im *Importer) Import(path string) (*Result, error) {
	im.session = uuid.New()
	im.log = logging.Logger().With("session", im.session.String()[:8])
	im.index = texture.NewIndex()
	im.cache = texture.NewCache(im.index)
	im.res = &Result{Path: path, Session: im.session}

	if im.cfg.ImportTexFile {
		if tex := TexFilePath(path); tex != path {
			if _, err := os.Stat(tex); err == nil {
				im.log.Info("importing linked file", "path", tex)
				if err := im.unpackFile(tex); err != nil {
					return nil, err
				}
			}
		}
	}
	im.log.Info("importing", "path", path)
	if err := im.unpackFile(path); err != nil {
		return nil, err
	}

	if err := im.decodeTextures(); err != nil {
		return nil, err
	}
	for _, f := range im.res.FRES {
		for _, m := range f.Models {
			for _, mat := range m.Materials {
				im.res.Bindings = append(im.res.Bindings, im.bindMaterial(m.Name, mat)...)
			}
		}
	}
	return im.res, nil
}

// TexFilePath returns the sibling texture container path:
// "Link.sbfres" → "Link.Tex.sbfres".
func TexFilePath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if strings.HasSuffix(base, ".Tex") {
		return path
	}
	return base + ".Tex" + ext
}

// DecompressedPath names the file a decompressed stream is saved to.
// A leading "s" in the extension marks compression (".sbfres" →
// ".bfres"); a ".zs" suffix is dropped; anything else gets ".out".
func DecompressedPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	switch {
	case strings.EqualFold(ext, ".zs") && filepath.Ext(base) != "":
		return base
	case strings.HasPrefix(ext, ".s") && len(ext) > 2:
		return base + "." + ext[2:]
	}
	return base + ".out"
}

func (im *Importer) unpackFile(path string) error {
	data, kind, err := decompress.File(path)
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	if kind != decompress.None {
		im.log.Debug("decompressed", "kind", kind, "bytes", len(data))
		if im.cfg.SaveDecompressed {
			dst := DecompressedPath(path)
			im.log.Info("saving decompressed file", "path", dst)
			if err := im.write(dst, data); err != nil {
				return err
			}
		}
	}
	return im.unpack(data)
}

// unpack dispatches on the magic, unwrapping compressed embedded data.
func (im *Importer) unpack(data []byte) error {
	if kind := decompress.Detect(data); kind != decompress.None {
		im.log.Debug("decompressing", "kind", kind, "bytes", len(data))
		out, _, err := decompress.Bytes(data)
		if err != nil {
			return fmt.Errorf("importer: %w", err)
		}
		return im.unpack(out)
	}

	switch magic := head(data); magic {
	case "FRES":
		return im.importFRES(data)
	case "BNTX":
		return im.importBNTX(data)
	default:
		return &UnsupportedFileTypeError{Magic: []byte(magic)}
	}
}

func head(data []byte) string {
	return string(data[:min(4, len(data))])
}

func (im *Importer) importFRES(data []byte) error {
	f, err := fres.DecodeWith(binfile.NewReader(data), fres.Options{FirstLODOnly: im.cfg.FirstLODOnly})
	if err != nil {
		return err
	}
	im.res.FRES = append(im.res.FRES, f)
	if im.cfg.DumpDebug {
		if err := im.write(im.outPath(fmt.Sprintf("fres-%s-dump.txt", f.Name)), []byte(f.Dump())); err != nil {
			return err
		}
	}

	for _, e := range f.Embeds {
		if err := im.importEmbed(e); err != nil {
			return err
		}
	}
	for i, m := range f.Models {
		im.log.Info("model", "n", fmt.Sprintf("%d/%d", i+1, len(f.Models)), "name", m.Name,
			"shapes", len(m.Shapes), "materials", len(m.Materials), "bones", len(m.Skeleton.Bones))
	}
	return nil
}

func (im *Importer) importEmbed(e *fres.Embed) error {
	if strings.HasSuffix(e.Name, ".txt") {
		im.res.Texts = append(im.res.Texts, e)
		if im.cfg.DumpDebug {
			return im.write(im.outPath(e.Name), e.Data)
		}
		return nil
	}
	err := im.unpack(e.Data)
	var unsupported *UnsupportedFileTypeError
	if errors.As(err, &unsupported) {
		im.log.Debug("embedded file of unsupported type", "name", e.Name, "magic", fmt.Sprintf("%q", unsupported.Magic))
		return nil
	}
	if err != nil {
		return fmt.Errorf("importer: embedded %q: %w", e.Name, err)
	}
	return nil
}

func (im *Importer) importBNTX(data []byte) error {
	f, err := bntx.DecodeWith(binfile.NewReader(data), bntx.Options{
		SkipPixels:    true,
		ApplySelector: im.cfg.ComponentSelect,
	})
	if err != nil {
		return err
	}
	im.res.BNTX = append(im.res.BNTX, f)
	im.index.Add(f)
	if im.cfg.DumpDebug {
		return im.write(im.outPath(fmt.Sprintf("fres-%s-bntx-dump.txt", f.Name)), []byte(f.Dump()))
	}
	return nil
}

// decodeTextures runs every container's textures through the batch
// pool, exporting them under <output>/<input stem>/<container name>
// when dumping is on.
func (im *Importer) decodeTextures() error {
	for _, f := range im.res.BNTX {
		name := texture.SafeName(f.Name)
		dir := filepath.Join(im.exportDir(), name)
		results := batch.Run(batch.Config{
			OutputDir:   dir,
			Export:      im.cfg.DumpTextures,
			Format:      im.cfg.TextureFormat,
			PreviewSize: im.previewSize(),
			Workers:     im.cfg.Workers,
		}, f.Textures)
		for i, r := range results {
			im.log.Info("texture", "n", fmt.Sprintf("%d/%d", i+1, len(results)), "name", r.Name, "format", r.Format)
			if r.File != "" {
				im.res.Written = append(im.res.Written, filepath.Join(dir, r.File))
			}
			if r.Preview != "" {
				im.res.Written = append(im.res.Written, filepath.Join(dir, r.Preview))
			}
			// Manifest paths are relative to the export directory.
			results[i].File = joinRel(name, r.File)
			results[i].Preview = joinRel(name, r.Preview)
		}
		im.res.Textures = append(im.res.Textures, results...)
	}

	if im.cfg.DumpTextures && len(im.res.Textures) > 0 {
		path := filepath.Join(im.exportDir(), "manifest.json")
		m := batch.NewManifest(im.session, filepath.Base(im.res.Path), im.res.Textures)
		if err := batch.WriteManifest(path, m); err != nil {
			return err
		}
		im.res.Written = append(im.res.Written, path)
	}
	return nil
}

func joinRel(dir, file string) string {
	if file == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Join(dir, file))
}

func (im *Importer) previewSize() int {
	if !im.cfg.DumpTextures {
		return 0
	}
	return im.cfg.PreviewSize
}

func (im *Importer) exportDir() string {
	base := filepath.Base(im.res.Path)
	return im.outPath(strings.TrimSuffix(base, filepath.Ext(base)))
}

// outPath places a file directly in the output directory. name may
// come from the file being imported, so it is reduced to one element.
func (im *Importer) outPath(name string) string {
	return filepath.Join(im.cfg.OutputDir, texture.SafeName(name))
}

func (im *Importer) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	im.res.Written = append(im.res.Written, path)
	return nil
}
