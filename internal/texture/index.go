package texture

import (
	"path/filepath"
	"sort"
	"strings"

	"bfres-decoder/internal/bntx"
	"bfres-decoder/internal/logging"
)

// Index maps lowercase texture names to decoded BNTX descriptors.
// The first container to register a name wins, so a sibling .Tex
// container imported first takes priority over the main file's copy.
type Index struct {
	entries map[string]*bntx.Texture // name.lower() → texture
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*bntx.Texture)}
}

// Add registers every texture of a container.
func (idx *Index) Add(f *bntx.File) {
	for _, t := range f.Textures {
		key := stem(t.Name)
		if _, exists := idx.entries[key]; exists {
			logging.Debug("texture already indexed", "texture", t.Name, "container", f.Name)
			continue
		}
		idx.entries[key] = t
	}
}

// Lookup returns the texture for a name as materials reference it.
func (idx *Index) Lookup(texName string) (*bntx.Texture, bool) {
	t, ok := idx.entries[stem(texName)]
	return t, ok
}

// Textures returns the indexed textures sorted by name.
func (idx *Index) Textures() []*bntx.Texture {
	out := make([]*bntx.Texture, 0, len(idx.entries))
	for _, t := range idx.entries {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// stem strips any path prefix and image extension:
// "Tex\\Body_Alb.png" → "body_alb".
func stem(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".tga", ".webp", ".dds":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.ToLower(base)
}
