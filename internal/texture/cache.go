package texture

import (
	"image"
	"sync"
)

// Cache is a concurrency-safe cache of decoded level-0 images.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img *image.NRGBA // nil if the texture failed to decode
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve returns the decoded image for a texture name, or nil if the
// name is unknown or its pixels cannot be decoded. Pixels already set
// by Texture.DecodePixels are reused; otherwise level 0 is decoded
// here, leaving the texture untouched.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	img, _ := c.ResolveErr(texName)
	return img
}

// ResolveErr is Resolve with the decode failure, if any.
func (c *Cache) ResolveErr(texName string) (*image.NRGBA, error) {
	tex, ok := c.index.Lookup(texName)
	if !ok {
		return nil, nil
	}
	key := stem(tex.Name)

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: decode
	entry := &cacheEntry{}
	pix := tex.Pixels
	if pix == nil {
		pix, entry.err = tex.DecodeMip(0)
	}
	if entry.err == nil {
		entry.img = Image(pix, tex.Width, tex.Height)
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, exists := c.items[key]; exists {
		return existing.img, existing.err
	}
	c.items[key] = entry
	return entry.img, entry.err
}

// Image wraps straight-alpha RGBA8 rows as an NRGBA image without copying.
func Image(pix []byte, width, height int) *image.NRGBA {
	return &image.NRGBA{
		Pix:    pix,
		Stride: 4 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
}
