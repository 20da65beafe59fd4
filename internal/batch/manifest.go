package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one import session's texture output.
type Manifest struct {
	Session  uuid.UUID       `json:"session"`
	Source   string          `json:"source"`
	Created  time.Time       `json:"created"`
	Textures []ManifestEntry `json:"textures"`
}

// ManifestEntry represents one texture in the output manifest.
type ManifestEntry struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"`
	Image   string `json:"image,omitempty"`
	Preview string `json:"preview,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewManifest builds a manifest from batch results.
func NewManifest(session uuid.UUID, source string, results []Result) Manifest {
	m := Manifest{
		Session:  session,
		Source:   source,
		Created:  time.Now().UTC(),
		Textures: make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		m.Textures[i] = ManifestEntry{
			Name:    r.Name,
			Width:   r.Width,
			Height:  r.Height,
			Format:  r.Format,
			Image:   r.File,
			Preview: r.Preview,
			Error:   r.Error,
		}
	}
	return m
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return nil
}
