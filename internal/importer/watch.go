package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"bfres-decoder/internal/logging"
)

// watchedExts are the file extensions Watch reacts to.
var watchedExts = map[string]bool{
	".bfres": true, ".sbfres": true,
	".bntx": true, ".sbntx": true,
	".szs": true, ".zs": true,
}

// Watchable reports whether Watch would import path.
func Watchable(path string) bool {
	return watchedExts[strings.ToLower(filepath.Ext(path))]
}

// settle is how long a file must stay quiet before it is handed on;
// copies arrive as a burst of writes.
const settle = 250 * time.Millisecond

// ownWrites is how long events on files fn reported writing are
// ignored.
const ownWrites = 2 * time.Second

// Watch calls fn for every importable file created or rewritten in
// dir until ctx is cancelled. Sibling ".Tex" containers are skipped;
// they are imported along with their main file. fn returns the files
// it wrote, such as a saved decompressed copy, so they are not imported
// again.
func Watch(ctx context.Context, dir string, fn func(path string) []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("importer: watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("importer: watch %s: %w", dir, err)
	}

	pending := make(map[string]time.Time)
	produced := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || !Watchable(e.Name) {
				continue
			}
			if TexFilePath(e.Name) == e.Name {
				continue
			}
			if at, ok := produced[filepath.Clean(e.Name)]; ok && time.Since(at) < ownWrites {
				continue
			}
			pending[e.Name] = time.Now()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Error("watch", "err", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) >= settle {
					delete(pending, path)
					for _, w := range fn(path) {
						produced[filepath.Clean(w)] = time.Now()
					}
				}
			}
			for path, at := range produced {
				if now.Sub(at) >= ownWrites {
					delete(produced, path)
				}
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
