package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Link.sbfres", true},
		{"Link.BFRES", true},
		{"Link.bfres.zs", true},
		{"textures.bntx", true},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := Watchable(tt.path); got != tt.want {
			t.Errorf("Watchable(%q) = %v", tt.path, got)
		}
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seen := make(chan string, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, dir, func(path string) []string {
			seen <- path
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	for _, name := range []string{"notes.txt", "Link.Tex.sbfres", "Link.sbfres"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("Yaz0"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case path := <-seen:
		if filepath.Base(path) != "Link.sbfres" {
			t.Errorf("saw %s", path)
		}
	case <-ctx.Done():
		t.Fatal("no event")
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v", err)
	}
	select {
	case path := <-seen:
		t.Errorf("unexpected second event %s", path)
	default:
	}
}

func TestWatchSkipsOwnOutput(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saved := filepath.Join(dir, "Link.bfres")
	seen := make(chan string, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, dir, func(path string) []string {
			seen <- path
			if err := os.WriteFile(saved, []byte("FRES"), 0o644); err != nil {
				t.Error(err)
			}
			return []string{saved}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "Link.sbfres"), []byte("Yaz0"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-seen:
		if filepath.Base(path) != "Link.sbfres" {
			t.Errorf("saw %s", path)
		}
	case <-ctx.Done():
		t.Fatal("no event")
	}
	select {
	case path := <-seen:
		t.Errorf("re-imported %s", path)
	case <-time.After(4 * settle):
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v", err)
	}
}
