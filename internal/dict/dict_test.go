package dict

import (
	"errors"
	"testing"

	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/testbin"
)

func buildDict(t *testing.T, names []string) (*binfile.Reader, int64) {
	t.Helper()
	b := testbin.New(16)
	off := b.Dict(names)
	return binfile.NewReader(b.Bytes()), int64(off)
}

func TestIndexStability(t *testing.T) {
	names := []string{"Body", "Eye_L", "Eye_R", "Hair", "Mouth", "a", "ab", "Body2"}
	r, off := buildDict(t, names)
	d, err := Read(r, off)
	if err != nil {
		t.Fatal(err)
	}
	if d.Count() != len(names) {
		t.Fatalf("Count = %d, want %d", d.Count(), len(names))
	}
	for i, want := range names {
		got, err := d.NameAt(i + 1)
		if err != nil || got != want {
			t.Errorf("NameAt(%d) = %q, %v; want %q", i+1, got, err, want)
		}
		idx, err := d.Lookup(want)
		if err != nil {
			t.Errorf("Lookup(%q): %v", want, err)
			continue
		}
		if idx != i+1 {
			t.Errorf("Lookup(%q) = %d, want %d", want, idx, i+1)
		}
		if j, ok := d.Index(want); !ok || j != i {
			t.Errorf("Index(%q) = %d, %v", want, j, ok)
		}
	}
}

func TestLookupMissing(t *testing.T) {
	r, off := buildDict(t, []string{"alpha", "beta"})
	d, err := Read(r, off)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"gamma", "", "alph", "betas"} {
		if _, err := d.Lookup(name); !errors.Is(err, ErrNameNotFound) {
			t.Errorf("Lookup(%q) = %v, want ErrNameNotFound", name, err)
		}
	}
	if _, err := d.NameAt(0); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("NameAt(0) = %v", err)
	}
	if _, err := d.NameAt(3); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("NameAt(3) = %v", err)
	}
}

func TestEmptyAndTruncated(t *testing.T) {
	r := binfile.NewReader(make([]byte, 32))
	d, err := Read(r, 0)
	if err != nil || d.Count() != 0 || len(d.Names()) != 0 {
		t.Fatalf("offset 0: %v, count %d", err, d.Count())
	}

	b := testbin.New(8)
	b.Append([]byte("_DIC\x05\x00\x00\x00"))
	if _, err := Read(binfile.NewReader(b.Bytes()), 8); !errors.Is(err, binfile.ErrTruncatedData) {
		t.Errorf("truncated dict: got %v", err)
	}

	bad := testbin.New(8)
	bad.Append([]byte("XDIC\x00\x00\x00\x00"))
	if _, err := Read(binfile.NewReader(bad.Bytes()), 8); !errors.Is(err, binfile.ErrBadMagic) {
		t.Errorf("bad magic: got %v", err)
	}
}
