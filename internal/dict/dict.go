// Package dict decodes _DIC blocks, the Patricia-trie string
// dictionaries that index every named array in a container.
package dict

import (
	"errors"
	"fmt"
	"strings"

	"bfres-decoder/internal/binfile"
)

// ErrNameNotFound is returned by Lookup when no node carries the name.
var ErrNameNotFound = errors.New("name not found")

const nodeSize = 16

// Node is one trie entry. Node 0 of every dictionary is the root
// sentinel with Ref == -1 and an empty name.
type Node struct {
	Ref   int32
	Left  uint16
	Right uint16
	Name  string
}

// Dict is a decoded dictionary. The real entries are Nodes[1:], in the
// same order as the array the dictionary indexes.
type Dict struct {
	Nodes []Node
}

var nodeLayout = binfile.Layout{
	binfile.I32("ref"),
	binfile.U16("left"),
	binfile.U16("right"),
	binfile.Str("name"),
}

// Read decodes the dictionary at off. An offset of 0 yields an empty
// dictionary. The signature may be "_DIC" or four zero bytes.
func Read(r *binfile.Reader, off int64) (*Dict, error) {
	if off == 0 {
		return &Dict{Nodes: []Node{{Ref: -1}}}, nil
	}
	sig, err := r.U32(off)
	if err != nil {
		return nil, fmt.Errorf("dict: header at 0x%X: %w", off, err)
	}
	if sig != 0 {
		if err := r.Magic(off, "_DIC"); err != nil {
			return nil, fmt.Errorf("dict: %w", err)
		}
	}
	count, err := r.I32(off + 4)
	if err != nil {
		return nil, fmt.Errorf("dict: count at 0x%X: %w", off+4, err)
	}
	if count < 0 || int64(count)+1 > (r.Len()-off-8)/nodeSize {
		return nil, fmt.Errorf("dict: %d nodes at 0x%X: %w", count, off, binfile.ErrTruncatedData)
	}

	d := &Dict{Nodes: make([]Node, count+1)}
	for i := range d.Nodes {
		rec, err := r.ReadStruct(off+8+int64(i)*nodeSize, nodeLayout)
		if err != nil {
			return nil, fmt.Errorf("dict: node %d: %w", i, err)
		}
		d.Nodes[i] = Node{
			Ref:   int32(rec.Int("ref")),
			Left:  uint16(rec.Uint("left")),
			Right: uint16(rec.Uint("right")),
			Name:  rec.Str("name"),
		}
	}
	return d, nil
}

// Count returns the number of real entries.
func (d *Dict) Count() int {
	if d == nil || len(d.Nodes) == 0 {
		return 0
	}
	return len(d.Nodes) - 1
}

// NameAt returns the name of entry i, 1 <= i <= Count.
func (d *Dict) NameAt(i int) (string, error) {
	if i < 1 || i > d.Count() {
		return "", fmt.Errorf("dict: entry %d of %d: %w", i, d.Count(), ErrNameNotFound)
	}
	return d.Nodes[i].Name, nil
}

// Names returns the entry names in index order.
func (d *Dict) Names() []string {
	out := make([]string, d.Count())
	for i := range out {
		out[i] = d.Nodes[i+1].Name
	}
	return out
}

// Index returns the 0-based array index of name, scanning linearly.
// It works even when the trie links are damaged.
func (d *Dict) Index(name string) (int, bool) {
	for i := 1; i <= d.Count(); i++ {
		if d.Nodes[i].Name == name {
			return i - 1, true
		}
	}
	return -1, false
}

// Lookup walks the trie and returns the 1-based node index of name.
func (d *Dict) Lookup(name string) (int, error) {
	if d.Count() == 0 {
		return 0, fmt.Errorf("dict: lookup %q: %w", name, ErrNameNotFound)
	}
	prev, cur := 0, int(d.Nodes[0].Left)
	for steps := 0; steps <= len(d.Nodes); steps++ {
		if cur >= len(d.Nodes) {
			break
		}
		if d.Nodes[prev].Ref >= d.Nodes[cur].Ref {
			if cur != 0 && d.Nodes[cur].Name == name {
				return cur, nil
			}
			break
		}
		prev = cur
		if bit(name, d.Nodes[cur].Ref) == 1 {
			cur = int(d.Nodes[cur].Right)
		} else {
			cur = int(d.Nodes[cur].Left)
		}
	}
	return 0, fmt.Errorf("dict: lookup %q: %w", name, ErrNameNotFound)
}

// bit returns bit ref of name counted from the last character.
func bit(name string, ref int32) int {
	if ref < 0 {
		return 0
	}
	i := int(ref >> 3)
	if i >= len(name) {
		return 0
	}
	return int(name[len(name)-1-i]>>(uint(ref)&7)) & 1
}

// Dump renders the node table.
func (d *Dict) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dict: %d entries\n", d.Count())
	for i, n := range d.Nodes {
		fmt.Fprintf(&b, "  [%3d] ref=%4d left=%3d right=%3d %q\n", i, n.Ref, n.Left, n.Right, n.Name)
	}
	return b.String()
}
