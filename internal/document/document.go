package document

import (
	"fmt"
	"slices"
	"strings"
)

// Document is an ordered, non-empty sequence of blocks with unique keys.
// The zero value is not a valid document; use NewDocument or CreateEmpty.
type Document struct {
	blocks []Block
}

// NewDocument validates blocks and returns a document holding copies of
// them with normalised style ranges.
func NewDocument(blocks ...Block) (Document, error) {
	if len(blocks) == 0 {
		return Document{}, ErrEmptyDocument
	}
	seen := make(map[string]struct{}, len(blocks))
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		if err := b.validate(); err != nil {
			return Document{}, err
		}
		if _, dup := seen[b.Key]; dup {
			return Document{}, fmt.Errorf("document: duplicate block key %q", b.Key)
		}
		seen[b.Key] = struct{}{}
		nb := b.clone()
		nb.InlineStyleRanges = normalizeRanges(nb.InlineStyleRanges)
		out[i] = nb
	}
	return Document{blocks: out}, nil
}

// IsZero reports whether d is the zero Document.
func (d Document) IsZero() bool { return len(d.blocks) == 0 }

// Len returns the number of blocks.
func (d Document) Len() int { return len(d.blocks) }

// Blocks returns a copy of the blocks in document order.
func (d Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.clone()
	}
	return out
}

// Block returns the block with the given key.
func (d Document) Block(key string) (Block, bool) {
	i := d.index(key)
	if i < 0 {
		return Block{}, false
	}
	return d.blocks[i].clone(), true
}

// BlockAt returns the block at position i.
func (d Document) BlockAt(i int) Block {
	return d.blocks[i].clone()
}

// BlockBefore returns the block preceding key, if any.
func (d Document) BlockBefore(key string) (Block, bool) {
	i := d.index(key)
	if i <= 0 {
		return Block{}, false
	}
	return d.blocks[i-1].clone(), true
}

// FirstBlock returns the first block.
func (d Document) FirstBlock() Block { return d.blocks[0].clone() }

// LastBlock returns the last block.
func (d Document) LastBlock() Block { return d.blocks[len(d.blocks)-1].clone() }

// PlainText joins the block texts with newlines.
func (d Document) PlainText() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n")
}

// SetBlockType returns a document where the block named key has type t.
func (d Document) SetBlockType(key string, t BlockType) (Document, error) {
	if !t.Valid() {
		return Document{}, fmt.Errorf("document: unknown block type %q", t)
	}
	i := d.index(key)
	if i < 0 {
		return Document{}, &UnknownBlockKeyError{Key: key}
	}
	b := d.blocks[i].clone()
	b.Type = t
	return d.withBlock(i, b), nil
}

func (d Document) index(key string) int {
	for i, b := range d.blocks {
		if b.Key == key {
			return i
		}
	}
	return -1
}

func (d Document) hasKey(key string) bool { return d.index(key) >= 0 }

// withBlock returns a copy of d with block i replaced.
func (d Document) withBlock(i int, b Block) Document {
	out := make([]Block, len(d.blocks))
	copy(out, d.blocks)
	out[i] = b
	return Document{blocks: out}
}

// splice returns a copy of d with blocks [from, to) replaced by repl.
func (d Document) splice(from, to int, repl ...Block) Document {
	out := make([]Block, 0, len(d.blocks)-(to-from)+len(repl))
	out = append(out, d.blocks[:from]...)
	out = append(out, repl...)
	out = append(out, d.blocks[to:]...)
	return Document{blocks: out}
}

// Equal reports whether a and b hold the same blocks: keys, types, texts,
// and style range sets.
func Equal(a, b Document) bool {
	if len(a.blocks) != len(b.blocks) {
		return false
	}
	for i := range a.blocks {
		x, y := a.blocks[i], b.blocks[i]
		if x.Key != y.Key || x.Type != y.Type || x.Text != y.Text {
			return false
		}
		if !slices.Equal(normalizeRanges(x.InlineStyleRanges), normalizeRanges(y.InlineStyleRanges)) {
			return false
		}
	}
	return true
}
