// Package document defines the immutable block document model and the pure
// mutation operations that produce new snapshots from old ones.
//
// Offsets and lengths are counted in Unicode code points (runes) of a
// block's text. No operation in this package mutates its arguments; every
// accessor hands out copies.
package document

import (
	"fmt"
	"strings"
)

// BlockType identifies the structural role of a block.
type BlockType string

// Block types.
const (
	Paragraph         BlockType = "paragraph"
	HeaderOne         BlockType = "header-one"
	HeaderTwo         BlockType = "header-two"
	HeaderThree       BlockType = "header-three"
	HeaderFour        BlockType = "header-four"
	HeaderFive        BlockType = "header-five"
	HeaderSix         BlockType = "header-six"
	Blockquote        BlockType = "blockquote"
	UnorderedListItem BlockType = "unordered-list-item"
	OrderedListItem   BlockType = "ordered-list-item"
	CodeBlock         BlockType = "code-block"
)

// legacyParagraph is the name older records use for Paragraph.
const legacyParagraph = "unstyled"

var blockTypes = []BlockType{
	Paragraph,
	HeaderOne, HeaderTwo, HeaderThree, HeaderFour, HeaderFive, HeaderSix,
	Blockquote,
	UnorderedListItem, OrderedListItem,
	CodeBlock,
}

// BlockTypes returns every known block type.
func BlockTypes() []BlockType {
	out := make([]BlockType, len(blockTypes))
	copy(out, blockTypes)
	return out
}

// Valid reports whether t is a known block type.
func (t BlockType) Valid() bool {
	for _, bt := range blockTypes {
		if t == bt {
			return true
		}
	}
	return false
}

// IsHeader reports whether t is one of the header-* types.
func (t BlockType) IsHeader() bool {
	return strings.HasPrefix(string(t), "header-") && t.Valid()
}

// ParseBlockType converts a wire name to a BlockType. The legacy name
// "unstyled" maps to Paragraph.
func ParseBlockType(s string) (BlockType, error) {
	if s == legacyParagraph {
		return Paragraph, nil
	}
	t := BlockType(s)
	if !t.Valid() {
		return "", fmt.Errorf("document: unknown block type %q", s)
	}
	return t, nil
}

// Style names an inline style. The set is closed so that a typo in a
// trigger table or a stored record is caught instead of silently ignored.
type Style string

// Inline styles.
const (
	Bold          Style = "BOLD"
	Italic        Style = "ITALIC"
	Underline     Style = "UNDERLINE"
	Code          Style = "CODE"
	Strikethrough Style = "STRIKETHROUGH"
	Red           Style = "RED"
)

var styles = []Style{Bold, Italic, Underline, Code, Strikethrough, Red}

// Styles returns every known inline style.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	for _, st := range styles {
		if s == st {
			return true
		}
	}
	return false
}

// ParseStyle converts a wire name to a Style.
func ParseStyle(s string) (Style, error) {
	st := Style(s)
	if !st.Valid() {
		return "", fmt.Errorf("document: unknown inline style %q", s)
	}
	return st, nil
}

// StyleRange tags the half-open interval [Offset, Offset+Length) of a
// block's text with one style.
type StyleRange struct {
	Offset int
	Length int
	Style  Style
}

// End returns the exclusive end offset of the range.
func (r StyleRange) End() int { return r.Offset + r.Length }

// Block is one paragraph-like unit of a document.
type Block struct {
	Key               string
	Type              BlockType
	Text              string
	InlineStyleRanges []StyleRange
}

// Len returns the length of the block text in code points.
func (b Block) Len() int {
	return len([]rune(b.Text))
}

// HasStyleAt reports whether the character at offset carries style.
func (b Block) HasStyleAt(style Style, offset int) bool {
	for _, r := range b.InlineStyleRanges {
		if r.Style == style && offset >= r.Offset && offset < r.End() {
			return true
		}
	}
	return false
}

// StylesAt returns the styles applied to the character at offset.
func (b Block) StylesAt(offset int) []Style {
	var out []Style
	for _, r := range b.InlineStyleRanges {
		if offset >= r.Offset && offset < r.End() {
			out = append(out, r.Style)
		}
	}
	return out
}

func (b Block) clone() Block {
	out := b
	if b.InlineStyleRanges != nil {
		out.InlineStyleRanges = make([]StyleRange, len(b.InlineStyleRanges))
		copy(out.InlineStyleRanges, b.InlineStyleRanges)
	}
	return out
}

// validate checks the block invariants: a key, a known type, and ranges
// with known styles inside the text bounds.
func (b Block) validate() error {
	if b.Key == "" {
		return fmt.Errorf("document: block key is empty")
	}
	if !b.Type.Valid() {
		return fmt.Errorf("document: block %q: unknown block type %q", b.Key, b.Type)
	}
	n := b.Len()
	for _, r := range b.InlineStyleRanges {
		if !r.Style.Valid() {
			return fmt.Errorf("document: block %q: unknown inline style %q", b.Key, r.Style)
		}
		if r.Offset < 0 || r.Length < 0 || r.Offset > n || r.Length > n-r.Offset {
			return &RangeError{Key: b.Key, Start: r.Offset, End: r.End(), Len: n}
		}
	}
	return nil
}
