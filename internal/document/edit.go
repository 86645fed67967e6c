package document

import "strings"

// Direction selects which side of a collapsed caret RemoveRange deletes.
type Direction uint8

const (
	// Backward deletes the code point before the caret (backspace).
	Backward Direction = iota
	// Forward deletes the code point after the caret (delete).
	Forward
)

// InsertText replaces the selection with text and collapses the caret after
// it. A newline in text splits the block.
//
// The inserted text takes the pending style override when one is set, and
// otherwise inherits the styles of the neighbouring character.
func InsertText(s Snapshot, text string) (Snapshot, error) {
	inherit := insertionStyles(s)
	doc, caret, err := deleteSelection(s.doc, s.sel)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{doc: doc, sel: caret}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			if snap, err = SplitBlock(snap); err != nil {
				return Snapshot{}, err
			}
		}
		if line == "" {
			continue
		}
		d, err := ReplaceTextInRange(snap.doc, snap.sel, line)
		if err != nil {
			return Snapshot{}, err
		}
		key, from := snap.sel.AnchorKey, snap.sel.AnchorOffset
		to := from + len([]rune(line))
		if len(inherit) > 0 {
			bi := d.index(key)
			b := d.blocks[bi].clone()
			for _, st := range inherit {
				b.InlineStyleRanges = addStyle(b.InlineStyleRanges, st, from, to)
			}
			d = d.withBlock(bi, b)
		}
		snap = Snapshot{doc: d, sel: Caret(key, to)}
	}
	return snap, nil
}

// insertionStyles returns the styles text typed over s's selection gets.
func insertionStyles(s Snapshot) []Style {
	if st, ok := s.InlineStyleOverride(); ok {
		return st
	}
	if s.doc.IsZero() {
		return nil
	}
	b, ok := s.doc.Block(s.sel.StartKey())
	if !ok {
		return nil
	}
	off := s.sel.StartOffset()
	if !s.sel.IsCollapsed() && off < b.Len() {
		return sortStyles(b.StylesAt(off))
	}
	return inheritedStyles(b, off)
}

// RemoveRange deletes the selection, or one code point next to a collapsed
// caret. At a block edge the neighbouring block is joined instead.
func RemoveRange(s Snapshot, dir Direction) (Snapshot, error) {
	if !s.sel.IsCollapsed() {
		doc, caret, err := deleteSelection(s.doc, s.sel)
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{doc: doc, sel: caret}, nil
	}

	key, off := s.sel.AnchorKey, s.sel.AnchorOffset
	i := s.doc.index(key)
	if i < 0 {
		return Snapshot{}, &UnknownBlockKeyError{Key: key}
	}
	b := s.doc.blocks[i]

	switch dir {
	case Backward:
		if off > 0 {
			doc, err := ReplaceTextInRange(s.doc, Span(key, off-1, off), "")
			if err != nil {
				return Snapshot{}, err
			}
			return Snapshot{doc: doc, sel: Caret(key, off-1)}, nil
		}
		if i > 0 {
			prev := s.doc.blocks[i-1]
			return Snapshot{doc: s.doc.joinWithNext(i - 1), sel: Caret(prev.Key, prev.Len())}, nil
		}
	case Forward:
		if off < b.Len() {
			doc, err := ReplaceTextInRange(s.doc, Span(key, off, off+1), "")
			if err != nil {
				return Snapshot{}, err
			}
			return Snapshot{doc: doc, sel: Caret(key, off)}, nil
		}
		if i < len(s.doc.blocks)-1 {
			return Snapshot{doc: s.doc.joinWithNext(i), sel: Caret(key, off)}, nil
		}
	}
	return s, nil
}

// SplitBlock deletes the selection and splits the block at the caret. The
// caret moves to the start of the new second block. Splitting a header at
// its end starts a paragraph.
func SplitBlock(s Snapshot) (Snapshot, error) {
	doc, caret, err := deleteSelection(s.doc, s.sel)
	if err != nil {
		return Snapshot{}, err
	}
	i := doc.index(caret.AnchorKey)
	b := doc.blocks[i]
	rs := []rune(b.Text)
	off := caret.AnchorOffset

	head, tail := splitRanges(b.InlineStyleRanges, off)
	tailType := b.Type
	if tailType.IsHeader() && off == len(rs) {
		tailType = Paragraph
	}
	key := NewKey(doc.hasKey)
	first := Block{Key: b.Key, Type: b.Type, Text: string(rs[:off]), InlineStyleRanges: head}
	second := Block{Key: key, Type: tailType, Text: string(rs[off:]), InlineStyleRanges: tail}
	return Snapshot{doc: doc.splice(i, i+1, first, second), sel: Caret(key, 0)}, nil
}

// deleteSelection removes the selected content, joining the edge blocks of
// a multi-block selection, and returns the caret at the deletion point.
func deleteSelection(doc Document, sel Selection) (Document, Selection, error) {
	if doc.IsZero() {
		return Document{}, Selection{}, ErrEmptyDocument
	}
	resolved, si, ei, err := resolve(doc, sel)
	if err != nil {
		return Document{}, Selection{}, err
	}
	start, end := resolved.StartOffset(), resolved.EndOffset()
	first := doc.blocks[si]
	caret := Caret(first.Key, start)
	if resolved.IsCollapsed() {
		return doc, caret, nil
	}
	if si == ei {
		d, err := ReplaceTextInRange(doc, resolved, "")
		if err != nil {
			return Document{}, Selection{}, err
		}
		return d, caret, nil
	}

	last := doc.blocks[ei]
	fr, lr := []rune(first.Text), []rune(last.Text)
	head, _ := splitRanges(first.InlineStyleRanges, start)
	_, tail := splitRanges(last.InlineStyleRanges, end)
	merged := Block{
		Key:               first.Key,
		Type:              first.Type,
		Text:              string(fr[:start]) + string(lr[end:]),
		InlineStyleRanges: joinRanges(head, tail, start),
	}
	return doc.splice(si, ei+1, merged), caret, nil
}

// joinWithNext merges block i+1 into block i.
func (d Document) joinWithNext(i int) Document {
	a, b := d.blocks[i], d.blocks[i+1]
	merged := Block{
		Key:               a.Key,
		Type:              a.Type,
		Text:              a.Text + b.Text,
		InlineStyleRanges: joinRanges(a.InlineStyleRanges, b.InlineStyleRanges, a.Len()),
	}
	return d.splice(i, i+2, merged)
}
