package document

import "slices"

// ReplaceTextInRange replaces the text spanned by sel with newText and
// returns the resulting document. The selection may be collapsed but must
// stay inside one block. Style ranges before the span are kept, ranges after
// it are shifted, and ranges overlapping it are truncated to their parts
// outside it; newText itself is unstyled.
func ReplaceTextInRange(doc Document, sel Selection, newText string) (Document, error) {
	if doc.IsZero() {
		return Document{}, ErrEmptyDocument
	}
	resolved, si, ei, err := resolve(doc, sel)
	if err != nil {
		return Document{}, err
	}
	if si != ei {
		return Document{}, ErrCrossBlock
	}
	start, end := resolved.StartOffset(), resolved.EndOffset()

	b := doc.blocks[si].clone()
	rs := []rune(b.Text)
	ins := []rune(newText)
	b.Text = string(rs[:start]) + newText + string(rs[end:])
	b.InlineStyleRanges = replaceSpan(b.InlineStyleRanges, start, end, len(ins))
	return doc.withBlock(si, b), nil
}

// ToggleBlockType sets every block touched by the selection to t, or back
// to Paragraph when the block holding the selection start already has type
// t. A multi-block selection ending at offset 0 does not touch its last
// block.
func ToggleBlockType(s Snapshot, t BlockType) Snapshot {
	if !t.Valid() {
		return s
	}
	_, si, ei, err := resolve(s.doc, s.sel)
	if err != nil {
		return s
	}
	if ei > si && s.sel.EndOffset() == 0 {
		ei--
	}
	target := t
	if s.doc.blocks[si].Type == t {
		target = Paragraph
	}

	out := make([]Block, len(s.doc.blocks))
	copy(out, s.doc.blocks)
	for i := si; i <= ei; i++ {
		b := out[i].clone()
		b.Type = target
		out[i] = b
	}
	return Snapshot{doc: Document{blocks: out}, sel: s.sel}
}

// ToggleInlineStyle applies style across the selected span, or removes it
// when every selected character already carries it. On a collapsed
// selection the document is unchanged and the style is toggled in the
// override applied to the next inserted text.
func ToggleInlineStyle(s Snapshot, style Style) Snapshot {
	if !style.Valid() {
		return s
	}
	if s.sel.IsCollapsed() {
		current := CurrentInlineStyles(s)
		next := make([]Style, 0, len(current)+1)
		found := false
		for _, st := range current {
			if st == style {
				found = true
				continue
			}
			next = append(next, st)
		}
		if !found {
			next = append(next, style)
		}
		return Snapshot{doc: s.doc, sel: s.sel, override: sortStyles(next), hasOverride: true}
	}
	sel, si, ei, err := resolve(s.doc, s.sel)
	if err != nil {
		return s
	}

	type segment struct{ block, from, to int }
	var segs []segment
	applied := true
	for i := si; i <= ei; i++ {
		from, to := 0, s.doc.blocks[i].Len()
		if i == si {
			from = sel.StartOffset()
		}
		if i == ei {
			to = sel.EndOffset()
		}
		if from >= to {
			continue
		}
		segs = append(segs, segment{block: i, from: from, to: to})
		if !covers(s.doc.blocks[i].InlineStyleRanges, style, from, to) {
			applied = false
		}
	}
	if len(segs) == 0 {
		return s
	}

	out := make([]Block, len(s.doc.blocks))
	copy(out, s.doc.blocks)
	for _, seg := range segs {
		b := out[seg.block].clone()
		if applied {
			b.InlineStyleRanges = removeStyle(b.InlineStyleRanges, style, seg.from, seg.to)
		} else {
			b.InlineStyleRanges = addStyle(b.InlineStyleRanges, style, seg.from, seg.to)
		}
		out[seg.block] = b
	}
	return Snapshot{doc: Document{blocks: out}, sel: s.sel}
}

// CurrentInlineStyles returns the styles carried by every character of the
// selection start block's selected span. For a collapsed selection it
// reports the pending override if one is set, otherwise the styles the next
// inserted character would inherit.
func CurrentInlineStyles(s Snapshot) []Style {
	if s.sel.IsCollapsed() {
		if st, ok := s.InlineStyleOverride(); ok {
			return st
		}
		return inheritedStyles(s.StartBlock(), s.sel.StartOffset())
	}
	b := s.StartBlock()
	from, to := s.sel.StartOffset(), s.sel.EndOffset()
	if s.sel.StartKey() != s.sel.EndKey() {
		to = b.Len()
	}
	var out []Style
	for _, st := range styles {
		if covers(b.InlineStyleRanges, st, from, to) {
			out = append(out, st)
		}
	}
	return out
}

// inheritedStyles returns the styles of the character before offset, or of
// the first character when offset is 0.
func inheritedStyles(b Block, offset int) []Style {
	switch {
	case offset > 0:
		return sortStyles(b.StylesAt(offset - 1))
	case b.Len() > 0:
		return sortStyles(b.StylesAt(0))
	}
	return nil
}

// sortStyles orders styles by their declaration order.
func sortStyles(in []Style) []Style {
	if len(in) == 0 {
		return in
	}
	out := make([]Style, 0, len(in))
	for _, st := range styles {
		if slices.Contains(in, st) {
			out = append(out, st)
		}
	}
	return out
}
