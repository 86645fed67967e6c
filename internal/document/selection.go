package document

// Selection is an anchor/focus pair of block positions. It is only
// meaningful together with the document it was computed against.
type Selection struct {
	AnchorKey    string
	AnchorOffset int
	FocusKey     string
	FocusOffset  int
	IsBackward   bool
}

// Caret returns a collapsed selection at offset in block key.
func Caret(key string, offset int) Selection {
	return Selection{AnchorKey: key, AnchorOffset: offset, FocusKey: key, FocusOffset: offset}
}

// Span returns a forward selection from start to end within block key.
func Span(key string, start, end int) Selection {
	return Selection{AnchorKey: key, AnchorOffset: start, FocusKey: key, FocusOffset: end}
}

// IsCollapsed reports whether anchor and focus coincide.
func (s Selection) IsCollapsed() bool {
	return s.AnchorKey == s.FocusKey && s.AnchorOffset == s.FocusOffset
}

// StartKey returns the key of the block where the selection starts.
func (s Selection) StartKey() string {
	if s.IsBackward {
		return s.FocusKey
	}
	return s.AnchorKey
}

// StartOffset returns the offset where the selection starts.
func (s Selection) StartOffset() int {
	if s.IsBackward {
		return s.FocusOffset
	}
	return s.AnchorOffset
}

// EndKey returns the key of the block where the selection ends.
func (s Selection) EndKey() string {
	if s.IsBackward {
		return s.AnchorKey
	}
	return s.FocusKey
}

// EndOffset returns the offset where the selection ends.
func (s Selection) EndOffset() int {
	if s.IsBackward {
		return s.AnchorOffset
	}
	return s.FocusOffset
}

// resolve checks sel against d and returns it with IsBackward recomputed
// from document order, along with the start and end block indexes.
func resolve(d Document, sel Selection) (Selection, int, int, error) {
	ai := d.index(sel.AnchorKey)
	if ai < 0 {
		return Selection{}, 0, 0, &UnknownBlockKeyError{Key: sel.AnchorKey}
	}
	fi := d.index(sel.FocusKey)
	if fi < 0 {
		return Selection{}, 0, 0, &UnknownBlockKeyError{Key: sel.FocusKey}
	}
	if n := d.blocks[ai].Len(); sel.AnchorOffset < 0 || sel.AnchorOffset > n {
		return Selection{}, 0, 0, &RangeError{Key: sel.AnchorKey, Start: sel.AnchorOffset, End: sel.AnchorOffset, Len: n}
	}
	if n := d.blocks[fi].Len(); sel.FocusOffset < 0 || sel.FocusOffset > n {
		return Selection{}, 0, 0, &RangeError{Key: sel.FocusKey, Start: sel.FocusOffset, End: sel.FocusOffset, Len: n}
	}
	sel.IsBackward = fi < ai || (fi == ai && sel.FocusOffset < sel.AnchorOffset)
	if sel.IsBackward {
		return sel, fi, ai, nil
	}
	return sel, ai, fi, nil
}
