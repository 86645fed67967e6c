package document

import (
	"slices"
	"testing"
)

func TestToggleBlockType_Idempotent(t *testing.T) {
	d := mustDoc(t, Block{Key: "a", Type: Paragraph, Text: "title"})
	s := mustSnap(t, d, Span("a", 0, 5))

	once := ToggleBlockType(s, HeaderOne)
	if got := once.Document().FirstBlock().Type; got != HeaderOne {
		t.Fatalf("type = %q, want %q", got, HeaderOne)
	}
	twice := ToggleBlockType(once, HeaderOne)
	if !Equal(twice.Document(), s.Document()) {
		t.Errorf("toggle twice = %+v, want original", twice.Document().Blocks())
	}
}

func TestToggleBlockType_MultiBlock(t *testing.T) {
	d := mustDoc(t,
		Block{Key: "a", Type: Paragraph, Text: "one"},
		Block{Key: "b", Type: Blockquote, Text: "two"},
		Block{Key: "c", Type: Paragraph, Text: "three"},
	)
	s := mustSnap(t, d, Selection{AnchorKey: "a", AnchorOffset: 1, FocusKey: "c", FocusOffset: 0})
	got := ToggleBlockType(s, CodeBlock).Document()
	types := []BlockType{got.BlockAt(0).Type, got.BlockAt(1).Type, got.BlockAt(2).Type}
	want := []BlockType{CodeBlock, CodeBlock, Paragraph}
	if !slices.Equal(types, want) {
		t.Errorf("types = %v, want %v", types, want)
	}
}

func TestToggleBlockType_InvalidTypeIgnored(t *testing.T) {
	s := CreateEmpty()
	if got := ToggleBlockType(s, "banner"); !Equal(got.Document(), s.Document()) {
		t.Error("unknown type should leave snapshot unchanged")
	}
}

func TestToggleInlineStyle_AddAndRemove(t *testing.T) {
	d := mustDoc(t, Block{Key: "a", Type: Paragraph, Text: "hello world"})
	s := mustSnap(t, d, Span("a", 0, 5))

	bold := ToggleInlineStyle(s, Bold)
	want := []StyleRange{{0, 5, Bold}}
	if got := bold.Document().FirstBlock().InlineStyleRanges; !slices.Equal(got, want) {
		t.Fatalf("ranges = %v, want %v", got, want)
	}
	plain := ToggleInlineStyle(bold, Bold)
	if !Equal(plain.Document(), s.Document()) {
		t.Errorf("toggle twice = %v, want no ranges", plain.Document().FirstBlock().InlineStyleRanges)
	}
}

func TestToggleInlineStyle_RemoveFromCoveredSpan(t *testing.T) {
	d := mustDoc(t, Block{Key: "a", Type: Paragraph, Text: "hello world", InlineStyleRanges: []StyleRange{{0, 11, Bold}}})
	s := mustSnap(t, d, Span("a", 2, 5))

	off := ToggleInlineStyle(s, Bold)
	want := []StyleRange{{0, 2, Bold}, {5, 6, Bold}}
	if got := off.Document().FirstBlock().InlineStyleRanges; !slices.Equal(got, want) {
		t.Fatalf("ranges = %v, want %v", got, want)
	}
	on := ToggleInlineStyle(off, Bold)
	if !Equal(on.Document(), s.Document()) {
		t.Errorf("toggle twice = %v, want single range", on.Document().FirstBlock().InlineStyleRanges)
	}
}

func TestToggleInlineStyle_PartialCoverageAdds(t *testing.T) {
	d := mustDoc(t, Block{Key: "a", Type: Paragraph, Text: "abcdef", InlineStyleRanges: []StyleRange{{0, 2, Italic}}})
	s := mustSnap(t, d, Span("a", 1, 4))
	got := ToggleInlineStyle(s, Italic).Document().FirstBlock().InlineStyleRanges
	want := []StyleRange{{0, 4, Italic}}
	if !slices.Equal(got, want) {
		t.Errorf("ranges = %v, want %v", got, want)
	}
}

func TestToggleInlineStyle_MultiBlock(t *testing.T) {
	d := mustDoc(t,
		Block{Key: "a", Type: Paragraph, Text: "abc"},
		Block{Key: "b", Type: Paragraph, Text: "def"},
	)
	s := mustSnap(t, d, Selection{AnchorKey: "a", AnchorOffset: 1, FocusKey: "b", FocusOffset: 2})
	got := ToggleInlineStyle(s, Underline).Document()
	if r := got.BlockAt(0).InlineStyleRanges; !slices.Equal(r, []StyleRange{{1, 2, Underline}}) {
		t.Errorf("block a ranges = %v", r)
	}
	if r := got.BlockAt(1).InlineStyleRanges; !slices.Equal(r, []StyleRange{{0, 2, Underline}}) {
		t.Errorf("block b ranges = %v", r)
	}
}

func TestToggleInlineStyle_CollapsedSetsOverride(t *testing.T) {
	d := mustDoc(t, Block{Key: "a", Type: Paragraph, Text: "abc"})
	s := mustSnap(t, d, Caret("a", 1))
	got := ToggleInlineStyle(s, Bold)
	if !Equal(got.Document(), d) {
		t.Error("collapsed selection should not change document")
	}
	if st, ok := got.InlineStyleOverride(); !ok || !slices.Equal(st, []Style{Bold}) {
		t.Errorf("override = %v %v, want [BOLD]", st, ok)
	}
	off := ToggleInlineStyle(got, Bold)
	if st, ok := off.InlineStyleOverride(); !ok || len(st) != 0 {
		t.Errorf("override = %v %v, want explicit empty", st, ok)
	}
}

func TestCurrentInlineStyles(t *testing.T) {
	d := mustDoc(t, Block{Key: "a", Type: Paragraph, Text: "abcdef", InlineStyleRanges: []StyleRange{{0, 4, Bold}, {2, 4, Red}}})
	if got := CurrentInlineStyles(mustSnap(t, d, Span("a", 2, 4))); !slices.Equal(got, []Style{Bold, Red}) {
		t.Errorf("styles = %v, want [BOLD RED]", got)
	}
	if got := CurrentInlineStyles(mustSnap(t, d, Caret("a", 5))); !slices.Equal(got, []Style{Red}) {
		t.Errorf("caret styles = %v, want [RED]", got)
	}
}
