package codec

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/starford/scribe/internal/document"
)

func sampleDocument(t *testing.T) document.Document {
	t.Helper()
	doc, err := document.NewDocument(
		document.Block{Key: "a1", Type: document.HeaderOne, Text: "Title"},
		document.Block{
			Key: "b2", Type: document.Paragraph, Text: "héllo wörld",
			InlineStyleRanges: []document.StyleRange{
				{Offset: 0, Length: 5, Style: document.Bold},
				{Offset: 6, Length: 5, Style: document.Red},
			},
		},
		document.Block{Key: "c3", Type: document.CodeBlock, Text: "print(1)"},
	)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDocument(t)
	got, err := FromRecord(ToRecord(doc))
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if !document.Equal(got, doc) {
		t.Errorf("round trip = %+v, want %+v", got.Blocks(), doc.Blocks())
	}
}

func TestRoundTrip_Encoded(t *testing.T) {
	doc := sampleDocument(t)
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Marshal(doc, f)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := Unmarshal(data, f)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !document.Equal(got, doc) {
				t.Errorf("round trip = %+v", got.Blocks())
			}
		})
	}
}

// TestRoundTrip_EditedDocuments drives documents through the editing
// operations and checks each intermediate state survives a round trip.
func TestRoundTrip_EditedDocuments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"a", "bc", "déf", " ", "\n", "ghij"}
	allStyles := document.Styles()
	allTypes := document.BlockTypes()

	s := document.CreateEmpty()
	for step := 0; step < 200; step++ {
		var err error
		switch rng.Intn(4) {
		case 0, 1:
			s, err = document.InsertText(s, words[rng.Intn(len(words))])
		case 2:
			b := s.Document().BlockAt(rng.Intn(s.Document().Len()))
			if n := b.Len(); n > 0 {
				from := rng.Intn(n)
				to := from + rng.Intn(n-from) + 1
				if s, err = document.ForceSelection(s.Document(), document.Span(b.Key, from, to)); err == nil {
					s = document.ToggleInlineStyle(s, allStyles[rng.Intn(len(allStyles))])
				}
			}
		case 3:
			s = document.ToggleBlockType(s, allTypes[rng.Intn(len(allTypes))])
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		got, err := FromRecord(ToRecord(s.Document()))
		if err != nil {
			t.Fatalf("step %d: FromRecord: %v", step, err)
		}
		if !document.Equal(got, s.Document()) {
			t.Fatalf("step %d: round trip mismatch", step)
		}
	}
}

func TestToRecord_Shape(t *testing.T) {
	rec := ToRecord(sampleDocument(t))
	if len(rec.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(rec.Blocks))
	}
	if rec.Blocks[0].Type != "header-one" || rec.Blocks[0].InlineStyleRanges == nil {
		t.Errorf("block 0 = %+v", rec.Blocks[0])
	}
	data, err := Encode(rec, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"blocks"`, `"key"`, `"type"`, `"text"`, `"inlineStyleRanges"`, `"offset"`, `"length"`, `"style"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded record missing %s: %s", field, data)
		}
	}
}

func TestFromRecord_MalformedRange(t *testing.T) {
	for _, r := range []RawStyleRange{
		{Offset: 5, Length: 3, Style: "BOLD"},
		{Offset: math.MaxInt, Length: 1, Style: "BOLD"},
		{Offset: 2, Length: math.MaxInt, Style: "BOLD"},
	} {
		rec := RawRecord{Blocks: []RawBlock{{
			Key: "k", Type: "paragraph", Text: "abcd",
			InlineStyleRanges: []RawStyleRange{r},
		}}}
		_, err := FromRecord(rec)
		var de *DeserializationError
		if !errors.As(err, &de) {
			t.Fatalf("range %+v: err = %v, want *DeserializationError", r, err)
		}
		if de.Unwrap() == nil {
			t.Errorf("range %+v: DeserializationError should carry its cause", r)
		}
	}
}

func TestFromRecord_Invalid(t *testing.T) {
	ok := RawBlock{Key: "k", Type: "paragraph", Text: "abcd"}
	tests := []struct {
		name string
		rec  RawRecord
	}{
		{"no blocks", RawRecord{}},
		{"missing key", RawRecord{Blocks: []RawBlock{{Type: "paragraph"}}}},
		{"missing type", RawRecord{Blocks: []RawBlock{{Key: "k"}}}},
		{"unknown type", RawRecord{Blocks: []RawBlock{{Key: "k", Type: "banner"}}}},
		{"duplicate keys", RawRecord{Blocks: []RawBlock{ok, ok}}},
		{"unknown style", RawRecord{Blocks: []RawBlock{{Key: "k", Type: "paragraph", Text: "ab",
			InlineStyleRanges: []RawStyleRange{{Offset: 0, Length: 1, Style: "BOLDER"}}}}}},
		{"negative offset", RawRecord{Blocks: []RawBlock{{Key: "k", Type: "paragraph", Text: "ab",
			InlineStyleRanges: []RawStyleRange{{Offset: -1, Length: 1, Style: "BOLD"}}}}}},
		{"negative length", RawRecord{Blocks: []RawBlock{{Key: "k", Type: "paragraph", Text: "ab",
			InlineStyleRanges: []RawStyleRange{{Offset: 1, Length: -1, Style: "BOLD"}}}}}},
		{"range past multibyte text", RawRecord{Blocks: []RawBlock{{Key: "k", Type: "paragraph", Text: "éé",
			InlineStyleRanges: []RawStyleRange{{Offset: 0, Length: 3, Style: "BOLD"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := FromRecord(tt.rec)
			if !IsDeserializationError(err) {
				t.Fatalf("err = %v, want DeserializationError", err)
			}
			if !doc.IsZero() {
				t.Error("no document may be returned on failure")
			}
		})
	}
}

func TestFromRecord_LegacyRecord(t *testing.T) {
	data := []byte(`{
		"blocks": [
			{"key": "9u0a1", "text": "hello", "type": "unstyled", "depth": 0,
			 "inlineStyleRanges": [{"offset": 0, "length": 5, "style": "BOLD"}],
			 "entityRanges": [], "data": {}}
		],
		"entityMap": {}
	}`)
	doc, err := Unmarshal(data, FormatJSON)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	b := doc.FirstBlock()
	if b.Type != document.Paragraph || b.Text != "hello" || len(b.InlineStyleRanges) != 1 {
		t.Errorf("block = %+v", b)
	}
}

func TestFromRecord_NormalisesOverlappingRanges(t *testing.T) {
	rec := RawRecord{Blocks: []RawBlock{{
		Key: "k", Type: "paragraph", Text: "abcdef",
		InlineStyleRanges: []RawStyleRange{{0, 3, "BOLD"}, {2, 3, "BOLD"}},
	}}}
	doc, err := FromRecord(rec)
	if err != nil {
		t.Fatal(err)
	}
	got := doc.FirstBlock().InlineStyleRanges
	if len(got) != 1 || got[0].Offset != 0 || got[0].Length != 5 {
		t.Errorf("ranges = %v, want single [0,5)", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		f    Format
	}{
		{"empty", "", FormatJSON},
		{"blank", "  \n", FormatYAML},
		{"bad json", `{"blocks": [`, FormatJSON},
		{"wrong json shape", `{"blocks": "nope"}`, FormatJSON},
		{"bad yaml", "blocks: [unclosed", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data), tt.f); !IsDeserializationError(err) {
				t.Errorf("err = %v, want DeserializationError", err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("expected error for toml")
	}
}
