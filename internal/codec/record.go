// Package codec converts documents to and from the flat record persisted by
// the host, and encodes records as JSON or YAML.
package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scribe/internal/document"
)

// RawRecord is the persisted form of a document. Selection is not part of
// it. Unknown fields written by older versions (entityMap, depth,
// entityRanges, data) are ignored on decode.
type RawRecord struct {
	Blocks []RawBlock `json:"blocks" yaml:"blocks"`
}

// RawBlock is the persisted form of one block.
type RawBlock struct {
	Key               string          `json:"key" yaml:"key"`
	Type              string          `json:"type" yaml:"type"`
	Text              string          `json:"text" yaml:"text"`
	InlineStyleRanges []RawStyleRange `json:"inlineStyleRanges" yaml:"inlineStyleRanges"`
}

// RawStyleRange is the persisted form of one inline style range.
type RawStyleRange struct {
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
	Style  string `json:"style" yaml:"style"`
}

// DeserializationError reports a record that cannot be turned into a
// document. Err holds the structural cause.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return "codec: malformed record: " + e.Err.Error()
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// IsDeserializationError reports whether err is or wraps a
// *DeserializationError.
func IsDeserializationError(err error) bool {
	var de *DeserializationError
	return errors.As(err, &de)
}

// Validate checks the structural rules of a record: at least one block,
// unique non-empty keys, known types and styles, and ranges inside their
// block's text.
func (r RawRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Blocks, validation.Required, validation.By(uniqueKeys)),
	)
}

// Validate checks one block record.
func (b RawBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Key, validation.Required),
		validation.Field(&b.Type, validation.Required, validation.By(knownBlockType)),
		validation.Field(&b.InlineStyleRanges, validation.By(withinText(b.Text))),
	)
}

// Validate checks one range record in isolation.
func (r RawStyleRange) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Length, validation.Min(0)),
		validation.Field(&r.Style, validation.Required, validation.By(knownStyle)),
	)
}

func uniqueKeys(value any) error {
	blocks, _ := value.([]RawBlock)
	seen := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		if b.Key == "" {
			continue
		}
		if _, dup := seen[b.Key]; dup {
			return fmt.Errorf("duplicate block key %q", b.Key)
		}
		seen[b.Key] = struct{}{}
	}
	return nil
}

func knownBlockType(value any) error {
	s, _ := value.(string)
	_, err := document.ParseBlockType(s)
	return err
}

func knownStyle(value any) error {
	s, _ := value.(string)
	_, err := document.ParseStyle(s)
	return err
}

func withinText(text string) validation.RuleFunc {
	n := utf8.RuneCountInString(text)
	return func(value any) error {
		ranges, _ := value.([]RawStyleRange)
		for _, r := range ranges {
			if r.Offset > n || r.Length > n-r.Offset {
				return fmt.Errorf("range offset %d length %d exceeds text length %d", r.Offset, r.Length, n)
			}
		}
		return nil
	}
}

// ToRecord flattens doc into its persisted form.
func ToRecord(doc document.Document) RawRecord {
	blocks := doc.Blocks()
	rec := RawRecord{Blocks: make([]RawBlock, 0, len(blocks))}
	for _, b := range blocks {
		ranges := make([]RawStyleRange, 0, len(b.InlineStyleRanges))
		for _, r := range b.InlineStyleRanges {
			ranges = append(ranges, RawStyleRange{Offset: r.Offset, Length: r.Length, Style: string(r.Style)})
		}
		rec.Blocks = append(rec.Blocks, RawBlock{
			Key:               b.Key,
			Type:              string(b.Type),
			Text:              b.Text,
			InlineStyleRanges: ranges,
		})
	}
	return rec
}

// FromRecord rebuilds a document from rec. Any structural problem yields a
// *DeserializationError and no document.
func FromRecord(rec RawRecord) (document.Document, error) {
	if err := rec.Validate(); err != nil {
		return document.Document{}, &DeserializationError{Err: err}
	}
	blocks := make([]document.Block, 0, len(rec.Blocks))
	for _, rb := range rec.Blocks {
		t, err := document.ParseBlockType(rb.Type)
		if err != nil {
			return document.Document{}, &DeserializationError{Err: err}
		}
		b := document.Block{Key: rb.Key, Type: t, Text: rb.Text}
		for _, rr := range rb.InlineStyleRanges {
			st, err := document.ParseStyle(rr.Style)
			if err != nil {
				return document.Document{}, &DeserializationError{Err: err}
			}
			b.InlineStyleRanges = append(b.InlineStyleRanges, document.StyleRange{Offset: rr.Offset, Length: rr.Length, Style: st})
		}
		blocks = append(blocks, b)
	}
	doc, err := document.NewDocument(blocks...)
	if err != nil {
		return document.Document{}, &DeserializationError{Err: err}
	}
	return doc, nil
}
