package document

import (
	"strings"

	"github.com/google/uuid"
)

// Snapshot is the editor state at one instant: a document and a selection
// valid against it. Snapshots are values; producing a new one never changes
// an old one.
type Snapshot struct {
	doc Document
	sel Selection

	// override holds the styles the next inserted text receives when it is
	// set by toggling a style on a collapsed selection.
	override    []Style
	hasOverride bool
}

// Document returns the snapshot's document.
func (s Snapshot) Document() Document { return s.doc }

// Selection returns the snapshot's selection.
func (s Snapshot) Selection() Selection { return s.sel }

// InlineStyleOverride returns the pending styles for the next insertion and
// whether an override is set at all.
func (s Snapshot) InlineStyleOverride() ([]Style, bool) {
	if !s.hasOverride {
		return nil, false
	}
	out := make([]Style, len(s.override))
	copy(out, s.override)
	return out, true
}

// CreateEmpty returns a snapshot holding one empty paragraph with the caret
// at offset 0.
func CreateEmpty() Snapshot {
	key := NewKey(nil)
	doc := Document{blocks: []Block{{Key: key, Type: Paragraph}}}
	return Snapshot{doc: doc, sel: Caret(key, 0)}
}

// CreateWithDocument pairs doc with a caret at the start of its first block.
func CreateWithDocument(doc Document) Snapshot {
	if doc.IsZero() {
		return CreateEmpty()
	}
	return Snapshot{doc: doc, sel: Caret(doc.blocks[0].Key, 0)}
}

// ForceSelection validates sel against doc and attaches it. IsBackward is
// recomputed from the positions of anchor and focus.
func ForceSelection(doc Document, sel Selection) (Snapshot, error) {
	if doc.IsZero() {
		return Snapshot{}, ErrEmptyDocument
	}
	resolved, _, _, err := resolve(doc, sel)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{doc: doc, sel: resolved}, nil
}

// StartBlock returns the block containing the start of the selection.
func (s Snapshot) StartBlock() Block {
	b, _ := s.doc.Block(s.sel.StartKey())
	return b
}

// NewKey returns a short random block key. When taken is non-nil, keys for
// which it reports true are skipped.
func NewKey(taken func(string) bool) string {
	for {
		key := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if taken == nil || !taken(key) {
			return key
		}
	}
}
