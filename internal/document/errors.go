package document

import (
	"errors"
	"fmt"
)

// ErrCrossBlock is returned by operations that only accept a selection
// confined to a single block.
var ErrCrossBlock = errors.New("document: selection spans multiple blocks")

// ErrEmptyDocument is returned when a document would have no blocks.
var ErrEmptyDocument = errors.New("document: document has no blocks")

// RangeError reports an interval that falls outside a block's text.
// Mutation operations return it instead of clamping.
type RangeError struct {
	Key   string
	Start int
	End   int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("document: range [%d,%d) out of bounds for block %q of length %d", e.Start, e.End, e.Key, e.Len)
}

// UnknownBlockKeyError reports a selection that names a block absent from
// the document it is paired with.
type UnknownBlockKeyError struct {
	Key string
}

func (e *UnknownBlockKeyError) Error() string {
	return fmt.Sprintf("document: unknown block key %q", e.Key)
}
