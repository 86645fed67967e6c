package docservice

import (
	"unicode"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/autoformat"
	"github.com/starford/scribe/internal/document"
)

// CommandSplitBlock splits the current block at the caret (Enter).
const CommandSplitBlock = "split-block"

// Commands lists every command name Command accepts.
func Commands() []string {
	return []string{
		autoformat.CommandBold,
		autoformat.CommandItalic,
		autoformat.CommandUnderline,
		autoformat.CommandCode,
		autoformat.CommandStrikethrough,
		autoformat.CommandBackspace,
		autoformat.CommandBackspaceWord,
		autoformat.CommandBackspaceToLineStart,
		autoformat.CommandDelete,
		CommandSplitBlock,
	}
}

// defaultCommand is the editing fallback for commands the engine does not
// claim.
func defaultCommand(command string, s document.Snapshot) (document.Snapshot, error) {
	switch command {
	case autoformat.CommandBackspace:
		return document.RemoveRange(s, document.Backward)
	case autoformat.CommandBackspaceWord:
		return removeBefore(s, wordStart)
	case autoformat.CommandBackspaceToLineStart:
		return removeBefore(s, func([]rune, int) int { return 0 })
	case autoformat.CommandDelete:
		return document.RemoveRange(s, document.Forward)
	case CommandSplitBlock:
		return document.SplitBlock(s)
	case autoformat.CommandBold, autoformat.CommandItalic, autoformat.CommandUnderline,
		autoformat.CommandCode, autoformat.CommandStrikethrough:
		// Style commands the engine declined: the style is not configured.
		return s, nil
	}
	return document.Snapshot{}, apperr.ErrUnknownCommand
}

// removeBefore deletes from the offset chosen by from up to a collapsed
// caret. At offset 0, or with a range selection, it behaves like backspace.
func removeBefore(s document.Snapshot, from func(text []rune, caret int) int) (document.Snapshot, error) {
	sel := s.Selection()
	if !sel.IsCollapsed() || sel.AnchorOffset == 0 {
		return document.RemoveRange(s, document.Backward)
	}
	b, _ := s.Document().Block(sel.AnchorKey)
	start := from([]rune(b.Text), sel.AnchorOffset)
	span, err := document.ForceSelection(s.Document(), document.Span(b.Key, start, sel.AnchorOffset))
	if err != nil {
		return document.Snapshot{}, err
	}
	return document.RemoveRange(span, document.Backward)
}

// wordStart returns the offset of the start of the word before caret,
// skipping trailing whitespace first.
func wordStart(text []rune, caret int) int {
	i := caret
	for i > 0 && unicode.IsSpace(text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(text[i-1]) {
		i--
	}
	return i
}

// ShorthandRule describes one autoformat trigger for clients.
type ShorthandRule struct {
	Marker      string `json:"marker"`
	Anchor      string `json:"anchor"`
	BlockType   string `json:"block_type,omitempty"`
	Style       string `json:"style,omitempty"`
	Description string `json:"description"`
}

// Shorthand lists the engine's triggers in evaluation order.
func (s *Service) Shorthand() []ShorthandRule {
	triggers := s.engine.Triggers()
	out := make([]ShorthandRule, len(triggers))
	for i, t := range triggers {
		out[i] = ShorthandRule{
			Marker:      t.Marker,
			Anchor:      t.Anchor.String(),
			BlockType:   string(t.BlockType),
			Style:       string(t.Style),
			Description: t.Describe(),
		}
	}
	return out
}
