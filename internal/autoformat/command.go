package autoformat

import (
	"log/slog"

	"github.com/starford/scribe/internal/document"
)

// Key command names understood by HandleKeyCommand.
const (
	CommandBold                 = "bold"
	CommandItalic               = "italic"
	CommandUnderline            = "underline"
	CommandCode                 = "code"
	CommandStrikethrough        = "strikethrough"
	CommandBackspace            = "backspace"
	CommandBackspaceWord        = "backspace-word"
	CommandBackspaceToLineStart = "backspace-to-start-of-line"
	CommandDelete               = "delete"
)

var commandStyles = map[string]document.Style{
	CommandBold:          document.Bold,
	CommandItalic:        document.Italic,
	CommandUnderline:     document.Underline,
	CommandCode:          document.Code,
	CommandStrikethrough: document.Strikethrough,
}

// HandleKeyCommand applies the rich-text behaviour of a named key command.
// Style commands toggle their inline style when it is in the style map.
// Backspace commands at the start of a styled block turn it back into a
// paragraph. Everything else, delete included, is NotHandled.
func (e *Engine) HandleKeyCommand(command string, s document.Snapshot) Decision {
	if style, ok := commandStyles[command]; ok {
		if !e.styles.Has(style) {
			return notHandled
		}
		return handled(document.ToggleInlineStyle(s, style))
	}
	switch command {
	case CommandBackspace, CommandBackspaceWord, CommandBackspaceToLineStart:
		return e.removeBlockStyle(s)
	}
	return notHandled
}

// removeBlockStyle resets the block type when the caret sits at offset 0 of
// a non-paragraph block. A code block directly after a non-empty code block
// is left alone so that backspace can join the two.
func (e *Engine) removeBlockStyle(s document.Snapshot) Decision {
	sel := s.Selection()
	if !sel.IsCollapsed() || sel.AnchorOffset != 0 {
		return notHandled
	}
	doc := s.Document()
	block, ok := doc.Block(sel.AnchorKey)
	if !ok || block.Type == document.Paragraph {
		return notHandled
	}
	if block.Type == document.CodeBlock {
		if prev, ok := doc.BlockBefore(block.Key); ok && prev.Type == document.CodeBlock && prev.Len() > 0 {
			return notHandled
		}
	}
	next, err := doc.SetBlockType(block.Key, document.Paragraph)
	if err != nil {
		e.logger.Error("autoformat: reset block type", slog.String("block", block.Key), slog.String("error", err.Error()))
		return notHandled
	}
	snap, err := document.ForceSelection(next, sel)
	if err != nil {
		e.logger.Error("autoformat: reset block type", slog.String("block", block.Key), slog.String("error", err.Error()))
		return notHandled
	}
	return handled(snap)
}
