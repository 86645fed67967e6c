package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/scribe/internal/docservice"
)

const contractIntro = `# Scribe Shorthand Contract

Documents are lists of blocks. Each block has a key, a type (paragraph,
header-one, header-two, header-three, code-block) and text with inline style
ranges (BOLD, ITALIC, UNDERLINE, CODE, STRIKETHROUGH, RED).

Text passed to type_text is typed one character at a time at the caret.
When a space is typed, the block holding the start of the selection is
checked against the rules below, first match wins. A newline splits the block.

## Rules
`

const contractTail = `
## Notes

1. Prefix rules only fire when the marker is at the very start of the block.
2. After an inline style rule, the remaining text of the block is selected;
   typing more characters replaces it. Run a command or type a newline first
   to keep it.
3. A style rule on an empty remainder leaves the style pending for the next
   characters typed.
4. Suffix rules fire wherever the caret is and leave it where the marker was.
5. Nothing is written to storage until save_document is called.
`

// ShorthandContract renders the trigger table and command list as Markdown.
func ShorthandContract(rules []docservice.ShorthandRule, commands []string) string {
	var b strings.Builder
	b.WriteString(contractIntro)
	b.WriteString("\n| # | marker | anchor | effect |\n|---|---|---|---|\n")
	for i, r := range rules {
		effect := "style " + r.Style
		if r.BlockType != "" {
			effect = "block " + r.BlockType
		}
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", i+1, r.Marker, r.Anchor, effect)
	}
	b.WriteString("\n## Commands (run_command)\n\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "- `%s`\n", c)
	}
	b.WriteString(contractTail)
	return b.String()
}
